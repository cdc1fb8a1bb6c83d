package history

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pair struct {
	A int
	B int
}

type scene struct {
	Prompt string
	Style  *string
}

func strPtr(s string) *string { return &s }

func assertInvariants[T any](t *testing.T, s *Store[T]) {
	t.Helper()
	if s.Len() < 1 {
		t.Fatalf("Len() = %d, want >= 1", s.Len())
	}
	if s.Cursor() < 0 || s.Cursor() >= s.Len() {
		t.Fatalf("Cursor() = %d out of range [0,%d)", s.Cursor(), s.Len())
	}
	if got, want := s.CanUndo(), s.Cursor() > 0; got != want {
		t.Fatalf("CanUndo() = %v, want %v (cursor %d)", got, want, s.Cursor())
	}
	if got, want := s.CanRedo(), s.Cursor() < s.Len()-1; got != want {
		t.Fatalf("CanRedo() = %v, want %v (cursor %d, len %d)", got, want, s.Cursor(), s.Len())
	}
}

func TestNewSeedsInitialValue(t *testing.T) {
	s := New(pair{A: 1})
	assertInvariants(t, s)
	if s.Len() != 1 || s.Cursor() != 0 {
		t.Fatalf("new store len=%d cursor=%d, want 1/0", s.Len(), s.Cursor())
	}
	if got := s.Current(); got != (pair{A: 1}) {
		t.Fatalf("Current() = %+v, want %+v", got, pair{A: 1})
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("fresh store should not allow undo or redo")
	}
}

func TestWriteEqualValueIsNoop(t *testing.T) {
	s := New(pair{A: 1, B: 2})
	if s.Write(pair{A: 1, B: 2}) {
		t.Fatal("Write() of equal value reported a change")
	}
	if s.Len() != 1 || s.Cursor() != 0 {
		t.Fatalf("len=%d cursor=%d after no-op write, want 1/0", s.Len(), s.Cursor())
	}
}

func TestWriteDedupAcrossDistinctConstruction(t *testing.T) {
	s := New(scene{})
	if !s.Write(scene{Prompt: "on a table", Style: strPtr("Modern")}) {
		t.Fatal("first write should be recorded")
	}
	if s.Write(scene{Prompt: "on a table", Style: strPtr("Modern")}) {
		t.Fatal("second write of a freshly built equal value should be a no-op")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestUpdateUsesCurrentValue(t *testing.T) {
	s := New(pair{A: 1})
	s.Update(func(p pair) pair {
		p.B = p.A + 1
		return p
	})
	if got := s.Current(); got != (pair{A: 1, B: 2}) {
		t.Fatalf("Current() = %+v, want {A:1 B:2}", got)
	}
	if s.Update(func(p pair) pair { return p }) {
		t.Fatal("identity update should be a no-op")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestWriteAfterUndoPrunesRedoBranch(t *testing.T) {
	s := New("s0")
	s.Write("s1")
	s.Write("s2")
	if s.Cursor() != 2 {
		t.Fatalf("Cursor() = %d, want 2", s.Cursor())
	}
	s.Undo()
	if s.Cursor() != 1 {
		t.Fatalf("Cursor() after undo = %d, want 1", s.Cursor())
	}
	s.Write("s3")

	if diff := cmp.Diff([]string{"s0", "s1", "s3"}, s.Snapshots()); diff != "" {
		t.Fatalf("Snapshots() mismatch (-want +got):\n%s", diff)
	}
	if s.Cursor() != 2 {
		t.Fatalf("Cursor() = %d, want 2", s.Cursor())
	}
	if s.CanRedo() {
		t.Fatal("CanRedo() should be false once the redo branch is pruned")
	}
	if s.Redo() {
		t.Fatal("Redo() should not resurrect the pruned snapshot")
	}
}

func TestUndoRedoBoundaries(t *testing.T) {
	s := New(0)
	if s.Undo() {
		t.Fatal("Undo() at cursor 0 reported a move")
	}
	if s.Cursor() != 0 {
		t.Fatalf("Cursor() = %d, want 0", s.Cursor())
	}
	s.Write(1)
	if s.Redo() {
		t.Fatal("Redo() at the newest snapshot reported a move")
	}
	if s.Cursor() != 1 {
		t.Fatalf("Cursor() = %d, want 1", s.Cursor())
	}
}

func TestRoundTripReturnsInitialValue(t *testing.T) {
	initial := scene{Prompt: "start"}
	s := New(initial)
	writes := []scene{
		{Prompt: "a"},
		{Prompt: "a", Style: strPtr("Vintage")},
		{Prompt: "b", Style: strPtr("Vintage")},
		{Prompt: "b"},
	}
	for _, w := range writes {
		s.Write(w)
	}
	for range writes {
		s.Undo()
	}
	if diff := cmp.Diff(initial, s.Current()); diff != "" {
		t.Fatalf("Current() after round trip mismatch (-want +got):\n%s", diff)
	}
	for range writes {
		s.Redo()
	}
	if diff := cmp.Diff(writes[len(writes)-1], s.Current()); diff != "" {
		t.Fatalf("Current() after redo mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEndScenario(t *testing.T) {
	a := scene{}
	b := scene{Prompt: "on a table"}
	c := scene{Prompt: "on a table", Style: strPtr("Modern")}
	d := scene{Prompt: "floating"}

	s := New(a)
	s.Write(b)
	if s.Len() != 2 || s.Cursor() != 1 {
		t.Fatalf("after B: len=%d cursor=%d, want 2/1", s.Len(), s.Cursor())
	}
	s.Write(c)
	if s.Len() != 3 || s.Cursor() != 2 {
		t.Fatalf("after C: len=%d cursor=%d, want 3/2", s.Len(), s.Cursor())
	}
	s.Undo()
	if diff := cmp.Diff(b, s.Current()); diff != "" {
		t.Fatalf("after undo mismatch (-want +got):\n%s", diff)
	}
	if !s.CanRedo() {
		t.Fatal("CanRedo() should be true after undo")
	}
	s.Write(d)
	if diff := cmp.Diff([]scene{a, b, d}, s.Snapshots()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if s.Cursor() != 2 || s.CanRedo() {
		t.Fatalf("cursor=%d canRedo=%v, want 2/false", s.Cursor(), s.CanRedo())
	}
}

func TestWithEqualOverridesComparator(t *testing.T) {
	type tagged struct {
		ID   string
		Blob []byte
	}
	s := New(tagged{ID: "x", Blob: []byte{1}}, WithEqual(func(a, b tagged) bool {
		return a.ID == b.ID
	}))
	if s.Write(tagged{ID: "x", Blob: []byte{9, 9}}) {
		t.Fatal("write with the same ID should dedup under the custom comparator")
	}
	if !s.Write(tagged{ID: "y", Blob: []byte{1}}) {
		t.Fatal("write with a new ID should be recorded despite identical bytes")
	}
}

func TestOnChangeObservesMoves(t *testing.T) {
	var seen []int
	s := New(0, WithOnChange(func(v int) { seen = append(seen, v) }))
	s.Write(1)
	s.Write(1)
	s.Write(2)
	s.Undo()
	s.Undo()
	s.Undo()
	s.Redo()
	if diff := cmp.Diff([]int{1, 2, 1, 0, 1}, seen); diff != "" {
		t.Fatalf("observed values mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotsReturnsCopy(t *testing.T) {
	s := New(1)
	s.Write(2)
	snap := s.Snapshots()
	snap[0] = 99
	if s.Snapshots()[0] != 1 {
		t.Fatal("mutating the returned slice leaked into the store")
	}
}

func TestInvariantsHoldUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New(0)
	for i := 0; i < 2000; i++ {
		switch rng.Intn(4) {
		case 0, 1:
			s.Write(rng.Intn(5))
		case 2:
			s.Undo()
		case 3:
			s.Redo()
		}
		assertInvariants(t, s)
		snaps := s.Snapshots()
		for j := 1; j < len(snaps); j++ {
			if snaps[j] == snaps[j-1] {
				t.Fatalf("step %d: adjacent duplicates at %d in %v", i, j, snaps)
			}
		}
	}
}
