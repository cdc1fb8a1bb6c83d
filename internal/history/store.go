package history

import "github.com/google/go-cmp/cmp"

// Store is a linear history of snapshots of T with a cursor into it.
type Store[T any] struct {
	snapshots []T
	cursor    int

	equal    func(a, b T) bool
	onChange func(current T)
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithEqual overrides the structural comparator used for deduplication.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(s *Store[T]) {
		if equal != nil {
			s.equal = equal
		}
	}
}

// WithOnChange registers a callback invoked after every write, undo or redo
// that moved the store.
func WithOnChange[T any](fn func(current T)) Option[T] {
	return func(s *Store[T]) {
		s.onChange = fn
	}
}

// New creates a Store seeded with initial.
func New[T any](initial T, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		snapshots: []T{initial},
		equal: func(a, b T) bool {
			return cmp.Equal(a, b)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the snapshot at the cursor.
func (s *Store[T]) Current() T {
	return s.snapshots[s.cursor]
}

// Write records v as the new current value. It reports false when v equals
// the current snapshot and nothing was recorded.
func (s *Store[T]) Write(v T) bool {
	if s.equal(v, s.snapshots[s.cursor]) {
		return false
	}
	// Drop the redo branch. Zero the tail so pruned snapshots can be collected.
	clear(s.snapshots[s.cursor+1:])
	s.snapshots = append(s.snapshots[:s.cursor+1], v)
	s.cursor = len(s.snapshots) - 1
	s.notify()
	return true
}

// Update writes the value returned by fn, which receives the current value.
func (s *Store[T]) Update(fn func(current T) T) bool {
	return s.Write(fn(s.Current()))
}

// Undo moves the cursor one snapshot back. It reports false at the oldest
// snapshot.
func (s *Store[T]) Undo() bool {
	if !s.CanUndo() {
		return false
	}
	s.cursor--
	s.notify()
	return true
}

// Redo moves the cursor one snapshot forward. It reports false at the newest
// snapshot.
func (s *Store[T]) Redo() bool {
	if !s.CanRedo() {
		return false
	}
	s.cursor++
	s.notify()
	return true
}

// CanUndo reports whether an older snapshot exists.
func (s *Store[T]) CanUndo() bool {
	return s.cursor > 0
}

// CanRedo reports whether a newer snapshot exists.
func (s *Store[T]) CanRedo() bool {
	return s.cursor < len(s.snapshots)-1
}

// Len returns the number of recorded snapshots.
func (s *Store[T]) Len() int {
	return len(s.snapshots)
}

// Cursor returns the index of the current snapshot.
func (s *Store[T]) Cursor() int {
	return s.cursor
}

// Snapshots returns a copy of the recorded history, oldest first.
func (s *Store[T]) Snapshots() []T {
	out := make([]T, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

func (s *Store[T]) notify() {
	if s.onChange != nil {
		s.onChange(s.snapshots[s.cursor])
	}
}
