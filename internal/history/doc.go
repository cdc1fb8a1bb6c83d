// Package history provides a linear undo/redo buffer over an arbitrary state
// value.
//
// A Store keeps every distinct value it has held as a full snapshot together
// with a cursor marking the current one:
//
//	store := history.New(State{Prompt: ""})
//	store.Write(State{Prompt: "on a table"})
//	store.Update(func(s State) State { s.Style = "Modern"; return s })
//	store.Undo()
//	store.Redo()
//
// # Deduplication
//
// A write whose value is structurally equal to the current snapshot is a
// no-op. Equality defaults to cmp.Equal, which uses an Equal(T) bool method
// when the state type defines one. WithEqual installs a custom comparator.
//
// # Branch pruning
//
// Writing after one or more undos discards every snapshot past the cursor.
// There is never more than one future branch.
//
// # Concurrency
//
// A Store performs no locking. The owner serialises Write, Update, Undo and
// Redo.
package history
