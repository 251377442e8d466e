// Package snapshotarray implements a growable indexed sequence whose
// element-level mutations are, while any snapshot is open, mirrored as
// records in an undolog.UndoLog so they can be unwound on rollback.
package snapshotarray

import (
	"fmt"
	"strings"

	"github.com/aarondl/unify/undolog"
)

// ErrOutOfRange is panicked by MustGet/MustSet (and anything built on
// them) when an index is not within [0, Len()).
type ErrOutOfRange struct {
	Index int
	Len   int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range (length %d)", e.Index, e.Len)
}

// Snapshot is an opaque checkpoint token at the array level: a record
// wrapping the undo-log-level snapshot it was opened against. Callers of
// this package (and of unify, whose snapshot methods take and return it
// directly) hold one of these, never an undolog.Snapshot directly.
type Snapshot struct {
	inner undolog.Snapshot
}

// SnapshotArray is an ordered sequence of T values paired with an owned
// undo log. Every mutation made while a snapshot is open is journaled so
// that RollbackTo can restore an earlier state exactly.
type SnapshotArray[T any] struct {
	values []T
	log    *undolog.UndoLog[T]
}

// New returns an empty array with an empty log. capacity is an advisory
// hint for the initial backing-slice allocation; it does not bound the
// array's eventual size.
func New[T any](capacity int) *SnapshotArray[T] {
	var values []T
	if capacity > 0 {
		values = make([]T, 0, capacity)
	}
	return &SnapshotArray[T]{values: values, log: undolog.New[T]()}
}

// Len returns the number of elements currently stored.
func (a *SnapshotArray[T]) Len() int {
	return len(a.values)
}

// Get returns a copy of the element at i, or false if i is out of range.
func (a *SnapshotArray[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(a.values) {
		var zero T
		return zero, false
	}
	return a.values[i], true
}

// MustGet returns the element at i, panicking with ErrOutOfRange if i is
// not a valid index.
func (a *SnapshotArray[T]) MustGet(i int) T {
	v, ok := a.Get(i)
	if !ok {
		panic(ErrOutOfRange{Index: i, Len: len(a.values)})
	}
	return v
}

// MustSet overwrites the element at i, panicking with ErrOutOfRange if i
// is not a valid index. It does not journal the write; use Set for that.
func (a *SnapshotArray[T]) MustSet(i int, v T) {
	if i < 0 || i >= len(a.values) {
		panic(ErrOutOfRange{Index: i, Len: len(a.values)})
	}
	a.values[i] = v
}

// InSnapshot reports whether a snapshot is currently open on the
// underlying log.
func (a *SnapshotArray[T]) InSnapshot() bool {
	return a.log.InSnapshot()
}

// Push appends v. If a snapshot is open, records the append as a NewElem
// entry so RollbackTo can remove it again.
func (a *SnapshotArray[T]) Push(v T) {
	i := len(a.values)
	a.values = append(a.values, v)
	if a.log.InSnapshot() {
		a.log.Push(undolog.NewElemRecord[T](i))
	}
}

// Set overwrites the element at i with v, panicking with ErrOutOfRange if
// i is invalid. If a snapshot is open, the prior value is journaled as a
// SetElem entry so RollbackTo can restore it.
func (a *SnapshotArray[T]) Set(i int, v T) {
	old := a.MustGet(i)
	a.values[i] = v
	if a.log.InSnapshot() {
		a.log.Push(undolog.SetElemRecord(i, old))
	}
}

// SetAll applies f to every element in index order, overwriting each in
// place. If a snapshot is open, every prior value is journaled before
// being overwritten; otherwise the writes are silent.
func (a *SnapshotArray[T]) SetAll(f func(i int, v T) T) {
	recording := a.log.InSnapshot()
	for i, v := range a.values {
		newV := f(i, v)
		if recording {
			a.log.Push(undolog.SetElemRecord(i, v))
		}
		a.values[i] = newV
	}
}

// Extend pushes each element of vs in order.
func (a *SnapshotArray[T]) Extend(vs []T) {
	for _, v := range vs {
		a.Push(v)
	}
}

// Reset clears both the values and the log, invalidating every
// outstanding snapshot. Callers must not hold a Snapshot token across a
// Reset.
func (a *SnapshotArray[T]) Reset() {
	a.values = nil
	a.log.Clear()
}

// Record appends u to the log verbatim if a snapshot is open, returning
// true; otherwise it does nothing and returns false. This lets a layer
// built on top of SnapshotArray (such as unify.UnificationTable) embed
// custom rollback actions into the same journal.
func (a *SnapshotArray[T]) Record(u undolog.UndoRecord[T]) bool {
	if !a.log.InSnapshot() {
		return false
	}
	a.log.Push(u)
	return true
}

// StartSnapshot opens a new snapshot on the underlying log, wrapping its
// checkpoint in a Snapshot.
func (a *SnapshotArray[T]) StartSnapshot() Snapshot {
	return Snapshot{inner: a.log.StartSnapshot()}
}

// ActionsSince delegates to the underlying log; see undolog.UndoLog.ActionsSince
// for the view/invalidation caveat.
func (a *SnapshotArray[T]) ActionsSince(s Snapshot) []undolog.UndoRecord[T] {
	return a.log.ActionsSince(s.inner)
}

// RollbackTo restores the array to the state it had when s was opened, by
// popping records off the log and reversing each one: a NewElem(idx)
// record pops the tail of values and panics with ErrRollbackCorrupt if its
// index does not match; a SetElem(idx, old) record writes old back into
// values[idx]. Records are reversed in strict LIFO order so overlapping
// writes to the same index unwind correctly. Does not change the
// underlying log's open-snapshot count.
func (a *SnapshotArray[T]) RollbackTo(s Snapshot) {
	popped := a.log.RollbackTo(s.inner)
	for _, r := range popped {
		switch r.Kind {
		case undolog.NewElem:
			last := len(a.values) - 1
			if last != r.Index {
				panic(undolog.ErrRollbackCorrupt{RecordIndex: r.Index, Len: len(a.values)})
			}
			a.values = a.values[:last]
		case undolog.SetElem:
			a.values[r.Index] = r.Old
		}
	}
}

// Commit delegates to the underlying log: the mutations since s become
// permanent relative to any outer snapshot, and the log's undo records for
// them are discarded only if s is the root (outermost) snapshot.
func (a *SnapshotArray[T]) Commit(s Snapshot) {
	a.log.Commit(s.inner)
}

// CommitAll clears the log without touching values, forgetting all
// pending undo state regardless of snapshot nesting. Equivalent to
// "forget I was recording."
func (a *SnapshotArray[T]) CommitAll() {
	a.log.Clear()
}

// String renders the array as SnapshotArray[ v0, v1, ... ].
func (a *SnapshotArray[T]) String() string {
	parts := make([]string, len(a.values))
	for i, v := range a.values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "SnapshotArray[ " + strings.Join(parts, ", ") + " ]"
}
