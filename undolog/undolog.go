// Package undolog implements an append-only log of reversible mutations.
// It underlies snapshotarray.SnapshotArray, which mirrors its own edits here
// while a snapshot is open so that they can be unwound later.
package undolog

import (
	"fmt"
	"strings"
)

// RecordKind distinguishes the two shapes an UndoRecord can take.
type RecordKind int

// Record kinds.
const (
	// NewElem records that an element was appended at Index; rollback
	// removes it.
	NewElem RecordKind = iota + 1
	// SetElem records that the element at Index was overwritten; Old
	// holds its pre-image so rollback can restore it.
	SetElem
)

func (k RecordKind) String() string {
	switch k {
	case NewElem:
		return "NewElem"
	case SetElem:
		return "SetElem"
	default:
		return "UndoRecord(?)"
	}
}

// UndoRecord is a reversible edit: either the append of an element (NewElem)
// or the overwrite of one (SetElem, carrying the old value).
type UndoRecord[T any] struct {
	Kind  RecordKind
	Index int
	Old   T
}

// NewElemRecord builds a NewElem record for the element appended at i.
func NewElemRecord[T any](i int) UndoRecord[T] {
	return UndoRecord[T]{Kind: NewElem, Index: i}
}

// SetElemRecord builds a SetElem record for the element at i, whose
// pre-image was old.
func SetElemRecord[T any](i int, old T) UndoRecord[T] {
	return UndoRecord[T]{Kind: SetElem, Index: i, Old: old}
}

// String renders the record in the form NewElem(N) or SetElem(N, V).
func (r UndoRecord[T]) String() string {
	switch r.Kind {
	case NewElem:
		return fmt.Sprintf("NewElem(%d)", r.Index)
	case SetElem:
		return fmt.Sprintf("SetElem(%d, %v)", r.Index, r.Old)
	default:
		return "UndoRecord(?)"
	}
}

// Equal reports whether two records are the same variant with equal fields.
func (r UndoRecord[T]) Equal(other UndoRecord[T], eq func(a, b T) bool) bool {
	if r.Kind != other.Kind || r.Index != other.Index {
		return false
	}
	if r.Kind == SetElem {
		return eq(r.Old, other.Old)
	}
	return true
}

// ErrInvalidSnapshot is panicked when Commit or RollbackTo is asked to act
// on a snapshot that is not a valid checkpoint of the current log: either
// no snapshot is open, or the checkpoint refers to a point at or past the
// current tail.
type ErrInvalidSnapshot struct {
	Snapshot      int
	Len           int
	OpenSnapshots int
}

func (e ErrInvalidSnapshot) Error() string {
	return fmt.Sprintf("invalid snapshot %d (log length %d, open snapshots %d)",
		e.Snapshot, e.Len, e.OpenSnapshots)
}

// ErrRootCommit is panicked when committing the outermost (only remaining)
// snapshot to anything other than the start of the log.
type ErrRootCommit struct {
	Snapshot int
}

func (e ErrRootCommit) Error() string {
	return fmt.Sprintf("root commit must be to snapshot 0, got %d", e.Snapshot)
}

// ErrRollbackCorrupt is panicked when a NewElem record popped off the log
// during rollback does not point at what should be the tail element,
// indicating the log and its owning store have diverged.
type ErrRollbackCorrupt struct {
	RecordIndex int
	Len         int
}

func (e ErrRollbackCorrupt) Error() string {
	return fmt.Sprintf("rollback corrupt: NewElem(%d) but length is %d", e.RecordIndex, e.Len)
}

// Snapshot is an opaque checkpoint: the log's length at the moment it was
// opened. RollbackTo and Commit interpret it relative to the current log.
type Snapshot int

// UndoLog is an ordered sequence of UndoRecord plus a nesting counter of
// currently open snapshots.
type UndoLog[T any] struct {
	records       []UndoRecord[T]
	openSnapshots int
}

// New returns an empty log with no open snapshots.
func New[T any]() *UndoLog[T] {
	return &UndoLog[T]{}
}

// InSnapshot reports whether any snapshot is currently open.
func (u *UndoLog[T]) InSnapshot() bool {
	return u.openSnapshots > 0
}

// NumOpenSnapshots returns the current nesting depth. It has no enforced
// relationship to any particular caller's nesting discipline; callers that
// mix Commit/RollbackTo out of LIFO order get whatever this counter alone
// implies.
func (u *UndoLog[T]) NumOpenSnapshots() int {
	return u.openSnapshots
}

// Len returns the number of records currently in the log.
func (u *UndoLog[T]) Len() int {
	return len(u.records)
}

// Push appends a record unconditionally, regardless of whether a snapshot
// is open.
func (u *UndoLog[T]) Push(r UndoRecord[T]) {
	u.records = append(u.records, r)
}

// Clear drops all records and resets the open-snapshot counter to zero.
func (u *UndoLog[T]) Clear() {
	u.records = nil
	u.openSnapshots = 0
}

// Extend appends each record from rs in order.
func (u *UndoLog[T]) Extend(rs []UndoRecord[T]) {
	u.records = append(u.records, rs...)
}

// Pop removes and returns the last record, or false if the log is empty.
func (u *UndoLog[T]) Pop() (UndoRecord[T], bool) {
	if len(u.records) == 0 {
		var zero UndoRecord[T]
		return zero, false
	}
	last := len(u.records) - 1
	r := u.records[last]
	u.records = u.records[:last]
	return r, true
}

// Last peeks at the last record without removing it, or false if the log
// is empty.
func (u *UndoLog[T]) Last() (UndoRecord[T], bool) {
	if len(u.records) == 0 {
		var zero UndoRecord[T]
		return zero, false
	}
	return u.records[len(u.records)-1], true
}

// StartSnapshot opens a new snapshot, returning a checkpoint token for the
// log's current length, and increments the open-snapshot counter.
func (u *UndoLog[T]) StartSnapshot() Snapshot {
	u.openSnapshots++
	return Snapshot(len(u.records))
}

// ActionsSince returns a view of the records appended since s. The
// returned slice aliases the log's backing storage and is invalidated by
// any subsequent mutation of the log (Push, Pop, Clear, RollbackTo,
// Commit); do not retain it across one.
func (u *UndoLog[T]) ActionsSince(s Snapshot) []UndoRecord[T] {
	if int(s) >= len(u.records) {
		return nil
	}
	return u.records[s:]
}

// HasChanges reports whether any record has been appended since s.
func (u *UndoLog[T]) HasChanges(s Snapshot) bool {
	return len(u.ActionsSince(s)) != 0
}

// assertValidSnapshot enforces the shared precondition of Commit and
// RollbackTo: a snapshot must be open, and s must refer to a point
// strictly before the current tail of the log. This strict '>' comparison
// is reproduced verbatim from the source; a snapshot opened at the exact
// current tail cannot be committed or rolled back to until something has
// been appended since. See DESIGN.md for the open-question note.
func (u *UndoLog[T]) assertValidSnapshot(s Snapshot) {
	if u.openSnapshots == 0 {
		panic(ErrInvalidSnapshot{Snapshot: int(s), Len: len(u.records), OpenSnapshots: u.openSnapshots})
	}
	if int(s) >= len(u.records) {
		panic(ErrInvalidSnapshot{Snapshot: int(s), Len: len(u.records), OpenSnapshots: u.openSnapshots})
	}
}

// Commit declares the records appended since s permanent relative to any
// outer snapshot. If this is the root (sole remaining) snapshot, s must be
// 0 and the log is cleared entirely; otherwise the records simply remain,
// to be consumed by an outer frame's own Commit or RollbackTo. In all
// accepted cases the open-snapshot counter is decremented.
func (u *UndoLog[T]) Commit(s Snapshot) {
	u.assertValidSnapshot(s)

	if u.openSnapshots == 1 {
		if s != 0 {
			panic(ErrRootCommit{Snapshot: int(s)})
		}
		u.records = nil
	}

	u.openSnapshots--
}

// RollbackTo pops records from the tail until the log's length is s,
// reversing none of them itself (that is SnapshotArray's job) and
// returning them in the order they were popped — newest first, i.e.
// strict LIFO. It does not change the open-snapshot counter: a caller
// that wants to both undo and close a frame must call RollbackTo followed
// by Commit (or an outer RollbackTo).
func (u *UndoLog[T]) RollbackTo(s Snapshot) []UndoRecord[T] {
	u.assertValidSnapshot(s)

	var popped []UndoRecord[T]
	for len(u.records) > int(s) {
		r, _ := u.Pop()
		popped = append(popped, r)
	}
	return popped
}

// String renders the log as UndoLogs[ r0, r1, ... ].
func (u *UndoLog[T]) String() string {
	parts := make([]string, len(u.records))
	for i, r := range u.records {
		parts[i] = r.String()
	}
	return "UndoLogs[ " + strings.Join(parts, ", ") + " ]"
}
