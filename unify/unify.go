// Package unify implements a weighted union-find (disjoint-set) forest
// with path compression, layered on top of snapshotarray.SnapshotArray so
// that every mutation — including the ones path compression makes that
// union-by-rank did not logically require — participates in rollback.
//
// Each equivalence class carries a caller-supplied payload that is
// overwritten wholesale at union time; merging payloads is the caller's
// responsibility, not this package's.
package unify

import (
	"fmt"
	"strings"

	"github.com/aarondl/unify/snapshotarray"
)

// VarIndex identifies a node's position in a UnificationTable. Two
// VarIndex values compare equal iff their underlying integers are equal.
type VarIndex struct {
	index int
}

// NewVarIndex wraps a raw position as a VarIndex.
func NewVarIndex(i int) VarIndex {
	return VarIndex{index: i}
}

// Index returns the wrapped integer position.
func (v VarIndex) Index() int {
	return v.index
}

// String renders the index as VarIndex { index: N }.
func (v VarIndex) String() string {
	return fmt.Sprintf("VarIndex { index: %d }", v.index)
}

// VarValue is a node in the union-find forest: a payload belonging to the
// equivalence class this node currently roots or is attached to, a rank
// (meaningful only when this node is a root), and a parent pointer. A node
// is a root iff Parent equals its own index.
type VarValue[T any] struct {
	Value  T
	Rank   int
	Parent VarIndex
}

// String renders the node as
// VarValue { value: V, rank: R, parent: VarIndex { index: N } }.
func (v VarValue[T]) String() string {
	return fmt.Sprintf("VarValue { value: %v, rank: %d, parent: %s }", v.Value, v.Rank, v.Parent)
}

// Equal reports whether two nodes have the same value and parent. Rank is
// intentionally excluded: path compression can change rank only at roots,
// and this equality definition is load-bearing for snapshot round-trip
// tests.
func (v VarValue[T]) Equal(other VarValue[T], eq func(a, b T) bool) bool {
	return v.Parent == other.Parent && eq(v.Value, other.Value)
}

// UnificationTable is a union-find forest of VarValue[T] nodes stored in a
// SnapshotArray, offering weighted union (by rank) with path compression.
type UnificationTable[T any] struct {
	array *snapshotarray.SnapshotArray[VarValue[T]]
}

// New returns an empty table. capacity is an advisory hint, as in
// snapshotarray.New.
func New[T any](capacity int) *UnificationTable[T] {
	return &UnificationTable[T]{array: snapshotarray.New[VarValue[T]](capacity)}
}

// Len returns the number of nodes in the table.
func (t *UnificationTable[T]) Len() int {
	return t.array.Len()
}

// Push appends a fresh root node carrying v: its rank is 0 and its parent
// is its own (newly assigned) index. Returns that index.
func (t *UnificationTable[T]) Push(v T) VarIndex {
	i := t.array.Len()
	idx := NewVarIndex(i)
	t.array.Push(VarValue[T]{Value: v, Rank: 0, Parent: idx})
	return idx
}

// PushVar appends n verbatim. This is an escape hatch for deserialization
// or testing; the caller is responsible for the table's structural
// invariants (parent in range, acyclic, rank meaningful only at roots).
func (t *UnificationTable[T]) PushVar(n VarValue[T]) VarIndex {
	i := t.array.Len()
	t.array.Push(n)
	return NewVarIndex(i)
}

// Get returns a copy of the node at i, or false if i is out of range.
func (t *UnificationTable[T]) Get(i VarIndex) (VarValue[T], bool) {
	return t.array.Get(i.Index())
}

// Value returns the node at idx, panicking (via SnapshotArray.MustGet) if
// idx is out of range.
func (t *UnificationTable[T]) Value(idx VarIndex) VarValue[T] {
	return t.array.MustGet(idx.Index())
}

// Index returns the stored parent field of the node at position i,
// panicking if i is out of range. It is a coarse accessor that reveals an
// implementation detail (the raw parent pointer, not the representative);
// callers use it only as a convenient producer of VarIndex values.
func (t *UnificationTable[T]) Index(i VarIndex) VarIndex {
	return t.array.MustGet(i.Index()).Parent
}

// Set overwrites the node at idx with n, journaled like any other
// SnapshotArray write.
func (t *UnificationTable[T]) Set(idx VarIndex, n VarValue[T]) {
	t.array.Set(idx.Index(), n)
}

// Update reads the node at idx, applies f, and writes the result back via
// Set.
func (t *UnificationTable[T]) Update(idx VarIndex, f func(VarValue[T]) VarValue[T]) {
	t.Set(idx, f(t.Value(idx)))
}

// Find returns the representative (root) of the equivalence class
// containing x, compressing the path from x to the root so that every
// node visited now points directly at it. Every compressing write goes
// through Set so it is journaled: without this, rollback could not
// restore the pre-compression tree shape.
func (t *UnificationTable[T]) Find(x VarIndex) VarIndex {
	n := t.Value(x)
	if n.Parent == x {
		return x
	}

	root := t.Find(n.Parent)
	if root != n.Parent {
		n.Parent = root
		t.Set(x, n)
	}
	return root
}

// Union merges the equivalence classes containing a and b, using rank to
// decide which representative survives, and assigns newValue as the
// payload of the merged class's new root. If a and b are already in the
// same class, Union is a no-op and returns their shared representative.
// Returns the representative of the merged class.
//
// The payload-assignment contract: after Union(a, b, newValue), the new
// root holds exactly newValue; whatever the two previous roots held is
// discarded. Merging payloads, if desired, is the caller's responsibility
// before calling Union.
func (t *UnificationTable[T]) Union(a, b VarIndex, newValue T) VarIndex {
	ra := t.Find(a)
	rb := t.Find(b)
	if ra == rb {
		return ra
	}

	rankA := t.Value(ra).Rank
	rankB := t.Value(rb).Rank

	switch {
	case rankA < rankB:
		t.RedirectRoot(rankB, ra, rb, newValue)
		return rb
	case rankA > rankB:
		t.RedirectRoot(rankA, rb, ra, newValue)
		return ra
	default:
		t.RedirectRoot(rankA+1, rb, ra, newValue)
		return ra
	}
}

// RedirectRoot makes old point at new (old is no longer a root, so its
// rank and value are no longer semantically meaningful, though their
// stored bits are left untouched), and sets new's rank to newRank and
// value to newValue (new's parent remains itself). Both writes are
// journaled individually via Set. Exposed directly, not just as a Union
// internal, since it is a primitive operation in its own right (see
// spec's end-to-end scenario for it).
func (t *UnificationTable[T]) RedirectRoot(newRank int, old, newRoot VarIndex, newValue T) {
	oldNode := t.Value(old)
	oldNode.Parent = newRoot
	t.Set(old, oldNode)

	newNode := t.Value(newRoot)
	newNode.Rank = newRank
	newNode.Value = newValue
	t.Set(newRoot, newNode)
}

// Unioned reports whether a and b belong to the same equivalence class.
func (t *UnificationTable[T]) Unioned(a, b VarIndex) bool {
	return t.Find(a) == t.Find(b)
}

// FindRoot returns the full node of the representative of the class that
// contains node's parent. It is built directly on top of Find and Value, a
// thin composition of the two.
func (t *UnificationTable[T]) FindRoot(node VarValue[T]) VarValue[T] {
	return t.Value(t.Find(node.Parent))
}

// Reset walks every node and reinitializes it to a singleton root
// (Rank: 0, Parent: its own index), preserving each node's Value, then
// discards all pending undo state via the underlying array's CommitAll.
// The array itself is not shrunk. Any outstanding snapshot is invalidated
// by this; callers must not mix Reset with a pending snapshot.
func (t *UnificationTable[T]) Reset() {
	t.array.SetAll(func(i int, v VarValue[T]) VarValue[T] {
		v.Rank = 0
		v.Parent = NewVarIndex(i)
		return v
	})
	t.array.CommitAll()
}

// InSnapshot reports whether a snapshot is currently open.
func (t *UnificationTable[T]) InSnapshot() bool {
	return t.array.InSnapshot()
}

// StartSnapshot opens a new snapshot on the underlying array.
func (t *UnificationTable[T]) StartSnapshot() snapshotarray.Snapshot {
	return t.array.StartSnapshot()
}

// RollbackTo restores the table to the state it had when s was opened.
func (t *UnificationTable[T]) RollbackTo(s snapshotarray.Snapshot) {
	t.array.RollbackTo(s)
}

// Commit declares the mutations since s permanent relative to any outer
// snapshot.
func (t *UnificationTable[T]) Commit(s snapshotarray.Snapshot) {
	t.array.Commit(s)
}

// String renders the table as UnificationTable[ v0, v1, ... ].
func (t *UnificationTable[T]) String() string {
	parts := make([]string, t.array.Len())
	for i := range parts {
		parts[i] = t.array.MustGet(i).String()
	}
	return "UnificationTable[ " + strings.Join(parts, ", ") + " ]"
}
