package snapshotarray

import (
	"testing"

	"github.com/aarondl/unify/undolog"
)

func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic, got none")
		}
	}()
	fn()
}

func TestPushWithoutSnapshotDoesNotJournal(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Push(1)
	a.Push(2)

	if a.Len() != 2 {
		t.Fatal("expected length 2, got", a.Len())
	}
	if got := a.MustGet(1); got != 2 {
		t.Error("wrong value at 1:", got)
	}
	if len(a.ActionsSince(Snapshot{})) != 0 {
		t.Error("expected no journal entries outside a snapshot")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Push(10)
	a.Push(20)
	a.Push(30)

	before := snapshotValues(a)

	s := a.StartSnapshot()
	a.Push(40)
	a.Set(0, 99)
	a.SetAll(func(i int, v int) int { return v + 1 })

	a.RollbackTo(s)

	after := snapshotValues(a)
	if len(before) != len(after) {
		t.Fatalf("length differs: before %v after %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("index %d: before %v after %v", i, before[i], after[i])
		}
	}
}

func snapshotValues(a *SnapshotArray[int]) []int {
	out := make([]int, a.Len())
	for i := range out {
		out[i] = a.MustGet(i)
	}
	return out
}

func TestCommitPreservesGrowth(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Push(42)
	s := a.StartSnapshot()
	a.Push(100)
	a.Commit(s)

	if a.Len() != 2 {
		t.Error("expected length 2 after commit, got", a.Len())
	}
}

func TestRollbackDiscardsGrowth(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Push(42)
	s := a.StartSnapshot()
	a.Push(100)
	a.RollbackTo(s)

	if a.Len() != 1 {
		t.Error("expected length 1 after rollback, got", a.Len())
	}
}

func TestSetAllJournalsEachIndex(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Extend([]int{1, 2, 3})

	s := a.StartSnapshot()
	a.SetAll(func(i int, v int) int { return v * 10 })

	if got := a.MustGet(0); got != 10 {
		t.Error("expected SetAll to have applied, got", got)
	}

	a.RollbackTo(s)
	want := []int{1, 2, 3}
	for i, w := range want {
		if got := a.MustGet(i); got != w {
			t.Errorf("index %d: got %d want %d", i, got, w)
		}
	}
}

func TestRecordCustomUndo(t *testing.T) {
	t.Parallel()

	a := New[string](0)
	if a.Record(undolog.SetElemRecord(0, "x")) {
		t.Error("Record should return false outside a snapshot")
	}

	a.Push("a")
	s := a.StartSnapshot()
	if !a.Record(undolog.SetElemRecord(0, "a")) {
		t.Error("Record should return true inside a snapshot")
	}
	a.MustSet(0, "b")

	a.RollbackTo(s)
	if got := a.MustGet(0); got != "a" {
		t.Error("expected custom undo record to restore value, got", got)
	}
}

func TestResetInvalidatesLog(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Push(1)
	a.StartSnapshot()
	a.Push(2)

	a.Reset()
	if a.Len() != 0 {
		t.Error("expected length 0 after reset")
	}
	if a.InSnapshot() {
		t.Error("expected reset to clear open snapshots")
	}
}

func TestCommitAllDiscardsLogKeepsValues(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Push(1)
	a.StartSnapshot()
	a.Push(2)

	a.CommitAll()
	if a.Len() != 2 {
		t.Error("expected CommitAll to preserve values, got length", a.Len())
	}
	if a.InSnapshot() {
		t.Error("expected CommitAll to clear open snapshots")
	}
}

func TestMustGetSetOutOfRangePanics(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	mustPanic(t, func() { a.MustGet(0) })
	mustPanic(t, func() { a.MustSet(0, 1) })
	mustPanic(t, func() { a.Set(0, 1) })
}

func TestString(t *testing.T) {
	t.Parallel()

	a := New[int](0)
	a.Extend([]int{1, 2, 3})
	if got, want := a.String(), "SnapshotArray[ 1, 2, 3 ]"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
