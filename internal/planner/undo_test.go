package planner_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/tempora/internal/planner"
)

func TestUndoLedger_LIFO(t *testing.T) {
	t.Parallel()

	ledger := planner.NewUndoLedger(8)
	first := planner.UndoEntry{TaskID: uuid.New(), TaskTitle: "first", At: time.Now()}
	second := planner.UndoEntry{TaskID: uuid.New(), TaskTitle: "second", At: time.Now()}

	ledger.Push(first)
	ledger.Push(second)
	require.Equal(t, 2, ledger.Len())

	got, ok := ledger.Pop()
	require.True(t, ok)
	assert.Equal(t, second.TaskID, got.TaskID)

	got, ok = ledger.Pop()
	require.True(t, ok)
	assert.Equal(t, first.TaskID, got.TaskID)

	_, ok = ledger.Pop()
	assert.False(t, ok)
}

func TestUndoLedger_PeekDoesNotRemove(t *testing.T) {
	t.Parallel()

	ledger := planner.NewUndoLedger(8)

	_, ok := ledger.Peek()
	assert.False(t, ok)

	entry := planner.UndoEntry{TaskID: uuid.New(), TaskTitle: "move"}
	ledger.Push(entry)

	peeked, ok := ledger.Peek()
	require.True(t, ok)
	assert.Equal(t, entry.TaskID, peeked.TaskID)
	assert.Equal(t, 1, ledger.Len())
}

func TestUndoLedger_BoundEvictsOldest(t *testing.T) {
	t.Parallel()

	ledger := planner.NewUndoLedger(2)
	a := planner.UndoEntry{TaskID: uuid.New(), TaskTitle: "a"}
	b := planner.UndoEntry{TaskID: uuid.New(), TaskTitle: "b"}
	c := planner.UndoEntry{TaskID: uuid.New(), TaskTitle: "c"}

	ledger.Push(a)
	ledger.Push(b)
	ledger.Push(c)

	require.Equal(t, 2, ledger.Len())
	got, _ := ledger.Pop()
	assert.Equal(t, c.TaskID, got.TaskID)
	got, _ = ledger.Pop()
	assert.Equal(t, b.TaskID, got.TaskID, "oldest entry was evicted, not the newest")
}

func TestUndoLedger_NoExpiry(t *testing.T) {
	t.Parallel()

	ledger := planner.NewUndoLedger(4)
	stale := planner.UndoEntry{TaskID: uuid.New(), At: time.Now().Add(-24 * time.Hour)}
	ledger.Push(stale)

	// The engine never expires entries on its own; only Pop or eviction
	// removes them.
	got, ok := ledger.Peek()
	require.True(t, ok)
	assert.Equal(t, stale.TaskID, got.TaskID)
}

func TestHighlights(t *testing.T) {
	t.Parallel()

	h := planner.NewHighlights()
	h.Mark("2025-01-06", time.Now())
	h.Mark("2025-01-06-09", time.Now())

	assert.ElementsMatch(t, []string{"2025-01-06", "2025-01-06-09"}, h.Active())

	h.Clear("2025-01-06")
	assert.Equal(t, []string{"2025-01-06-09"}, h.Active())

	h.Reset()
	assert.Empty(t, h.Active(), "global drag-end reset leaves no stuck cells")
}
