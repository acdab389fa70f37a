package planner

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/tempora/internal/domain"
)

// DefaultLedgerLimit bounds a ledger created with limit <= 0.
const DefaultLedgerLimit = 32

// UndoEntry records one scheduling mutation: the placement that held before
// and the one that was applied. Re-applying Previous through the scheduling
// flow reverses the mutation.
type UndoEntry struct {
	TaskID    uuid.UUID        `json:"task_id"`
	TaskTitle string           `json:"task_title"`
	Previous  domain.Placement `json:"previous"`
	Applied   domain.Placement `json:"applied"`
	At        time.Time        `json:"at"`
}

// UndoLedger is a bounded, caller-owned stack of scheduling mutations. Its
// lifecycle is scoped to one planner session; there is no process-wide
// instance. Entries are retained until popped or evicted by the bound — the
// engine never expires them on a timer; any visible undo window is a view
// concern.
type UndoLedger struct {
	mu      sync.Mutex
	limit   int
	entries []UndoEntry
}

// NewUndoLedger creates a ledger holding at most limit entries, evicting the
// oldest first.
func NewUndoLedger(limit int) *UndoLedger {
	if limit <= 0 {
		limit = DefaultLedgerLimit
	}
	return &UndoLedger{limit: limit}
}

// Record pushes an entry derived from a successful mutation.
func (l *UndoLedger) Record(m Mutation, at time.Time) {
	l.Push(UndoEntry{
		TaskID:    m.TaskID,
		TaskTitle: m.TaskTitle,
		Previous:  m.Previous,
		Applied:   m.Updates,
		At:        at,
	})
}

// Push appends an entry, evicting the oldest when the ledger is full.
func (l *UndoLedger) Push(e UndoEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.limit {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, e)
}

// Pop removes and returns the most recent entry.
func (l *UndoLedger) Pop() (UndoEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return UndoEntry{}, false
	}
	e := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return e, true
}

// Peek returns the most recent entry without removing it.
func (l *UndoLedger) Peek() (UndoEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return UndoEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of retained entries.
func (l *UndoLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Highlights tracks transient cell-emphasis markers keyed by highlight key.
// Cosmetic only: a marker is set alongside every successful schedule and
// cleared by the host on its drag-end signal.
type Highlights struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

// NewHighlights creates an empty marker set.
func NewHighlights() *Highlights {
	return &Highlights{keys: make(map[string]time.Time)}
}

// Mark records emphasis for a cell.
func (h *Highlights) Mark(key string, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys[key] = at
}

// Clear removes one marker.
func (h *Highlights) Clear(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.keys, key)
}

// Reset removes every marker. Hosts call this on a global drag-end signal so
// a drop target that never fires its own handler cannot leave a cell stuck
// highlighted.
func (h *Highlights) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.keys)
}

// Active returns the currently marked cell keys.
func (h *Highlights) Active() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	keys := make([]string, 0, len(h.keys))
	for k := range h.keys {
		keys = append(keys, k)
	}
	return keys
}
