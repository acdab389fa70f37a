package domain

import (
	"context"
	"time"
)

// CalendarEvent is a read-only record from an external calendar feed. Events
// are merged into day/slot grids for display only; they are never mutated and
// never counted by the capacity calculator.
//
// Start and End are kept as the feed's raw strings: either a full timestamp
// ("2026-01-09T09:00:00+01:00") or a bare date ("2026-01-09") for all-day
// events. The planner extracts the wall-clock hour from the string itself
// rather than re-parsing through a timezone-aware constructor, so the
// displayed hour always matches the feed.
type CalendarEvent struct {
	ID        string   `json:"id"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// AllDay reports whether the event carries a bare date with no time component.
func (e CalendarEvent) AllDay() bool {
	return len(e.Start) == len("2006-01-02")
}

// CalendarFeed lists external events overlapping a day window.
type CalendarFeed interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]CalendarEvent, error)
}
