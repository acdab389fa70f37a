package planner

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/gosuda/tempora/internal/domain"
)

// Field selects which date field places a task on a grid. Weekly boards
// index by planned day; list and month views index by scheduled date. The
// two indices are never mixed within one view.
type Field int

const (
	ByPlannedDay Field = iota
	ByScheduledDate
)

// ErrNoHour is returned when a string carries no recognisable hour.
var ErrNoHour = errors.New("planner: no wall-clock hour in value")

// placementDate returns the date that places t under the given field.
func placementDate(t *domain.Task, field Field) *time.Time {
	if field == ByScheduledDate {
		return t.ScheduledDate
	}
	return t.PlannedDay
}

// IndexByDay groups schedulable tasks onto the given days, keyed by date key.
// Within a day, timed tasks sort ascending by block start and come before
// untimed tasks, which sort ascending by day order. Days with no tasks map to
// an empty (nil) slice; tasks outside the day window are dropped.
func IndexByDay(tasks []*domain.Task, days []time.Time, field Field) map[string][]*domain.Task {
	idx := make(map[string][]*domain.Task, len(days))
	for _, d := range days {
		idx[DateKey(d)] = nil
	}

	for _, t := range tasks {
		if !t.Schedulable() {
			continue
		}
		date := placementDate(t, field)
		if date == nil {
			continue
		}
		key := DateKey(*date)
		if _, ok := idx[key]; !ok {
			continue
		}
		idx[key] = append(idx[key], t)
	}

	for key := range idx {
		sortDayCell(idx[key])
	}
	return idx
}

// sortDayCell orders one day's tasks: timed before untimed, timed ascending
// by start then day order, untimed ascending by day order.
func sortDayCell(cell []*domain.Task) {
	sort.SliceStable(cell, func(i, j int) bool {
		a, b := cell[i], cell[j]
		switch {
		case a.TimeBlockStart != nil && b.TimeBlockStart != nil:
			if !a.TimeBlockStart.Equal(*b.TimeBlockStart) {
				return a.TimeBlockStart.Before(*b.TimeBlockStart)
			}
			return a.DayOrder < b.DayOrder
		case a.TimeBlockStart != nil:
			return true
		case b.TimeBlockStart != nil:
			return false
		default:
			return a.DayOrder < b.DayOrder
		}
	})
}

// DayGrid is one day of an hour-slot timeline: tasks bucketed under their
// representative hour, an untimed sub-list for tasks placed on the day
// without a time block, and read-only external events attached for display.
type DayGrid struct {
	Hours        map[int][]*domain.Task         `json:"hours"`
	Untimed      []*domain.Task                 `json:"untimed"`
	Events       map[int][]domain.CalendarEvent `json:"events,omitempty"`
	AllDayEvents []domain.CalendarEvent         `json:"all_day_events,omitempty"`
}

// IndexByDayAndHour builds the timeline grid for the given days and
// representative hour slots. A timed task lands in the slot nearest its
// stored wall-clock hour (ties toward the lower hour); a task placed on a
// day without a time block surfaces in the day's untimed list, never in an
// hour cell.
func IndexByDayAndHour(tasks []*domain.Task, days []time.Time, hourSlots []int, field Field) map[string]*DayGrid {
	grid := make(map[string]*DayGrid, len(days))
	for _, d := range days {
		grid[DateKey(d)] = &DayGrid{Hours: make(map[int][]*domain.Task, len(hourSlots))}
	}

	for _, t := range tasks {
		if !t.Schedulable() {
			continue
		}
		date := placementDate(t, field)
		if date == nil {
			continue
		}
		day, ok := grid[DateKey(*date)]
		if !ok {
			continue
		}
		if t.TimeBlockStart == nil {
			day.Untimed = append(day.Untimed, t)
			continue
		}
		// The stored start already carries the wall-clock hour the user
		// placed the task at; read it directly, never re-parse.
		slot := NearestSlot(t.TimeBlockStart.Hour(), hourSlots)
		day.Hours[slot] = append(day.Hours[slot], t)
	}

	for _, day := range grid {
		for slot := range day.Hours {
			sortDayCell(day.Hours[slot])
		}
		sort.SliceStable(day.Untimed, func(i, j int) bool {
			return day.Untimed[i].DayOrder < day.Untimed[j].DayOrder
		})
	}
	return grid
}

// NearestSlot maps an exact hour to the closest representative hour slot,
// breaking ties toward the lower hour. Slots must be non-empty and sorted
// ascending; with an empty slot list the hour is returned unchanged.
func NearestSlot(hour int, slots []int) int {
	if len(slots) == 0 {
		return hour
	}
	best := slots[0]
	bestDist := abs(hour - best)
	for _, s := range slots[1:] {
		d := abs(hour - s)
		if d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// AttachEvents merges read-only feed events into the grid for display.
// Timed events land in the slot nearest their wall-clock hour; all-day
// events go to the day's all-day list. Events outside the grid's day window
// are dropped, and nothing about the tasks changes.
func AttachEvents(grid map[string]*DayGrid, events []domain.CalendarEvent, hourSlots []int) {
	for _, ev := range events {
		if len(ev.Start) < len(dateKeyLayout) {
			continue
		}
		day, ok := grid[ev.Start[:len(dateKeyLayout)]]
		if !ok {
			continue
		}
		if ev.AllDay() {
			day.AllDayEvents = append(day.AllDayEvents, ev)
			continue
		}
		hour, err := ExtractLocalHour(ev.Start)
		if err != nil {
			day.AllDayEvents = append(day.AllDayEvents, ev)
			continue
		}
		slot := NearestSlot(hour, hourSlots)
		if day.Events == nil {
			day.Events = make(map[int][]domain.CalendarEvent)
		}
		day.Events[slot] = append(day.Events[slot], ev)
	}
}

// ExtractLocalHour reads the wall-clock hour out of a timestamp string
// ("2026-01-09T09:00:00", with or without a zone suffix) or a bare "HH:MM"
// value. The hour is taken from the string itself: round-tripping through a
// timezone-converting parser can shift the displayed hour by one, which is
// exactly the bug this function exists to prevent.
func ExtractLocalHour(s string) (int, error) {
	clock := s
	if i := strings.IndexAny(s, "T "); i >= 0 {
		clock = s[i+1:]
	}

	colon := strings.IndexByte(clock, ':')
	if colon != 1 && colon != 2 {
		return 0, ErrNoHour
	}

	hour := 0
	for _, c := range clock[:colon] {
		if c < '0' || c > '9' {
			return 0, ErrNoHour
		}
		hour = hour*10 + int(c-'0')
	}
	if hour > 23 {
		return 0, ErrNoHour
	}
	return hour, nil
}
