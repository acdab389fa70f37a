// Package planner implements the task scheduling and temporal grouping
// engine: bucket classification, day/hour grid indexing, capacity
// utilization, scheduling mutations and single-level undo. Everything in
// this package is pure and synchronous over an in-memory task snapshot;
// persistence of the produced update payloads is the caller's concern.
package planner

import "time"

const dateKeyLayout = "2006-01-02"

// DateKey formats a day as its canonical yyyy-mm-dd grid key.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DaysUntil returns the whole-day distance from now to date: positive for
// future dates, zero for today, negative for past dates. Both arguments are
// truncated to their own midnight first, and the division rounds to absorb
// DST transitions.
func DaysUntil(date, now time.Time) int {
	d := StartOfDay(date).Sub(StartOfDay(now))
	if d >= 0 {
		return int((d + 12*time.Hour) / (24 * time.Hour))
	}
	return -int((-d + 12*time.Hour) / (24 * time.Hour))
}

// WeekStart returns the midnight of the week containing t, with weeks
// starting on the given weekday (Monday in the default configuration).
func WeekStart(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

// SameWeek reports whether date falls in the week containing now.
func SameWeek(date, now time.Time, weekStart time.Weekday) bool {
	start := WeekStart(now, weekStart)
	end := start.AddDate(0, 0, 7)
	d := StartOfDay(date)
	return !d.Before(start) && d.Before(end)
}

// WeekDays returns the seven consecutive days of the week containing t.
func WeekDays(t time.Time, weekStart time.Weekday) []time.Time {
	start := WeekStart(t, weekStart)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// CombineDayHour places an hour-of-day onto a calendar day, preserving the
// day's location. This is the only way the engine constructs time-block
// timestamps, so start and end are always derived from the same day.
func CombineDayHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}
