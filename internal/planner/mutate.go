package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/tempora/internal/domain"
)

// Target describes where a move request wants a task to land. Hour is nil
// for day-level drops. DurationMinutes is a property of the requesting view
// (60 for the hour timeline, 120 for the condensed 3-day grid), not of the
// task, and is only consulted when Hour is set. Field selects which date
// column the view writes.
type Target struct {
	Day             time.Time
	Hour            *int
	DurationMinutes int
	Field           Field
}

// Mutation is the synchronous product of a scheduling action: the full
// placement to persist, the placement that held before it, and the transient
// highlight key for the cell that received the task. Persisting Updates and
// surfacing the undo affordance are the caller's responsibility.
type Mutation struct {
	TaskID    uuid.UUID        `json:"task_id"`
	TaskTitle string           `json:"task_title"`
	Updates   domain.Placement `json:"updates"`
	Previous  domain.Placement `json:"previous"`
	Highlight string           `json:"highlight"`
}

// NextDayOrder computes the append-to-end order for a drop onto a day: one
// past the highest existing day order, treating negatives as zero. The moved
// task is excluded from the scan so dropping a task onto the cell it already
// occupies does not inflate its own order.
func NextDayOrder(tasksOnDay []*domain.Task, moving uuid.UUID) int {
	maxOrder := 0
	for _, t := range tasksOnDay {
		if t.ID == moving {
			continue
		}
		if t.DayOrder > maxOrder {
			maxOrder = t.DayOrder
		}
	}
	return maxOrder + 1
}

// Schedule computes the placement update for dropping task onto target, given
// the tasks already on the target day. The task always lands last in the
// day's untimed order; when an hour is supplied, both time-block fields are
// derived together from (day, hour, duration), and when it is not, any
// existing time block is cleared — moving to a new day without a slot
// un-times the task. The target date field and status = scheduled are part of
// the same atomic update.
func Schedule(task *domain.Task, target Target, tasksOnDay []*domain.Task) Mutation {
	prev := task.Placement()
	day := StartOfDay(target.Day)

	updates := prev
	updates.DayOrder = NextDayOrder(tasksOnDay, task.ID)
	updates.Status = domain.TaskStatusScheduled

	if target.Field == ByScheduledDate {
		updates.ScheduledDate = &day
	} else {
		updates.PlannedDay = &day
	}

	if target.Hour != nil {
		start := CombineDayHour(day, *target.Hour)
		end := start.Add(time.Duration(target.DurationMinutes) * time.Minute)
		updates.TimeBlockStart = &start
		updates.TimeBlockEnd = &end
	} else {
		updates.TimeBlockStart = nil
		updates.TimeBlockEnd = nil
	}

	return Mutation{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Updates:   updates,
		Previous:  prev,
		Highlight: HighlightKey(day, target.Hour),
	}
}

// Unschedule computes the inverse move: back to the inbox. The planned day
// and time block are cleared and the day order resets to zero. Status is
// deliberately left as it was — this primitive does not force a task back to
// backlog.
func Unschedule(task *domain.Task) Mutation {
	prev := task.Placement()

	updates := prev
	updates.PlannedDay = nil
	updates.DayOrder = 0
	updates.TimeBlockStart = nil
	updates.TimeBlockEnd = nil

	return Mutation{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Updates:   updates,
		Previous:  prev,
	}
}

// HighlightKey names the cell a schedule landed in, for transient visual
// emphasis: "2026-01-09" for a day drop, "2026-01-09-09" for an hour drop.
// Purely cosmetic state, not part of the data model.
func HighlightKey(day time.Time, hour *int) string {
	if hour == nil {
		return DateKey(day)
	}
	return fmt.Sprintf("%s-%02d", DateKey(day), *hour)
}
