package planner

import (
	"fmt"
	"time"

	"github.com/gosuda/tempora/internal/domain"
)

// Bucket names the mutually exclusive temporal groups a task can land in.
type Bucket string

const (
	BucketOverdue     Bucket = "overdue"
	BucketToday       Bucket = "today"
	BucketTomorrow    Bucket = "tomorrow"
	BucketThisWeek    Bucket = "this_week"
	BucketLater       Bucket = "later"
	BucketUnscheduled Bucket = "unscheduled"
	BucketCompleted   Bucket = "completed"
)

// Buckets partitions a task snapshot by scheduled date relative to a
// reference instant. Every input task appears in at most one bucket;
// recurring-parent templates appear in none.
type Buckets struct {
	Overdue     []*domain.Task `json:"overdue"`
	Today       []*domain.Task `json:"today"`
	Tomorrow    []*domain.Task `json:"tomorrow"`
	ThisWeek    []*domain.Task `json:"this_week"`
	Later       []*domain.Task `json:"later"`
	Unscheduled []*domain.Task `json:"unscheduled"`
	Completed   []*domain.Task `json:"completed"`
}

// Flatten returns all bucketed tasks as one list, bucket by bucket.
func (b *Buckets) Flatten() []*domain.Task {
	var out []*domain.Task
	for _, group := range [][]*domain.Task{
		b.Overdue, b.Today, b.Tomorrow, b.ThisWeek, b.Later, b.Unscheduled, b.Completed,
	} {
		out = append(out, group...)
	}
	return out
}

// Classify partitions tasks into temporal buckets relative to now. The first
// matching rule wins: completed, then unscheduled, then the day distance of
// the scheduled date. "This week" means the scheduled date falls inside the
// week containing now, with weeks starting on weekStart.
func Classify(tasks []*domain.Task, now time.Time, weekStart time.Weekday) *Buckets {
	b := &Buckets{}
	for _, t := range tasks {
		switch ClassifyOne(t, now, weekStart) {
		case BucketCompleted:
			b.Completed = append(b.Completed, t)
		case BucketUnscheduled:
			b.Unscheduled = append(b.Unscheduled, t)
		case BucketOverdue:
			b.Overdue = append(b.Overdue, t)
		case BucketToday:
			b.Today = append(b.Today, t)
		case BucketTomorrow:
			b.Tomorrow = append(b.Tomorrow, t)
		case BucketThisWeek:
			b.ThisWeek = append(b.ThisWeek, t)
		case BucketLater:
			b.Later = append(b.Later, t)
		}
	}
	return b
}

// ClassifyOne returns the bucket for a single task, or "" for tasks that are
// filtered out of classification entirely (recurring parents).
func ClassifyOne(t *domain.Task, now time.Time, weekStart time.Weekday) Bucket {
	if t.IsRecurringParent {
		return ""
	}
	if t.IsCompleted {
		return BucketCompleted
	}
	if t.ScheduledDate == nil {
		return BucketUnscheduled
	}

	diff := DaysUntil(*t.ScheduledDate, now)
	switch {
	case diff < 0:
		return BucketOverdue
	case diff == 0:
		return BucketToday
	case diff == 1:
		return BucketTomorrow
	case SameWeek(*t.ScheduledDate, now, weekStart):
		return BucketThisWeek
	default:
		return BucketLater
	}
}

// FormatDueDate derives the human label for a scheduled date relative to now.
// It is a pure function of the same day distance the classifier uses, so the
// label and the bucket always agree.
func FormatDueDate(scheduled, now time.Time) string {
	diff := DaysUntil(scheduled, now)
	switch {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Tomorrow"
	case diff == -1:
		return "Yesterday"
	case diff > 1 && diff <= 7:
		return fmt.Sprintf("In %d days", diff)
	case diff < -1:
		return fmt.Sprintf("%d days ago", -diff)
	default:
		return scheduled.Format("Jan 2")
	}
}
