package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusFocus     TaskStatus = "focus"
	TaskStatusScheduled TaskStatus = "scheduled"
	TaskStatusBacklog   TaskStatus = "backlog"
	TaskStatusWaiting   TaskStatus = "waiting"
	TaskStatusSomeday   TaskStatus = "someday"
)

// Valid reports whether s is one of the recognised task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusFocus, TaskStatusScheduled, TaskStatusBacklog, TaskStatusWaiting, TaskStatusSomeday:
		return true
	default:
		return false
	}
}

// Task is the schedulable unit the planner engine reasons about.
//
// ScheduledDate and PlannedDay are distinct date-only fields: ScheduledDate is
// the "due on this day" date used by list, board and month views, PlannedDay
// is the weekly-planner placement. A task may carry one, both, or neither.
// DayOrder breaks ties among tasks on the same planned day that have no time
// block; when TimeBlockStart is set it dominates ordering, and the two
// time-block fields are only ever written together.
type Task struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Title             string     `json:"title"`
	Notes             string     `json:"notes,omitempty"`
	Status            TaskStatus `json:"status"`
	IsCompleted       bool       `json:"is_completed"`
	ScheduledDate     *time.Time `json:"scheduled_date,omitempty"`
	PlannedDay        *time.Time `json:"planned_day,omitempty"`
	DayOrder          int        `json:"day_order"`
	TimeBlockStart    *time.Time `json:"time_block_start,omitempty"`
	TimeBlockEnd      *time.Time `json:"time_block_end,omitempty"`
	EstimatedMinutes  int        `json:"estimated_minutes,omitempty"` // 0 means no estimate
	ParentTaskID      *uuid.UUID `json:"parent_task_id,omitempty"`
	IsRecurringParent bool       `json:"is_recurring_parent,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Schedulable reports whether the task participates in temporal buckets,
// day/slot grids and capacity math. Completed tasks and recurring templates
// never do.
func (t *Task) Schedulable() bool {
	return !t.IsCompleted && !t.IsRecurringParent
}

// Placement groups the scheduling fields that are always read and written as
// one unit. The scheduling mutator derives a whole Placement and the store
// persists it in a single statement; no call site sets a time-block field in
// isolation.
type Placement struct {
	ScheduledDate  *time.Time `json:"scheduled_date,omitempty"`
	PlannedDay     *time.Time `json:"planned_day,omitempty"`
	DayOrder       int        `json:"day_order"`
	TimeBlockStart *time.Time `json:"time_block_start,omitempty"`
	TimeBlockEnd   *time.Time `json:"time_block_end,omitempty"`
	Status         TaskStatus `json:"status"`
}

// Placement captures the task's current scheduling fields.
func (t *Task) Placement() Placement {
	return Placement{
		ScheduledDate:  t.ScheduledDate,
		PlannedDay:     t.PlannedDay,
		DayOrder:       t.DayOrder,
		TimeBlockStart: t.TimeBlockStart,
		TimeBlockEnd:   t.TimeBlockEnd,
		Status:         t.Status,
	}
}

// ApplyPlacement overwrites the task's scheduling fields from p.
func (t *Task) ApplyPlacement(p Placement) {
	t.ScheduledDate = p.ScheduledDate
	t.PlannedDay = p.PlannedDay
	t.DayOrder = p.DayOrder
	t.TimeBlockStart = p.TimeBlockStart
	t.TimeBlockEnd = p.TimeBlockEnd
	t.Status = p.Status
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	ListByPlannedDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	UpdateSchedule(ctx context.Context, userID, id uuid.UUID, p Placement) error
	SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
