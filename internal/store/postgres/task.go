package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/tempora/internal/domain"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type taskRepo struct {
	pool *pgxpool.Pool
}

// time_block_start and time_block_end must be timestamp WITHOUT time zone
// (see schema.sql): the stored value is the wall-clock hour the user placed
// the task at, and a timestamptz column would shift it through a UTC
// round-trip. scheduled_date and planned_day are plain date columns for the
// same reason.
const taskColumns = `
	id, user_id, title, notes, status, is_completed,
	scheduled_date, planned_day, day_order, time_block_start, time_block_end,
	estimated_minutes, parent_task_id, is_recurring_parent,
	created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Notes, &t.Status, &t.IsCompleted,
		&t.ScheduledDate, &t.PlannedDay, &t.DayOrder, &t.TimeBlockStart, &t.TimeBlockEnd,
		&t.EstimatedMinutes, &t.ParentTaskID, &t.IsRecurringParent,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (
			id, user_id, title, notes, status, is_completed,
			scheduled_date, planned_day, day_order, time_block_start, time_block_end,
			estimated_minutes, parent_task_id, is_recurring_parent,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Title, t.Notes, t.Status, t.IsCompleted,
		t.ScheduledDate, t.PlannedDay, t.DayOrder, t.TimeBlockStart, t.TimeBlockEnd,
		t.EstimatedMinutes, t.ParentTaskID, t.IsRecurringParent,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND id = $2`

	t, err := scanTask(r.pool.QueryRow(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}
	return t, nil
}

func (r *taskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByUser: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByUser: %w", err)
	}
	return tasks, nil
}

func (r *taskRepo) ListByPlannedDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND planned_day = $2
		ORDER BY day_order`

	rows, err := r.pool.Query(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByPlannedDay: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByPlannedDay: %w", err)
	}
	return tasks, nil
}

func (r *taskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `
		UPDATE tasks SET
			title = $3, notes = $4, status = $5, is_completed = $6,
			scheduled_date = $7, planned_day = $8, day_order = $9,
			time_block_start = $10, time_block_end = $11,
			estimated_minutes = $12, parent_task_id = $13, is_recurring_parent = $14,
			updated_at = $15
		WHERE user_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query,
		t.UserID, t.ID,
		t.Title, t.Notes, t.Status, t.IsCompleted,
		t.ScheduledDate, t.PlannedDay, t.DayOrder,
		t.TimeBlockStart, t.TimeBlockEnd,
		t.EstimatedMinutes, t.ParentTaskID, t.IsRecurringParent,
		t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateSchedule writes all placement fields in a single statement so a move
// can never leave the task with a half-applied placement.
func (r *taskRepo) UpdateSchedule(ctx context.Context, userID, id uuid.UUID, p domain.Placement) error {
	query := `
		UPDATE tasks SET
			scheduled_date = $3, planned_day = $4, day_order = $5,
			time_block_start = $6, time_block_end = $7, status = $8,
			updated_at = now()
		WHERE user_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query,
		userID, id,
		p.ScheduledDate, p.PlannedDay, p.DayOrder,
		p.TimeBlockStart, p.TimeBlockEnd, p.Status)
	if err != nil {
		return fmt.Errorf("taskRepo.UpdateSchedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.UpdateSchedule: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *taskRepo) SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) error {
	query := `
		UPDATE tasks SET is_completed = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query, userID, id, completed)
	if err != nil {
		return fmt.Errorf("taskRepo.SetCompleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.SetCompleted: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE user_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}
