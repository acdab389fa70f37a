package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/tempora/internal/domain"
	"github.com/gosuda/tempora/internal/server/middleware"
	redisstore "github.com/gosuda/tempora/internal/store/redis"
)

// publish sends a small JSON event to a channel. Publish failures are logged,
// never surfaced; live refresh is best effort.
func publish(ctx context.Context, pub Publisher, channel, eventType string) {
	if pub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"type": eventType})
	if err := pub.Publish(ctx, channel, payload); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("publish event failed")
	}
}

type CreateTaskInput struct {
	Body struct {
		Title            string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Notes            string     `json:"notes,omitempty" doc:"Free-form notes"`
		Status           string     `json:"status,omitempty" doc:"List the task starts in"`
		EstimatedMinutes int        `json:"estimated_minutes,omitempty" minimum:"0" doc:"Estimated effort in minutes (0 = no estimate)"`
		ScheduledDate    *time.Time `json:"scheduled_date,omitempty" doc:"Due date"`
		ParentTaskID     *uuid.UUID `json:"parent_task_id,omitempty" doc:"Recurring template this instance belongs to"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct{}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title            string     `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Notes            *string    `json:"notes,omitempty" doc:"Free-form notes"`
		Status           string     `json:"status,omitempty" doc:"List the task lives in"`
		EstimatedMinutes *int       `json:"estimated_minutes,omitempty" minimum:"0" doc:"Estimated effort in minutes"`
		ScheduledDate    *time.Time `json:"scheduled_date,omitempty" doc:"Due date"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type CompleteTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Completed bool `json:"completed" doc:"Completion state to set"`
	}
}

type CompleteTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore, pub Publisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		status := domain.TaskStatusBacklog
		if input.Body.Status != "" {
			status = domain.TaskStatus(input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
			}
		}

		now := time.Now()
		t := &domain.Task{
			ID:               uuid.New(),
			UserID:           userID,
			Title:            input.Body.Title,
			Notes:            input.Body.Notes,
			Status:           status,
			EstimatedMinutes: input.Body.EstimatedMinutes,
			ScheduledDate:    input.Body.ScheduledDate,
			ParentTaskID:     input.Body.ParentTaskID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		publish(ctx, pub, redisstore.TasksChannel(userID), "task.created")

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List all tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, _ *ListTasksInput) (*ListTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		tasks, err := store.Tasks().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
		}
		if input.Body.Notes != nil {
			existing.Notes = *input.Body.Notes
		}
		if input.Body.Status != "" {
			status := domain.TaskStatus(input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
			}
			existing.Status = status
		}
		if input.Body.EstimatedMinutes != nil {
			existing.EstimatedMinutes = *input.Body.EstimatedMinutes
		}
		if input.Body.ScheduledDate != nil {
			existing.ScheduledDate = input.Body.ScheduledDate
		}
		existing.UpdatedAt = time.Now()

		err = store.Tasks().Update(ctx, existing)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		publish(ctx, pub, redisstore.TasksChannel(userID), "task.updated")

		return &UpdateTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}/complete",
		Summary:     "Mark a task completed or not",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CompleteTaskInput) (*CompleteTaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		existing, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		err = store.Tasks().SetCompleted(ctx, userID, input.ID, input.Body.Completed)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		existing.IsCompleted = input.Body.Completed
		existing.UpdatedAt = time.Now()

		publish(ctx, pub, redisstore.TasksChannel(userID), "task.completed")
		publish(ctx, pub, redisstore.PlannerChannel(userID), "task.completed")

		return &CompleteTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Tasks().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		publish(ctx, pub, redisstore.TasksChannel(userID), "task.deleted")

		return nil, nil
	})
}
