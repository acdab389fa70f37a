package v1

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/tempora/internal/config"
	"github.com/gosuda/tempora/internal/domain"
	"github.com/gosuda/tempora/internal/planner"
	"github.com/gosuda/tempora/internal/server/middleware"
	redisstore "github.com/gosuda/tempora/internal/store/redis"
)

// CapacityNotifier receives an alert when a move overloads a day.
// *notify.Notifier satisfies this interface.
type CapacityNotifier interface {
	NotifyOverCapacity(ctx context.Context, userEmail, day string, util planner.Utilization) error
}

// Planner holds the per-user scheduling state that lives outside the
// database: undo ledgers and drop highlight markers.
type Planner struct {
	store    DataStore
	pub      Publisher
	feed     domain.CalendarFeed // nil when no calendar is configured
	notifier CapacityNotifier    // nil when alerts are not configured
	cfg      config.PlannerConfig

	mu         sync.Mutex
	ledgers    map[uuid.UUID]*planner.UndoLedger
	highlights map[uuid.UUID]*planner.Highlights
}

func NewPlanner(store DataStore, pub Publisher, feed domain.CalendarFeed, notifier CapacityNotifier, cfg config.PlannerConfig) *Planner {
	return &Planner{
		store:      store,
		pub:        pub,
		feed:       feed,
		notifier:   notifier,
		cfg:        cfg,
		ledgers:    make(map[uuid.UUID]*planner.UndoLedger),
		highlights: make(map[uuid.UUID]*planner.Highlights),
	}
}

func (p *Planner) ledgerFor(userID uuid.UUID) *planner.UndoLedger {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.ledgers[userID]
	if !ok {
		l = planner.NewUndoLedger(p.cfg.UndoLimit)
		p.ledgers[userID] = l
	}
	return l
}

func (p *Planner) highlightsFor(userID uuid.UUID) *planner.Highlights {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.highlights[userID]
	if !ok {
		h = planner.NewHighlights()
		p.highlights[userID] = h
	}
	return h
}

// hourSlots returns the timeline hour grid derived from office hours and slot
// width. A 120-minute condensed slot on 8-18 office hours yields 8,10,12,14,16.
func (p *Planner) hourSlots(condensed bool) []int {
	step := p.cfg.SlotMinutes / 60
	if condensed {
		step = p.cfg.CondensedSlotMinutes / 60
	}
	if step < 1 {
		step = 1
	}

	var slots []int
	for h := p.cfg.OfficeHoursStart; h < p.cfg.OfficeHoursEnd; h += step {
		slots = append(slots, h)
	}
	return slots
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseField(s string) (planner.Field, error) {
	switch s {
	case "", "planned":
		return planner.ByPlannedDay, nil
	case "scheduled":
		return planner.ByScheduledDate, nil
	default:
		return 0, errors.New("unknown field: " + s)
	}
}

// tasksOn filters tasks whose relevant date field falls on day.
func tasksOn(tasks []*domain.Task, day time.Time, field planner.Field) []*domain.Task {
	var out []*domain.Task
	for _, t := range tasks {
		var d *time.Time
		if field == planner.ByScheduledDate {
			d = t.ScheduledDate
		} else {
			d = t.PlannedDay
		}
		if d != nil && planner.SameDay(*d, day) {
			out = append(out, t)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Read endpoints.
// ---------------------------------------------------------------------------

type BucketsInput struct{}

type BucketsOutput struct {
	Body struct {
		Overdue     []*domain.Task    `json:"overdue"`
		Today       []*domain.Task    `json:"today"`
		Tomorrow    []*domain.Task    `json:"tomorrow"`
		ThisWeek    []*domain.Task    `json:"this_week"`
		Later       []*domain.Task    `json:"later"`
		Unscheduled []*domain.Task    `json:"unscheduled"`
		Completed   []*domain.Task    `json:"completed"`
		DueLabels   map[string]string `json:"due_labels" doc:"Task ID to human due-date label"`
	}
}

type WeekInput struct {
	Start string `query:"start" doc:"Any date inside the wanted week (YYYY-MM-DD, default today)"`
	Field string `query:"field" enum:"planned,scheduled," doc:"Which date field drives grouping"`
}

type WeekDay struct {
	Date     string              `json:"date"`
	Tasks    []*domain.Task      `json:"tasks"`
	Capacity planner.Utilization `json:"capacity"`
}

type WeekOutput struct {
	Body struct {
		Days       []WeekDay `json:"days"`
		Highlights []string  `json:"highlights" doc:"Recently dropped-on cell keys"`
	}
}

type DayGridInput struct {
	Date      string `path:"date" doc:"Day to render (YYYY-MM-DD)"`
	Condensed bool   `query:"condensed" doc:"Use the coarse two-hour grid"`
}

type DayGridOutput struct {
	Body struct {
		Date         string                         `json:"date"`
		Slots        []int                          `json:"slots"`
		Hours        map[int][]*domain.Task         `json:"hours"`
		Untimed      []*domain.Task                 `json:"untimed"`
		Events       map[int][]domain.CalendarEvent `json:"events"`
		AllDayEvents []domain.CalendarEvent         `json:"all_day_events"`
		Capacity     planner.Utilization            `json:"capacity"`
	}
}

type DayCapacityInput struct {
	Date string `path:"date" doc:"Day to measure (YYYY-MM-DD)"`
}

type DayCapacityOutput struct {
	Body planner.Utilization
}

// ---------------------------------------------------------------------------
// Mutation endpoints.
// ---------------------------------------------------------------------------

type MoveInput struct {
	Body struct {
		TaskID          string `json:"task_id" doc:"Task to move; unknown or malformed IDs are ignored"`
		Day             string `json:"day,omitempty" doc:"Target day (YYYY-MM-DD); empty with unschedule=true clears placement"`
		Hour            *int   `json:"hour,omitempty" minimum:"0" maximum:"23" doc:"Target hour slot; omit for a day-level drop"`
		DurationMinutes int    `json:"duration_minutes,omitempty" minimum:"0" doc:"Time block length; defaults to the slot width"`
		Field           string `json:"field,omitempty" enum:"planned,scheduled," doc:"Which date field the drop targets"`
		Unschedule      bool   `json:"unschedule,omitempty" doc:"Return the task to the unscheduled pool"`
	}
}

type MoveOutput struct {
	Body struct {
		Moved     bool                 `json:"moved"`
		Task      *domain.Task         `json:"task,omitempty"`
		Highlight string               `json:"highlight,omitempty"`
		Capacity  *planner.Utilization `json:"capacity,omitempty"`
	}
}

type UndoInput struct{}

type UndoOutput struct {
	Body struct {
		Undone bool         `json:"undone"`
		Task   *domain.Task `json:"task,omitempty"`
	}
}

type ResetHighlightsInput struct{}

func RegisterPlannerRoutes(api huma.API, p *Planner) {
	huma.Register(api, huma.Operation{
		OperationID: "planner-buckets",
		Method:      http.MethodGet,
		Path:        "/planner/buckets",
		Summary:     "Group tasks into temporal buckets",
		Tags:        []string{"Planner"},
	}, p.handleBuckets)

	huma.Register(api, huma.Operation{
		OperationID: "planner-week",
		Method:      http.MethodGet,
		Path:        "/planner/week",
		Summary:     "Weekly planner board",
		Tags:        []string{"Planner"},
	}, p.handleWeek)

	huma.Register(api, huma.Operation{
		OperationID: "planner-day",
		Method:      http.MethodGet,
		Path:        "/planner/days/{date}",
		Summary:     "Single-day timeline grid",
		Tags:        []string{"Planner"},
	}, p.handleDay)

	huma.Register(api, huma.Operation{
		OperationID: "planner-day-capacity",
		Method:      http.MethodGet,
		Path:        "/planner/days/{date}/capacity",
		Summary:     "Day capacity utilization",
		Tags:        []string{"Planner"},
	}, p.handleDayCapacity)

	huma.Register(api, huma.Operation{
		OperationID: "planner-move",
		Method:      http.MethodPost,
		Path:        "/planner/move",
		Summary:     "Move a task to a day or hour cell",
		Tags:        []string{"Planner"},
	}, p.handleMove)

	huma.Register(api, huma.Operation{
		OperationID: "planner-undo",
		Method:      http.MethodPost,
		Path:        "/planner/undo",
		Summary:     "Undo the most recent move",
		Tags:        []string{"Planner"},
	}, p.handleUndo)

	huma.Register(api, huma.Operation{
		OperationID: "planner-reset-highlights",
		Method:      http.MethodPost,
		Path:        "/planner/highlights/reset",
		Summary:     "Clear all drop highlight markers",
		Tags:        []string{"Planner"},
	}, p.handleResetHighlights)
}

func (p *Planner) handleBuckets(ctx context.Context, _ *BucketsInput) (*BucketsOutput, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	tasks, err := p.store.Tasks().ListByUser(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tasks", err)
	}

	now := time.Now()
	buckets := planner.Classify(tasks, now, p.cfg.WeekStart)

	labels := make(map[string]string)
	for _, t := range buckets.Flatten() {
		if t.ScheduledDate != nil {
			labels[t.ID.String()] = planner.FormatDueDate(*t.ScheduledDate, now)
		}
	}

	out := &BucketsOutput{}
	out.Body.Overdue = buckets.Overdue
	out.Body.Today = buckets.Today
	out.Body.Tomorrow = buckets.Tomorrow
	out.Body.ThisWeek = buckets.ThisWeek
	out.Body.Later = buckets.Later
	out.Body.Unscheduled = buckets.Unscheduled
	out.Body.Completed = buckets.Completed
	out.Body.DueLabels = labels
	return out, nil
}

func (p *Planner) handleWeek(ctx context.Context, input *WeekInput) (*WeekOutput, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	field, err := parseField(input.Field)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	anchor := time.Now()
	if input.Start != "" {
		anchor, err = parseDate(input.Start)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid start date: " + input.Start)
		}
	}

	tasks, err := p.store.Tasks().ListByUser(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tasks", err)
	}

	days := planner.WeekDays(anchor, p.cfg.WeekStart)
	idx := planner.IndexByDay(tasks, days, field)

	out := &WeekOutput{}
	for _, day := range days {
		key := planner.DateKey(day)
		cell := idx[key]
		out.Body.Days = append(out.Body.Days, WeekDay{
			Date:     key,
			Tasks:    cell,
			Capacity: planner.Capacity(cell, p.cfg.DayCapacityMinutes),
		})
	}
	out.Body.Highlights = p.highlightsFor(userID).Active()
	return out, nil
}

func (p *Planner) handleDay(ctx context.Context, input *DayGridInput) (*DayGridOutput, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	day, err := parseDate(input.Date)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid date: " + input.Date)
	}

	tasks, err := p.store.Tasks().ListByUser(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tasks", err)
	}

	slots := p.hourSlots(input.Condensed)
	days := []time.Time{day}
	grid := planner.IndexByDayAndHour(tasks, days, slots, planner.ByPlannedDay)

	if p.feed != nil {
		events, feedErr := p.feed.ListEvents(ctx, day, day.AddDate(0, 0, 1))
		if feedErr != nil {
			// The feed is read-only decoration; a failed fetch never blocks
			// the planner view.
			log.Warn().Err(feedErr).Str("day", input.Date).Msg("calendar feed fetch failed")
		} else {
			planner.AttachEvents(grid, events, slots)
		}
	}

	cell := grid[planner.DateKey(day)]

	out := &DayGridOutput{}
	out.Body.Date = input.Date
	out.Body.Slots = slots
	out.Body.Hours = cell.Hours
	out.Body.Untimed = cell.Untimed
	out.Body.Events = cell.Events
	out.Body.AllDayEvents = cell.AllDayEvents

	dayTasks, err := p.store.Tasks().ListByPlannedDay(ctx, userID, planner.StartOfDay(day))
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list day tasks", err)
	}
	out.Body.Capacity = planner.Capacity(dayTasks, p.cfg.DayCapacityMinutes)
	return out, nil
}

func (p *Planner) handleDayCapacity(ctx context.Context, input *DayCapacityInput) (*DayCapacityOutput, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	day, err := parseDate(input.Date)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid date: " + input.Date)
	}

	dayTasks, err := p.store.Tasks().ListByPlannedDay(ctx, userID, planner.StartOfDay(day))
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list day tasks", err)
	}

	return &DayCapacityOutput{Body: planner.Capacity(dayTasks, p.cfg.DayCapacityMinutes)}, nil
}

func (p *Planner) handleMove(ctx context.Context, input *MoveInput) (*MoveOutput, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	out := &MoveOutput{}

	// Malformed or unknown task IDs make the drop a silent no-op; a stale
	// drag from another tab must not error the whole board.
	taskID, err := uuid.Parse(input.Body.TaskID)
	if err != nil {
		return out, nil
	}

	task, err := p.store.Tasks().GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return out, nil
		}
		return nil, huma.Error500InternalServerError("failed to get task", err)
	}

	if input.Body.Unschedule {
		m := planner.Unschedule(task)
		if err := p.store.Tasks().UpdateSchedule(ctx, userID, taskID, m.Updates); err != nil {
			return nil, huma.Error500InternalServerError("failed to unschedule task", err)
		}
		task.ApplyPlacement(m.Updates)
		p.ledgerFor(userID).Record(m, time.Now())
		publish(ctx, p.pub, redisstore.PlannerChannel(userID), "planner.moved")

		out.Body.Moved = true
		out.Body.Task = task
		return out, nil
	}

	day, err := parseDate(input.Body.Day)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid day: " + input.Body.Day)
	}

	field, err := parseField(input.Body.Field)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	duration := input.Body.DurationMinutes
	if duration <= 0 {
		duration = p.cfg.SlotMinutes
	}

	all, err := p.store.Tasks().ListByUser(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tasks", err)
	}
	dayTasks := tasksOn(all, day, field)

	target := planner.Target{
		Day:             day,
		Hour:            input.Body.Hour,
		DurationMinutes: duration,
		Field:           field,
	}
	m := planner.Schedule(task, target, dayTasks)

	if err := p.store.Tasks().UpdateSchedule(ctx, userID, taskID, m.Updates); err != nil {
		return nil, huma.Error500InternalServerError("failed to move task", err)
	}
	task.ApplyPlacement(m.Updates)

	now := time.Now()
	p.ledgerFor(userID).Record(m, now)
	p.highlightsFor(userID).Mark(m.Highlight, now)
	publish(ctx, p.pub, redisstore.PlannerChannel(userID), "planner.moved")

	// On a same-day drop the pre-move snapshot already contains the task;
	// exclude it before appending so its minutes are not counted twice.
	postDay := make([]*domain.Task, 0, len(dayTasks)+1)
	for _, t := range dayTasks {
		if t.ID != task.ID {
			postDay = append(postDay, t)
		}
	}
	postDay = append(postDay, task)

	util := planner.Capacity(postDay, p.cfg.DayCapacityMinutes)
	if util.Level == planner.CapacityOver && p.notifier != nil {
		p.alertOverCapacity(ctx, userID, planner.DateKey(day), util)
	}

	out.Body.Moved = true
	out.Body.Task = task
	out.Body.Highlight = m.Highlight
	out.Body.Capacity = &util
	return out, nil
}

func (p *Planner) alertOverCapacity(ctx context.Context, userID uuid.UUID, day string, util planner.Utilization) {
	user, err := p.store.Users().GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("capacity alert: user lookup failed")
		return
	}
	if err := p.notifier.NotifyOverCapacity(ctx, user.Email, day, util); err != nil {
		log.Warn().Err(err).Str("day", day).Msg("capacity alert failed")
	}
}

func (p *Planner) handleUndo(ctx context.Context, _ *UndoInput) (*UndoOutput, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	out := &UndoOutput{}

	entry, ok := p.ledgerFor(userID).Pop()
	if !ok {
		return out, nil
	}

	err := p.store.Tasks().UpdateSchedule(ctx, userID, entry.TaskID, entry.Previous)
	if err != nil {
		// The task may have been deleted since the move; the undo is spent
		// either way.
		if errors.Is(err, domain.ErrNotFound) {
			return out, nil
		}
		return nil, huma.Error500InternalServerError("failed to undo move", err)
	}

	task, err := p.store.Tasks().GetByID(ctx, userID, entry.TaskID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, huma.Error500InternalServerError("failed to get task", err)
	}

	publish(ctx, p.pub, redisstore.PlannerChannel(userID), "planner.undone")

	out.Body.Undone = true
	out.Body.Task = task
	return out, nil
}

func (p *Planner) handleResetHighlights(ctx context.Context, _ *ResetHighlightsInput) (*struct{}, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	p.highlightsFor(userID).Reset()
	return nil, nil
}
