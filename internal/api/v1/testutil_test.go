package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/tempora/internal/domain"
	"github.com/gosuda/tempora/internal/planner"
	"github.com/gosuda/tempora/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the user into context for PostCtx/GetCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users domain.UserRepository
	tasks domain.TaskRepository
}

func (m *mockDataStore) Users() domain.UserRepository { return m.users }
func (m *mockDataStore) Tasks() domain.TaskRepository { return m.tasks }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	updateFunc     func(ctx context.Context, u *domain.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc           func(ctx context.Context, t *domain.Task) error
	getByIDFunc          func(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	listByUserFunc       func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	listByPlannedDayFunc func(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Task, error)
	updateFunc           func(ctx context.Context, t *domain.Task) error
	updateScheduleFunc   func(ctx context.Context, userID, id uuid.UUID, p domain.Placement) error
	setCompletedFunc     func(ctx context.Context, userID, id uuid.UUID, completed bool) error
	deleteFunc           func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockTaskRepo) ListByPlannedDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.Task, error) {
	return m.listByPlannedDayFunc(ctx, userID, day)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) UpdateSchedule(ctx context.Context, userID, id uuid.UUID, p domain.Placement) error {
	return m.updateScheduleFunc(ctx, userID, id, p)
}

func (m *mockTaskRepo) SetCompleted(ctx context.Context, userID, id uuid.UUID, completed bool) error {
	return m.setCompletedFunc(ctx, userID, id, completed)
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.deleteFunc(ctx, userID, id)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock Publisher
// ---------------------------------------------------------------------------

type publishedEvent struct {
	channel string
	payload []byte
}

type mockPublisher struct {
	events     []publishedEvent
	publishErr error
}

func (m *mockPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.events = append(m.events, publishedEvent{channel: channel, payload: payload})
	return nil
}

// ---------------------------------------------------------------------------
// Mock CalendarFeed
// ---------------------------------------------------------------------------

type mockFeed struct {
	events  []domain.CalendarEvent
	listErr error
}

func (m *mockFeed) ListEvents(context.Context, time.Time, time.Time) ([]domain.CalendarEvent, error) {
	return m.events, m.listErr
}

// ---------------------------------------------------------------------------
// Mock CapacityNotifier
// ---------------------------------------------------------------------------

type capacityAlert struct {
	userEmail string
	day       string
	util      planner.Utilization
}

type mockNotifier struct {
	alerts []capacityAlert
}

func (m *mockNotifier) NotifyOverCapacity(_ context.Context, userEmail, day string, util planner.Utilization) error {
	m.alerts = append(m.alerts, capacityAlert{userEmail: userEmail, day: day, util: util})
	return nil
}
