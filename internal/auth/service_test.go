package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/tempora/internal/auth"
	"github.com/gosuda/tempora/internal/domain"
)

// --- configurable mock UserRepository for service tests ---

// mockServiceRepo is a configurable mock implementing domain.UserRepository.
// It captures calls and returns preconfigured responses for service-level tests.
type mockServiceRepo struct {
	// GetByEmail behavior.
	getByEmailUser *domain.User
	getByEmailErr  error

	// GetByID behavior.
	getByIDUser *domain.User
	getByIDErr  error

	// Create behavior.
	createErr   error
	createdUser *domain.User // captures the user passed to Create.

	// Update behavior.
	updateErr error
}

func (m *mockServiceRepo) Create(_ context.Context, u *domain.User) error {
	m.createdUser = u
	return m.createErr
}

func (m *mockServiceRepo) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return m.getByIDUser, m.getByIDErr
}

func (m *mockServiceRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return m.getByEmailUser, m.getByEmailErr
}

func (m *mockServiceRepo) Update(context.Context, *domain.User) error {
	return m.updateErr
}

// --- test constants ---

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testEmail     = "alice@example.com"
	testPassword  = "correct-horse-battery-staple"
	testUserName  = "Alice"
)

var (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 7 * 24 * time.Hour
)

// newTestService creates a Service with the given mock and standard test config.
func newTestService(repo *mockServiceRepo) *auth.Service {
	return auth.NewService(repo, testJWTSecret, testAccessTTL, testRefreshTTL)
}

// --- Register tests ---

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("happy path creates user with correct fields", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := &mockServiceRepo{
			getByEmailErr: domain.ErrNotFound,
		}
		svc := newTestService(repo)

		user, err := svc.Register(ctx, testEmail, testPassword, testUserName)

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, testEmail, user.Email)
		assert.Equal(t, testUserName, user.Name)
		assert.NotEqual(t, uuid.Nil, user.ID, "user ID must be generated")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt must be set")
		assert.False(t, user.UpdatedAt.IsZero(), "UpdatedAt must be set")
	})

	t.Run("password is hashed not stored as plaintext", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := &mockServiceRepo{
			getByEmailErr: domain.ErrNotFound,
		}
		svc := newTestService(repo)

		user, err := svc.Register(ctx, testEmail, testPassword, testUserName)

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEqual(t, testPassword, user.PasswordHash, "password must not be stored as plaintext")
		assert.NotEmpty(t, user.PasswordHash, "password hash must not be empty")
		assert.Contains(t, user.PasswordHash, "$", "argon2id hash must contain salt$hash separator")
	})

	t.Run("user already exists returns ErrUserAlreadyExists", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		existingUser := &domain.User{
			ID:    uuid.New(),
			Email: testEmail,
		}
		repo := &mockServiceRepo{
			getByEmailUser: existingUser,
			getByEmailErr:  nil,
		}
		svc := newTestService(repo)

		user, err := svc.Register(ctx, testEmail, testPassword, testUserName)

		require.Error(t, err)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
	})

	t.Run("repo Create error is propagated", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repoErr := errors.New("database connection refused")
		repo := &mockServiceRepo{
			getByEmailErr: domain.ErrNotFound,
			createErr:     repoErr,
		}
		svc := newTestService(repo)

		user, err := svc.Register(ctx, testEmail, testPassword, testUserName)

		require.Error(t, err)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repoErr)
	})
}

// --- Login tests ---

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("happy path returns both tokens", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		// Register through the service so the stored hash is real.
		registerRepo := &mockServiceRepo{getByEmailErr: domain.ErrNotFound}
		svc := newTestService(registerRepo)
		user, err := svc.Register(ctx, testEmail, testPassword, testUserName)
		require.NoError(t, err)

		loginRepo := &mockServiceRepo{getByEmailUser: user}
		svc = newTestService(loginRepo)

		access, refresh, err := svc.Login(ctx, testEmail, testPassword)

		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)

		claims, err := auth.ValidateToken(testJWTSecret, access)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("wrong password returns ErrInvalidCredentials", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		registerRepo := &mockServiceRepo{getByEmailErr: domain.ErrNotFound}
		svc := newTestService(registerRepo)
		user, err := svc.Register(ctx, testEmail, testPassword, testUserName)
		require.NoError(t, err)

		loginRepo := &mockServiceRepo{getByEmailUser: user}
		svc = newTestService(loginRepo)

		_, _, err = svc.Login(ctx, testEmail, "wrong-password")

		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email returns ErrInvalidCredentials", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		repo := &mockServiceRepo{getByEmailErr: domain.ErrNotFound}
		svc := newTestService(repo)

		_, _, err := svc.Login(ctx, "nobody@example.com", testPassword)

		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials,
			"unknown email and wrong password must be indistinguishable")
	})
}

// --- RefreshToken tests ---

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("happy path issues new access token", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		user := &domain.User{ID: uuid.New(), Email: testEmail}
		repo := &mockServiceRepo{getByIDUser: user}
		svc := newTestService(repo)

		refresh, err := auth.IssueRefreshToken(testJWTSecret, user.ID, testRefreshTTL)
		require.NoError(t, err)

		access, err := svc.RefreshToken(ctx, refresh)

		require.NoError(t, err)
		claims, err := auth.ValidateToken(testJWTSecret, access)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		user := &domain.User{ID: uuid.New()}
		repo := &mockServiceRepo{getByIDUser: user}
		svc := newTestService(repo)

		access, err := auth.IssueAccessToken(testJWTSecret, user.ID, testAccessTTL)
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, access)

		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		userID := uuid.New()
		repo := &mockServiceRepo{getByIDErr: domain.ErrNotFound}
		svc := newTestService(repo)

		refresh, err := auth.IssueRefreshToken(testJWTSecret, userID, testRefreshTTL)
		require.NoError(t, err)

		_, err = svc.RefreshToken(ctx, refresh)

		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		svc := newTestService(&mockServiceRepo{})

		_, err := svc.RefreshToken(ctx, "garbage")

		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
