// Package postgres implements the domain repository interfaces on top of
// PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/tempora/internal/config"
	"github.com/gosuda/tempora/internal/domain"
)

// Store bundles the repository implementations sharing one connection pool.
type Store struct {
	pool  *pgxpool.Pool
	users *userRepo
	tasks *taskRepo
}

// New creates a Store connected to the configured database and verifies the
// connection with a ping.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parsing config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: pinging database: %w", err)
	}

	return &Store{
		pool:  pool,
		users: &userRepo{pool: pool},
		tasks: &taskRepo{pool: pool},
	}, nil
}

// Users returns the user repository.
func (s *Store) Users() domain.UserRepository { return s.users }

// Tasks returns the task repository.
func (s *Store) Tasks() domain.TaskRepository { return s.tasks }

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }
