//go:build testutil
// +build testutil

package testdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskgrade/backend/internal/app/migrations"
	"github.com/taskgrade/backend/internal/db"
)

// DBHandle is a migrated throwaway database
type DBHandle struct {
	DB     *db.PostgresDB
	cancel func()
	stop   func(context.Context) error
}

func (h *DBHandle) Close() {
	if h.DB != nil {
		h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// Start runs a postgres container and applies the embedded migrations
func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("taskgrade"),
		postgres.WithUsername("taskgrade"),
		postgres.WithPassword("taskgrade"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		cancel()
		return nil, err
	}

	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		_ = pg.Terminate(ctx)
		cancel()
		return nil, err
	}

	if err := migrations.NewMigrator(pool, zerolog.Nop()).Up(ctx); err != nil {
		pool.Close()
		_ = pg.Terminate(ctx)
		cancel()
		return nil, err
	}

	return &DBHandle{
		DB:     db.NewFromPool(pool),
		cancel: cancel,
		stop:   pg.Terminate,
	}, nil
}

// Truncate empties every application table between tests
func (h *DBHandle) Truncate(ctx context.Context) error {
	_, err := h.DB.Pool.Exec(ctx, `TRUNCATE marks, submissions, tasks, teacher_subjects, subjects, students, teachers, users CASCADE`)
	return err
}
