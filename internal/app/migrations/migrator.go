package migrations

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var FS embed.FS

const migrationsDir = "sql"

// Migrator applies the embedded schema migrations
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// Up applies every pending migration
func (m *Migrator) Up(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(m.db)

	goose.SetBaseFS(FS)
	goose.SetLogger(gooseLogger{m.logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	m.logger.Info().Int64("version", version).Msg("Database schema is up to date")
	return nil
}

// gooseLogger routes goose output through zerolog
type gooseLogger struct {
	l zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
