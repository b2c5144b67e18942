package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationStatus describes one migration file and whether it has been applied.
type MigrationStatus struct {
	Version   int64
	Source    string
	Applied   bool
	AppliedAt *time.Time
}

// Migrator applies embedded SQL migrations with goose. It opens its own
// database/sql connection because goose does not speak the pgx native
// protocol.
type Migrator struct {
	databaseURL string
	fsys        fs.FS
}

func NewMigrator(databaseURL string, fsys fs.FS) *Migrator {
	return &Migrator{databaseURL: databaseURL, fsys: fsys}
}

func (m *Migrator) open() (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	return stdlib.OpenDB(*cfg), nil
}

// Up applies all pending migrations and returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	sqlDB, err := m.open()
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, m.fsys)
	if err != nil {
		return 0, fmt.Errorf("init migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}

// Status reports each migration file with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	sqlDB, err := m.open()
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, m.fsys)
	if err != nil {
		return nil, fmt.Errorf("init migration provider: %w", err)
	}

	states, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}

	statuses := make([]MigrationStatus, 0, len(states))
	for _, st := range states {
		out := MigrationStatus{
			Version: st.Source.Version,
			Source:  st.Source.Path,
			Applied: st.State == goose.StateApplied,
		}
		if !st.AppliedAt.IsZero() {
			t := st.AppliedAt
			out.AppliedAt = &t
		}
		statuses = append(statuses, out)
	}
	return statuses, nil
}
