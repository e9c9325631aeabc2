package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one schema step. Steps run in slice order, each in its own
// transaction, and are never edited once released.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{Version: 1, Name: "initial_schema", Apply: migrateV001},
	{Version: 2, Name: "exclusions", Apply: migrateV002},
}

// MigrationRunner brings a history database up to the current schema.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered migrations.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db, migrations: migrations}
}

// Run applies every migration not yet recorded in schema_migrations and
// returns the versions it applied, oldest first.
func (r *MigrationRunner) Run(ctx context.Context) ([]int, error) {
	// In-memory databases report "memory" and ignore this.
	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	done, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var applied []int
	for _, m := range r.migrations {
		if done[m.Version] {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return applied, fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		applied = append(applied, m.Version)
	}

	return applied, nil
}

// Version returns the highest applied migration version, 0 for a database
// that was never migrated.
func (r *MigrationRunner) Version(ctx context.Context) (int, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'",
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("look up schema_migrations: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func (r *MigrationRunner) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		done[v] = true
	}
	return done, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}
