package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// caseFoldFunc is the SQL function applying history.Fold to a column.
const caseFoldFunc = "casefold"

// Open opens the SQLite database at path (":memory:" for a private
// in-memory database) and applies pending migrations. The pool is limited
// to one connection: SQLite has a single writer, and an in-memory database
// only lives as long as its connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := NewMigrationRunner(db).Run(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}
