package storage

import "database/sql"

// migrateV001 creates the entries table. url is the canonical key: stored
// exactly as visited, never normalized, unique.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			url         TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL DEFAULT '',
			domain      TEXT NOT NULL DEFAULT '',
			visit_count INTEGER NOT NULL DEFAULT 1 CHECK (visit_count >= 1),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Ranking order: shortest URL first, then creation order.
		`CREATE INDEX IF NOT EXISTS idx_entries_rank       ON entries(length(url), id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_domain     ON entries(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_updated_at ON entries(updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV002 adds capture exclusion rules. Visits to excluded domains are
// never stored.
func migrateV002(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exclusions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			rule_type  TEXT NOT NULL CHECK (rule_type IN ('domain', 'regex')),
			rule_value TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(rule_type, rule_value)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exclusions_rule ON exclusions(rule_type, rule_value)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
