package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/runnerr0/histidx/internal/history"
)

var (
	// ErrNotFound is history.ErrNotFound, so callers of either package can
	// test for it with errors.Is.
	ErrNotFound = history.ErrNotFound

	// ErrEmptyURL is returned by Upsert for an empty URL.
	ErrEmptyURL = errors.New("empty url")
)

const entryColumns = `id, url, title, domain, visit_count, created_at, updated_at`

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithHideUntitled controls whether entries with an empty title are left
// out of results for a non-empty term. The empty term always lists every
// entry. Untitled entries are still stored and merged. Defaults to true.
func WithHideUntitled(hide bool) Option {
	return func(s *SQLiteStore) { s.hideUntitled = hide }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// SQLiteStore implements history.EntryStore backed by a SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	hideUntitled bool
	now          func() time.Time

	// Prepared statements
	insertEntry  *sql.Stmt
	updateEntry  *sql.Stmt
	getEntry     *sql.Stmt
	deleteEntry  *sql.Stmt
	queryEntries *sql.Stmt

	// Cached exclusion rules, loaded at init and kept in sync by AddExclusion
	mu               sync.RWMutex
	domainExclusions []string
	regexExclusions  []*regexp.Regexp
}

var _ history.EntryStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore from a database returned by Open.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:           db,
		hideUntitled: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	if err := s.loadExclusions(); err != nil {
		s.Close()
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertEntry, err = s.db.Prepare(`
		INSERT INTO entries (url, title, domain, visit_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.updateEntry, err = s.db.Prepare(`
		UPDATE entries SET title = ?, visit_count = ?, updated_at = ? WHERE id = ?
	`)
	if err != nil {
		return err
	}

	s.getEntry, err = s.db.Prepare(`SELECT ` + entryColumns + ` FROM entries WHERE url = ?`)
	if err != nil {
		return err
	}

	s.deleteEntry, err = s.db.Prepare(`DELETE FROM entries WHERE url = ?`)
	if err != nil {
		return err
	}

	// Both columns are folded by the casefold function registered with the
	// driver; the pattern is folded and escaped by history.LikePattern.
	s.queryEntries, err = s.db.Prepare(`
		SELECT ` + entryColumns + `
		FROM entries
		WHERE (` + caseFoldFunc + `(url) LIKE ? ESCAPE '` + history.LikeEscape + `'
		    OR ` + caseFoldFunc + `(title) LIKE ? ESCAPE '` + history.LikeEscape + `')
		  AND (? = 0 OR title != '')
		ORDER BY length(url) ASC, id ASC
	`)
	if err != nil {
		return err
	}

	return nil
}

// loadExclusions loads domain and regex exclusion rules from the database.
func (s *SQLiteStore) loadExclusions() error {
	rows, err := s.db.Query("SELECT rule_type, rule_value FROM exclusions ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	for rows.Next() {
		var ruleType, ruleValue string
		if err := rows.Scan(&ruleType, &ruleValue); err != nil {
			return err
		}
		switch ruleType {
		case RuleDomain:
			s.domainExclusions = append(s.domainExclusions, strings.ToLower(ruleValue))
		case RuleRegex:
			re, err := regexp.Compile(ruleValue)
			if err != nil {
				continue // skip invalid regex
			}
			s.regexExclusions = append(s.regexExclusions, re)
		}
	}

	return rows.Err()
}

// AddExclusion stores a capture exclusion rule. ruleType is RuleDomain or
// RuleRegex. Adding an existing rule is a no-op.
func (s *SQLiteStore) AddExclusion(ctx context.Context, ruleType, value, reason string) error {
	var re *regexp.Regexp
	switch ruleType {
	case RuleDomain:
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return fmt.Errorf("add exclusion: empty domain")
		}
	case RuleRegex:
		var err error
		if re, err = regexp.Compile(value); err != nil {
			return fmt.Errorf("add exclusion: %w", err)
		}
	default:
		return fmt.Errorf("add exclusion: unknown rule type %q", ruleType)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO exclusions (rule_type, rule_value, reason) VALUES (?, ?, ?)",
		ruleType, value, reason,
	)
	if err != nil {
		return fmt.Errorf("insert exclusion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if re != nil {
		s.regexExclusions = append(s.regexExclusions, re)
	} else {
		s.domainExclusions = append(s.domainExclusions, value)
	}
	return nil
}

// SeedExclusions adds the given domain and regex rules, typically taken
// from the capture section of the config file.
func (s *SQLiteStore) SeedExclusions(ctx context.Context, domains, regexes []string) error {
	for _, d := range domains {
		if err := s.AddExclusion(ctx, RuleDomain, d, "config"); err != nil {
			return err
		}
	}
	for _, r := range regexes {
		if err := s.AddExclusion(ctx, RuleRegex, r, "config"); err != nil {
			return err
		}
	}
	return nil
}

// IsExcluded reports whether visits to domain are blocked. A domain rule
// also covers its subdomains.
func (s *SQLiteStore) IsExcluded(domain string) bool {
	if domain == "" {
		return false
	}
	domain = strings.ToLower(domain)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.domainExclusions {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	for _, re := range s.regexExclusions {
		if re.MatchString(domain) {
			return true
		}
	}
	return false
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// extractDomain pulls the lowercased hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// timestampLayout is fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (history.Entry, error) {
	var e history.Entry
	var createdStr, updatedStr string
	if err := row.Scan(
		&e.ID, &e.URL, &e.Title, &e.Domain, &e.VisitCount, &createdStr, &updatedStr,
	); err != nil {
		return e, err
	}
	e.CreatedAt, _ = parseTimestamp(createdStr)
	e.UpdatedAt, _ = parseTimestamp(updatedStr)
	return e, nil
}

// Upsert records a visit to rawURL, merging it into the existing entry for
// that exact URL string if there is one. Visits to excluded domains are
// skipped: the returned entry is nil and so is the error.
func (s *SQLiteStore) Upsert(ctx context.Context, rawURL, title string) (*history.Entry, error) {
	if rawURL == "" {
		return nil, ErrEmptyURL
	}

	domain := extractDomain(rawURL)
	if s.IsExcluded(domain) {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existing *history.Entry
	current, err := scanEntry(tx.StmtContext(ctx, s.getEntry).QueryRowContext(ctx, rawURL))
	switch {
	case err == nil:
		existing = &current
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("get entry: %w", err)
	}

	merged := history.Merge(existing, rawURL, title)
	now := s.now().UTC()
	merged.UpdatedAt = now

	if existing == nil {
		merged.Domain = domain
		merged.CreatedAt = now
		res, err := tx.StmtContext(ctx, s.insertEntry).ExecContext(ctx,
			merged.URL, merged.Title, merged.Domain, merged.VisitCount,
			formatTimestamp(now), formatTimestamp(now),
		)
		if err != nil {
			return nil, fmt.Errorf("insert entry: %w", err)
		}
		if merged.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("insert entry: %w", err)
		}
	} else {
		if _, err := tx.StmtContext(ctx, s.updateEntry).ExecContext(ctx,
			merged.Title, merged.VisitCount, formatTimestamp(now), merged.ID,
		); err != nil {
			return nil, fmt.Errorf("update entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &merged, nil
}

// Get retrieves the entry for an exact URL.
func (s *SQLiteStore) Get(ctx context.Context, rawURL string) (*history.Entry, error) {
	e, err := scanEntry(s.getEntry.QueryRowContext(ctx, rawURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry %s: %w", rawURL, ErrNotFound)
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

// QueryMatching returns every entry whose URL or title contains term,
// ignoring case, shortest URL first. The empty term matches all entries,
// titled or not.
func (s *SQLiteStore) QueryMatching(ctx context.Context, term string) ([]history.Entry, error) {
	pattern := history.LikePattern(term)
	hide := s.hideUntitled && term != ""

	rows, err := s.queryEntries.QueryContext(ctx, pattern, pattern, hide)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []history.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByKey removes the entry for an exact URL.
func (s *SQLiteStore) DeleteByKey(ctx context.Context, rawURL string) error {
	res, err := s.deleteEntry.ExecContext(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", rawURL, ErrNotFound)
	}

	return nil
}

// MaxKnownID returns the highest entry ID in the store, 0 when empty.
func (s *SQLiteStore) MaxKnownID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM entries").Scan(&id); err != nil {
		return 0, fmt.Errorf("max id: %w", err)
	}
	return id, nil
}

// PurgeAll deletes every entry and returns how many were removed.
// Exclusion rules are kept. IDs keep increasing after a purge.
func (s *SQLiteStore) PurgeAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("purge entries: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns aggregate statistics about the database.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(visit_count), 0), COALESCE(MAX(id), 0) FROM entries",
	).Scan(&stats.TotalEntries, &stats.TotalVisits, &stats.MaxID)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalEntries > 0 {
		var oldestStr, newestStr string
		err = s.db.QueryRowContext(ctx,
			"SELECT MIN(created_at), MAX(updated_at) FROM entries",
		).Scan(&oldestStr, &newestStr)
		if err != nil {
			return nil, fmt.Errorf("entry time range: %w", err)
		}
		stats.OldestEntry, _ = parseTimestamp(oldestStr)
		stats.NewestEntry, _ = parseTimestamp(newestStr)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, COUNT(*) AS cnt FROM entries
		WHERE domain != ''
		GROUP BY domain ORDER BY cnt DESC, domain ASC LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top domains: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return nil, err
		}
		stats.TopDomains = append(stats.TopDomains, dc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.insertEntry, s.updateEntry, s.getEntry,
		s.deleteEntry, s.queryEntries,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
