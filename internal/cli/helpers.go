package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/runnerr0/histidx/internal/config"
	"github.com/runnerr0/histidx/internal/history"
	"github.com/runnerr0/histidx/internal/storage"
)

// env is everything a command needs to talk to the history database.
type env struct {
	cfg    *config.Config
	dbPath string
	db     *sql.DB
	store  *storage.SQLiteStore
	logger *slog.Logger

	closers []func()
}

// loadConfig reads --config, or the default config file, creating it with
// defaults when missing. --db overrides the database location.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if globals.Config != "" {
		path, perr := config.ExpandPath(globals.Config)
		if perr != nil {
			return nil, perr
		}
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if globals.DB != "" {
		dbFile := globals.DB
		if dbFile != config.MemoryDB {
			if dbFile, err = config.ExpandPath(dbFile); err != nil {
				return nil, err
			}
			if dbFile, err = filepath.Abs(dbFile); err != nil {
				return nil, fmt.Errorf("resolve --db: %w", err)
			}
		}
		cfg.Storage.SQLiteFile = dbFile
	}

	return cfg, nil
}

// newLogger builds the stderr text logger. --verbose forces debug level.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// openEnv loads config, opens the database, runs migrations and seeds the
// configured exclusion rules.
func openEnv(globals *GlobalFlags) (*env, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, globals.Verbose, os.Stderr)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	if dbPath != config.MemoryDB {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	e, err := newEnv(cfg, dbPath, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("database opened", "path", dbPath, "build", storage.BuildMode)
	return e, nil
}

// newEnv opens dbPath and wraps it in a store configured from cfg.
func newEnv(cfg *config.Config, dbPath string, logger *slog.Logger, opts ...storage.Option) (*env, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}

	opts = append([]storage.Option{storage.WithHideUntitled(cfg.Query.HideUntitled)}, opts...)
	store, err := storage.NewSQLiteStore(db, opts...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}

	if err := store.SeedExclusions(context.Background(),
		cfg.Capture.DenylistDomains, cfg.Capture.DenylistRegex); err != nil {
		store.Close()
		db.Close()
		return nil, fmt.Errorf("seed exclusions: %w", err)
	}

	return &env{cfg: cfg, dbPath: dbPath, db: db, store: store, logger: logger}, nil
}

// onClose registers fn to run before the store is closed.
func (e *env) onClose(fn func()) {
	e.closers = append(e.closers, fn)
}

// Close runs the registered closers in reverse order, then releases the
// store and the database.
func (e *env) Close() error {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.store.Close()
	return e.db.Close()
}

// newModel creates a history.Model over the env's store. A positive limit
// overrides query.max_results.
func (e *env) newModel(limit int) *history.Model {
	maxResults := e.cfg.Query.MaxResults
	if limit > 0 {
		maxResults = limit
	}
	return history.NewModel(e.store,
		history.WithLogger(e.logger),
		history.WithOpTimeout(e.cfg.Storage.OpTimeout),
		history.WithMaxResults(maxResults),
	)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// displayTitle is the title shown for an entry in human output.
func displayTitle(e history.Entry) string {
	if e.Title == "" {
		return "(untitled)"
	}
	return e.Title
}

// plural returns "1 visit" / "2 visits".
func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// termFromArgs joins positional arguments into one search term.
func termFromArgs(args []string) string {
	return strings.Join(args, " ")
}
