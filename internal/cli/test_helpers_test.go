package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/histidx/internal/config"
	"github.com/runnerr0/histidx/internal/history"
	"github.com/runnerr0/histidx/internal/storage"
)

// testClock is the creation time of every entry written through testEnv.
var testClock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testEnv opens an in-memory env with default config and a fixed clock.
func testEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.SQLiteFile = config.MemoryDB
	for _, fn := range mutate {
		fn(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := newEnv(cfg, config.MemoryDB, logger,
		storage.WithClock(func() time.Time { return testClock }))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

// seedVisits writes pages straight to the env's store.
func seedVisits(t *testing.T, e *env, pages ...[2]string) []*history.Entry {
	t.Helper()
	var out []*history.Entry
	for _, p := range pages {
		entry, err := e.store.Upsert(context.Background(), p[0], p[1])
		require.NoError(t, err)
		out = append(out, entry)
	}
	return out
}

// writeTestConfig writes a config file that keeps logs quiet.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0644))
	return path
}
