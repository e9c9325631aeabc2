package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/histidx/internal/config"
)

func runStatus(t *testing.T, e *env, globals *GlobalFlags) string {
	t.Helper()
	cmd := &StatusCommand{globals: globals, version: "0.1.0-test"}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithEnv(e)
	})
	require.NoError(t, err)
	return output
}

func TestStatusCommand_Empty(t *testing.T) {
	e := testEnv(t)
	output := runStatus(t, e, &GlobalFlags{})

	assert.Contains(t, output, "histidx status")
	assert.Contains(t, output, "Version:       0.1.0-test")
	assert.Contains(t, output, "Database:      :memory:")
	assert.Contains(t, output, "Entries:       0")
	assert.Contains(t, output, "Visits:        0")
	assert.Contains(t, output, "Untitled:      hidden from search")
	assert.NotContains(t, output, "Oldest:")
	assert.NotContains(t, output, "Top Domains:")
}

func TestStatusCommand_WithEntries(t *testing.T) {
	e := testEnv(t, func(c *config.Config) { c.Query.HideUntitled = false })
	seedRanked(t, e)
	seedVisits(t, e, [2]string{"https://go.dev/", "Go"})

	output := runStatus(t, e, &GlobalFlags{})

	assert.Contains(t, output, "Entries:       4")
	assert.Contains(t, output, "Visits:        5")
	assert.Contains(t, output, "Max ID:        4")
	assert.Contains(t, output, "Untitled:      shown in search")
	assert.Contains(t, output, "Top Domains:")
	assert.Contains(t, output, "www.testurl.blah")
	assert.Contains(t, output, "go.dev")
}

func TestStatusCommand_JSON(t *testing.T) {
	e := testEnv(t)
	seedRanked(t, e)

	output := runStatus(t, e, &GlobalFlags{JSON: true})

	var got statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "0.1.0-test", got.Version)
	assert.Equal(t, config.MemoryDB, got.DatabasePath)
	assert.Greater(t, got.DatabaseSizeBytes, int64(0))
	assert.Equal(t, int64(3), got.TotalEntries)
	assert.Equal(t, int64(4), got.TotalVisits)
	assert.Equal(t, int64(3), got.MaxID)
	assert.Equal(t, "2024-03-01T12:00:00Z", got.OldestEntry)
	assert.Equal(t, "2024-03-01T12:00:00Z", got.NewestEntry)
	require.Len(t, got.TopDomains, 1)
	assert.Equal(t, domainCountJSON{Domain: "www.testurl.blah", Count: 3}, got.TopDomains[0])
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		12345:   "12,345",
		123456:  "123,456",
		1234567: "1,234,567",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatNumber(in), "formatNumber(%d)", in)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
	assert.Equal(t, "1.0 GB", formatBytes(1<<30))
}
