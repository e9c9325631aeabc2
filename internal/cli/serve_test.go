package cli

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/histidx/internal/config"
)

func TestServeCommand_NewServer(t *testing.T) {
	e := testEnv(t)
	cmd := &ServeCommand{globals: &GlobalFlags{}, version: "0.1.0-test"}

	s := cmd.newServer(e)
	assert.NotNil(t, s)
	assert.Len(t, e.closers, 1)
}

func TestEnvClose_RunsClosersInReverse(t *testing.T) {
	cfg := config.DefaultConfig()
	e, err := newEnv(cfg, config.MemoryDB, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	var order []int
	e.onClose(func() { order = append(order, 1) })
	e.onClose(func() { order = append(order, 2) })

	require.NoError(t, e.Close())
	assert.Equal(t, []int{2, 1}, order)
}
