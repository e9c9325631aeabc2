package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/runnerr0/histidx/internal/mcptools"
)

// Execute implements the go-flags Commander interface for ServeCommand.
// Stdout carries the MCP protocol; logs go to stderr.
func (c *ServeCommand) Execute(args []string) error {
	e, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	s := c.newServer(e)
	e.logger.Info("serving MCP on stdio", "name", e.cfg.Server.Name, "db", e.dbPath)

	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// newServer wires a history model over the env's store into an MCP server.
// The model lives as long as the env.
func (c *ServeCommand) newServer(e *env) *server.MCPServer {
	m := e.newModel(0)
	e.onClose(func() { m.Close() })
	return mcptools.NewServer(e.cfg.Server.Name, c.version, mcptools.NewSession(m), e.store)
}
