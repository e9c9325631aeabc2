package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with every history tool registered.
func NewServer(name, version string, session *Session, stats StatsSource) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	searchTool := NewSearchTool(session)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	removeTool := NewRemoveTool(session)
	s.AddTool(removeTool.Definition(), removeTool.Handle)

	visitTool := NewVisitTool(session)
	s.AddTool(visitTool.Definition(), visitTool.Handle)

	statsTool := NewStatsTool(stats)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	return s
}
