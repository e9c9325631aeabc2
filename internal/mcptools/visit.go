package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// VisitTool handles the history_visit MCP tool.
type VisitTool struct {
	session *Session
}

// NewVisitTool creates a VisitTool over session.
func NewVisitTool(session *Session) *VisitTool {
	return &VisitTool{session: session}
}

// Definition returns the MCP tool definition for history_visit.
func (t *VisitTool) Definition() mcp.Tool {
	return mcp.NewTool("history_visit",
		mcp.WithDescription(
			"Record a visit to a URL. A repeated visit to the exact same URL "+
				"updates the existing entry: the visit count grows and a non-empty "+
				"title replaces the stored one.",
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL as visited. It is stored verbatim."),
		),
		mcp.WithString("title",
			mcp.Description("Page title, may be empty"),
		),
	)
}

// Handle processes the history_visit tool call.
func (t *VisitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "")
	if strings.TrimSpace(url) == "" {
		return mcp.NewToolResultError("'url' is required"), nil
	}
	title := req.GetString("title", "")

	defer t.session.lock()()

	e, err := t.session.model.VisitSync(ctx, url, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("visit not recorded: %v", err)), nil
	}
	if e == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Skipped %s: domain is excluded.", url)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Recorded visit to %s (entry %d, %d visits).", e.URL, e.ID, e.VisitCount,
	)), nil
}
