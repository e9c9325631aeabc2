package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RemoveTool handles the history_remove MCP tool.
type RemoveTool struct {
	session *Session
}

// NewRemoveTool creates a RemoveTool over session.
func NewRemoveTool(session *Session) *RemoveTool {
	return &RemoveTool{session: session}
}

// Definition returns the MCP tool definition for history_remove.
func (t *RemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("history_remove",
		mcp.WithDescription(
			"Remove one entry from browsing history by its index in the current "+
				"search result. Pass 'term' to run that search first. "+
				"An index outside the result removes nothing.",
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based row index, as printed by history_search"),
		),
		mcp.WithString("term",
			mcp.Description("Search to run before removing (default: keep the current result)"),
		),
	)
}

// Handle processes the history_remove tool call.
func (t *RemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !hasArg(req, "index") {
		return mcp.NewToolResultError("'index' is required"), nil
	}
	index, err := intArg(req, "index", -1)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	defer t.session.lock()()

	m := t.session.model
	if hasArg(req, "term") {
		if _, err := m.SearchSync(ctx, req.GetString("term", "")); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
	}

	e, ok, err := m.RemoveSync(ctx, index)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Index %d is out of range (%d rows). Nothing removed.", index, m.RowCount(),
		)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"removed %s from the result, but the store delete failed: %v", e.URL, err,
		)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Removed %s (%d rows left).", e.URL, m.RowCount(),
	)), nil
}
