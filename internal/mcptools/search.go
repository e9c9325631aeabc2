package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// SearchTool handles the history_search MCP tool.
type SearchTool struct {
	session *Session
}

// NewSearchTool creates a SearchTool over session.
func NewSearchTool(session *Session) *SearchTool {
	return &SearchTool{session: session}
}

// Definition returns the MCP tool definition for history_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("history_search",
		mcp.WithDescription(
			"Search browsing history. Matches the term, ignoring case, anywhere in "+
				"the URL or title. Results are ranked shortest URL first. "+
				"The numbers in the result are the indexes history_remove expects.",
		),
		mcp.WithString("term",
			mcp.Description("Substring to look for. Empty lists every entry."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Show at most this many rows (default: all)"),
		),
	)
}

// Handle processes the history_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := req.GetString("term", "")
	limit, err := intArg(req, "limit", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit < 0 {
		return mcp.NewToolResultError("'limit' must not be negative"), nil
	}

	defer t.session.lock()()

	entries, err := t.session.model.SearchSync(ctx, term)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(entries) == 0 {
		if term == "" {
			return mcp.NewToolResultText("History is empty."), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("No history entries match %q.", term)), nil
	}

	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	b.WriteString("# History Search\n\n")
	fmt.Fprintf(&b, "**Term:** %q\n", term)
	fmt.Fprintf(&b, "**Results:** %d", len(entries))
	if len(shown) < len(entries) {
		fmt.Fprintf(&b, " (showing %d)", len(shown))
	}
	b.WriteString("\n\n")
	writeEntries(&b, shown)

	return mcp.NewToolResultText(b.String()), nil
}
