package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/runnerr0/histidx/internal/storage"
)

// StatsSource provides aggregate history statistics.
type StatsSource interface {
	Stats(ctx context.Context) (*storage.Stats, error)
}

// StatsTool handles the history_stats MCP tool.
type StatsTool struct {
	source StatsSource
}

// NewStatsTool creates a StatsTool reading from source.
func NewStatsTool(source StatsSource) *StatsTool {
	return &StatsTool{source: source}
}

// Definition returns the MCP tool definition for history_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("history_stats",
		mcp.WithDescription("Show how many entries and visits the history holds, and the most visited domains."),
	)
}

// Handle processes the history_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.source.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}

	var b strings.Builder
	b.WriteString("# History Stats\n\n")
	fmt.Fprintf(&b, "**Entries:** %d\n", stats.TotalEntries)
	fmt.Fprintf(&b, "**Visits:** %d\n", stats.TotalVisits)
	if stats.TotalEntries > 0 {
		fmt.Fprintf(&b, "**Oldest:** %s\n", stats.OldestEntry.UTC().Format("2006-01-02"))
		fmt.Fprintf(&b, "**Newest:** %s\n", stats.NewestEntry.UTC().Format("2006-01-02"))
	}
	if len(stats.TopDomains) > 0 {
		b.WriteString("\n## Top Domains\n\n")
		for _, d := range stats.TopDomains {
			fmt.Fprintf(&b, "- %s: %d\n", d.Domain, d.Count)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
