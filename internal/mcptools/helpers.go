// Package mcptools exposes the history model as MCP tools.
//
// Each tool follows the same shape:
//   - a struct holding its dependencies, injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes the request and returns a result
package mcptools

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/runnerr0/histidx/internal/history"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing. JSON numbers arrive as float64; a value
// with a fraction or outside the int range is an error, never rounded.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) (int, error) {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return defaultVal, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("'%s' must be a number", key)
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("'%s' must be a whole number, got %v", key, v)
	}
	if v < math.MinInt || v >= math.MaxInt {
		return 0, fmt.Errorf("'%s' is out of range: %v", key, v)
	}
	return int(v), nil
}

// hasArg reports whether key was sent at all.
func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

// writeEntries renders rows with their projection index, which is what
// history_remove expects.
func writeEntries(b *strings.Builder, entries []history.Entry) {
	for i, e := range entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(b, "%d. %s\n", i, title)
		fmt.Fprintf(b, "   %s\n", e.URL)
		fmt.Fprintf(b, "   visits: %d\n", e.VisitCount)
	}
}
