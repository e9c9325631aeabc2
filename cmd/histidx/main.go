// histidx keeps a deduplicated, searchable index of browsing history.
//
// Usage:
//
//	histidx visit --url URL [--title TITLE]
//	histidx search [TERM...]
//	histidx remove --index N [TERM...]
//	histidx status
//	histidx purge --all
//	histidx serve    # MCP server on stdio
package main

import (
	"os"

	"github.com/runnerr0/histidx/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// go-flags has already printed the error to stderr.
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
