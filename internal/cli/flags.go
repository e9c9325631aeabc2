package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DB      string `long:"db" description:"Path to the SQLite database, overrides the config file (:memory: for a throwaway one)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging on stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// VisitCommand records a visit to a URL.
type VisitCommand struct {
	URL   string `long:"url" description:"URL to record (required), stored verbatim"`
	Title string `long:"title" description:"Page title"`

	globals *GlobalFlags
	version string
}

// SearchCommand searches history for a term given as positional arguments.
type SearchCommand struct {
	Limit int `long:"limit" description:"Maximum results, 0 uses query.max_results from the config" default:"0"`

	globals *GlobalFlags
	version string
}

// RemoveCommand searches for a term and removes one row of the result.
type RemoveCommand struct {
	Index int `long:"index" required:"true" description:"Zero-based row of the search result to remove"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// PurgeCommand deletes all history with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // injectable for testing; nil means os.Stdin
}

// ServeCommand runs the MCP stdio server.
type ServeCommand struct {
	globals *GlobalFlags
	version string
}
