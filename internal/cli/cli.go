// Package cli implements the histidx command line.
package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Visit  *VisitCommand
	Search *SearchCommand
	Remove *RemoveCommand
	Status *StatusCommand
	Purge  *PurgeCommand
	Serve  *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "histidx"
	parser.LongDescription = "Deduplicated, searchable browsing history: record visits, search them ranked shortest URL first, remove entries."

	cmds := &commands{
		Visit:  &VisitCommand{globals: &globals, version: version},
		Search: &SearchCommand{globals: &globals, version: version},
		Remove: &RemoveCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
		Purge:  &PurgeCommand{globals: &globals, version: version},
		Serve:  &ServeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("visit", "Record a visit", "Record a visit to a URL. Repeated visits to the same URL are merged into one entry.", cmds.Visit)
	parser.AddCommand("search", "Search history", "Search history for a substring of the URL or title, shortest URL first.", cmds.Search)
	parser.AddCommand("remove", "Remove a search result", "Run a search and remove the entry at the given row index.", cmds.Remove)
	parser.AddCommand("status", "Show database statistics", "Show database location, entry and visit counts, and top domains.", cmds.Status)
	parser.AddCommand("purge", "Delete ALL history", "Delete ALL history entries. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("serve", "Serve history over MCP", "Serve the history tools over the Model Context Protocol on stdio.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point for the histidx CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("histidx %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
