package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/runnerr0/histidx/internal/history"
)

// Execute implements the go-flags Commander interface for VisitCommand.
func (c *VisitCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for visit command")
	}

	e, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// executeWithEnv records the visit through a history.Model (used by tests).
func (c *VisitCommand) executeWithEnv(e *env) error {
	// The store silently skips excluded domains; the CLI user gets an error.
	if parsed, err := url.Parse(c.URL); err == nil && e.store.IsExcluded(parsed.Hostname()) {
		return fmt.Errorf("domain %q is excluded by exclusion rules", parsed.Hostname())
	}

	m := e.newModel(0)
	defer m.Close()

	entry, err := m.VisitSync(context.Background(), c.URL, c.Title)
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("visit to %s was not recorded", c.URL)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(newEntryJSON(0, *entry))
	}
	return c.printHuman(*entry)
}

func (c *VisitCommand) printHuman(entry history.Entry) error {
	fmt.Printf("Recorded %s\n", entry.URL)
	fmt.Printf("  Entry:  %d\n", entry.ID)
	fmt.Printf("  Title:  %s\n", displayTitle(entry))
	fmt.Printf("  Visits: %d\n", entry.VisitCount)
	return nil
}
