package cli

import (
	"context"
	"fmt"
)

type removeJSON struct {
	Removed   bool   `json:"removed"`
	Index     int    `json:"index"`
	URL       string `json:"url,omitempty"`
	Remaining int    `json:"remaining"`
}

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	e, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e, args)
}

// executeWithEnv searches for the term in args and removes row c.Index of
// the result. An index out of range removes nothing and is not an error.
func (c *RemoveCommand) executeWithEnv(e *env, args []string) error {
	term := termFromArgs(args)
	ctx := context.Background()

	m := e.newModel(0)
	defer m.Close()

	if _, err := m.SearchSync(ctx, term); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	entry, ok, err := m.RemoveSync(ctx, c.Index)
	if err != nil {
		return fmt.Errorf("remove %s: %w", entry.URL, err)
	}

	out := removeJSON{Removed: ok, Index: c.Index, URL: entry.URL, Remaining: m.RowCount()}
	if c.globals != nil && c.globals.JSON {
		return printJSON(out)
	}

	if !ok {
		fmt.Printf("Index %d is out of range (%s). Nothing removed.\n",
			c.Index, plural(int64(out.Remaining), "result"))
		return nil
	}
	fmt.Printf("Removed [%d] %s\n", c.Index, entry.URL)
	fmt.Printf("%s left\n", plural(int64(out.Remaining), "result"))
	return nil
}
