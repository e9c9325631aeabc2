package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	if err := c.confirm(); err != nil {
		return err
	}

	e, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// confirm prompts for "PURGE" unless --force is set.
func (c *PurgeCommand) confirm() error {
	if c.Force {
		return nil
	}

	fmt.Println("⚠ WARNING: This will permanently delete ALL history entries.")
	fmt.Println("Exclusion rules are kept.")
	fmt.Println()
	fmt.Println("This action cannot be undone.")
	fmt.Println()
	fmt.Print(`Type "PURGE" to confirm: `)

	var in io.Reader = os.Stdin
	if c.stdin != nil {
		in = c.stdin
	}
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if strings.TrimSpace(scanner.Text()) != "PURGE" {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}

// executeWithEnv deletes every entry in the env's store.
func (c *PurgeCommand) executeWithEnv(e *env) error {
	n, err := e.store.PurgeAll(context.Background())
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	e.logger.Info("history purged", "entries", n)

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]interface{}{
			"purged":  true,
			"entries": n,
		})
	}

	word := "entries"
	if n == 1 {
		word = "entry"
	}
	fmt.Printf("Purged %d %s. History is empty.\n", n, word)
	return nil
}
