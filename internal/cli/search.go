package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/histidx/internal/history"
)

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	e, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e, args)
}

// executeWithEnv runs the search against a provided env (for testing).
func (c *SearchCommand) executeWithEnv(e *env, args []string) error {
	term := termFromArgs(args)

	m := e.newModel(c.Limit)
	defer m.Close()

	results, err := m.SearchSync(context.Background(), term)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printSearchJSON(term, results)
	}
	printSearchHuman(term, results)
	return nil
}

// printSearchHuman lists results with the row index that remove --index takes.
func printSearchHuman(term string, results []history.Entry) {
	if len(results) == 0 {
		if term != "" {
			fmt.Printf("No results found for %q\n", term)
		} else {
			fmt.Println("No results found")
		}
		return
	}

	resultWord := "results"
	if len(results) == 1 {
		resultWord = "result"
	}
	if term != "" {
		fmt.Printf("Found %d %s for %q\n\n", len(results), resultWord, term)
	} else {
		fmt.Printf("Found %d %s\n\n", len(results), resultWord)
	}

	for i, e := range results {
		fmt.Printf("[%d] %s", i, displayTitle(e))
		if e.Domain != "" {
			fmt.Printf(" · %s", e.Domain)
		}
		fmt.Println()
		fmt.Printf("    %s\n", e.URL)
		fmt.Printf("    %s\n", plural(int64(e.VisitCount), "visit"))

		if i < len(results)-1 {
			fmt.Println()
		}
	}
}

type entryJSON struct {
	Index      int    `json:"index"`
	ID         int64  `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Domain     string `json:"domain"`
	VisitCount int    `json:"visit_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func newEntryJSON(index int, e history.Entry) entryJSON {
	return entryJSON{
		Index:      index,
		ID:         e.ID,
		URL:        e.URL,
		Title:      e.Title,
		Domain:     e.Domain,
		VisitCount: e.VisitCount,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type searchJSON struct {
	Count   int         `json:"count"`
	Query   string      `json:"query"`
	Results []entryJSON `json:"results"`
}

func printSearchJSON(term string, results []history.Entry) error {
	out := searchJSON{
		Count:   len(results),
		Query:   term,
		Results: make([]entryJSON, len(results)),
	}
	for i, e := range results {
		out.Results[i] = newEntryJSON(i, e)
	}
	return printJSON(out)
}
