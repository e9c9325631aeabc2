package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/histidx/internal/config"
	"github.com/runnerr0/histidx/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string            `json:"version"`
	Build             string            `json:"build"`
	DatabasePath      string            `json:"database_path"`
	DatabaseSizeBytes int64             `json:"database_size_bytes"`
	TotalEntries      int64             `json:"total_entries"`
	TotalVisits       int64             `json:"total_visits"`
	MaxID             int64             `json:"max_id"`
	OldestEntry       string            `json:"oldest_entry,omitempty"`
	NewestEntry       string            `json:"newest_entry,omitempty"`
	HideUntitled      bool              `json:"hide_untitled"`
	TopDomains        []domainCountJSON `json:"top_domains"`
}

type domainCountJSON struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	e, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer e.Close()

	return c.executeWithEnv(e)
}

// executeWithEnv runs status against a provided env (for testing).
func (c *StatusCommand) executeWithEnv(e *env) error {
	stats, err := e.store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbSize := getDatabaseSize(e.db, e.dbPath)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(e, stats, dbSize)
	}
	return c.printStatusHuman(e, stats, dbSize)
}

func (c *StatusCommand) printStatusHuman(e *env, stats *storage.Stats, dbSize int64) error {
	fmt.Println("histidx status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s (%s)\n", c.version, storage.BuildMode)
	fmt.Printf("Database:      %s (%s)\n", e.dbPath, formatBytes(dbSize))
	fmt.Printf("Entries:       %s\n", formatNumber(stats.TotalEntries))
	fmt.Printf("Visits:        %s\n", formatNumber(stats.TotalVisits))
	fmt.Printf("Max ID:        %d\n", stats.MaxID)

	// Time range
	if stats.TotalEntries > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestEntry.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestEntry.Local().Format("2006-01-02"))
	}

	if e.cfg.Query.HideUntitled {
		fmt.Println("Untitled:      hidden from search")
	} else {
		fmt.Println("Untitled:      shown in search")
	}

	// Top domains
	if len(stats.TopDomains) > 0 {
		fmt.Println()
		fmt.Println("Top Domains:")
		for _, d := range stats.TopDomains {
			fmt.Printf("  %-20s %s\n", d.Domain, formatNumber(d.Count))
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(e *env, stats *storage.Stats, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		Build:             storage.BuildMode,
		DatabasePath:      e.dbPath,
		DatabaseSizeBytes: dbSize,
		TotalEntries:      stats.TotalEntries,
		TotalVisits:       stats.TotalVisits,
		MaxID:             stats.MaxID,
		HideUntitled:      e.cfg.Query.HideUntitled,
		TopDomains:        make([]domainCountJSON, len(stats.TopDomains)),
	}

	if stats.TotalEntries > 0 {
		out.OldestEntry = stats.OldestEntry.UTC().Format(time.RFC3339)
		out.NewestEntry = stats.NewestEntry.UTC().Format(time.RFC3339)
	}

	for i, d := range stats.TopDomains {
		out.TopDomains[i] = domainCountJSON{Domain: d.Domain, Count: d.Count}
	}

	return printJSON(out)
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if dbPath != config.MemoryDB {
		if info, err := os.Stat(dbPath); err == nil {
			return info.Size()
		}
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
