package storage

import "time"

// Stats holds aggregate statistics about the history database.
type Stats struct {
	TotalEntries int64
	TotalVisits  int64
	MaxID        int64
	OldestEntry  time.Time
	NewestEntry  time.Time
	TopDomains   []DomainCount
}

// DomainCount pairs a domain with its entry count.
type DomainCount struct {
	Domain string
	Count  int64
}

// Exclusion rule types.
const (
	RuleDomain = "domain"
	RuleRegex  = "regex"
)
