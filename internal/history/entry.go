// Package history keeps the searchable, ranked projection of browsing history
// that a presentation layer reads from. It owns the merge rule for repeated
// visits, the matching and ranking rules for searches, and the asynchronous
// protocol that reconciles the in-memory projection with the entry store.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by an EntryStore when no entry exists for a URL.
var ErrNotFound = errors.New("entry not found")

// Entry is a deduplicated history record keyed by its exact URL string.
type Entry struct {
	ID         int64
	URL        string
	Title      string
	Domain     string
	VisitCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Role selects a field of an Entry for row/role based access.
type Role int

const (
	RoleURL Role = iota
	RoleTitle
)

func (r Role) String() string {
	switch r {
	case RoleURL:
		return "url"
	case RoleTitle:
		return "title"
	default:
		return "unknown"
	}
}

// Value returns the field of e selected by role.
func (r Role) Value(e Entry) (string, bool) {
	switch r {
	case RoleURL:
		return e.URL, true
	case RoleTitle:
		return e.Title, true
	default:
		return "", false
	}
}

// EntryStore is the durable side of the history. Implementations serialize
// writes per URL and are responsible for their own locking.
type EntryStore interface {
	// Upsert records a visit, merging it into any existing entry for url.
	// A nil entry with a nil error means the visit was filtered out.
	Upsert(ctx context.Context, url, title string) (*Entry, error)
	// QueryMatching returns the entries matching term, ranked.
	QueryMatching(ctx context.Context, term string) ([]Entry, error)
	// DeleteByKey removes the entry for url, or returns ErrNotFound.
	DeleteByKey(ctx context.Context, url string) error
	MaxKnownID(ctx context.Context) (int64, error)
}
