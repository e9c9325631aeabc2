package history

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Outcome tells whether a query completion reached the projection.
type Outcome int

const (
	// Applied means the completion belonged to the latest issued search.
	Applied Outcome = iota + 1
	// Discarded means a newer search was issued, or the query failed.
	Discarded
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Discarded:
		return "discarded"
	default:
		return "pending"
	}
}

// Ticket identifies one issued search.
type Ticket struct {
	Seq  uint64
	Term string
	// Flow is a UUIDv7 correlation token carried through logs.
	Flow string
}

// Completion is the resolution of a Ticket.
type Completion struct {
	Ticket
	Outcome Outcome
}

// Coordinator hands out monotonically increasing search tickets and decides
// which completions may reach the projection: only the one matching the
// most recently issued ticket.
type Coordinator struct {
	latest  atomic.Uint64
	newFlow func() string
}

// NewCoordinator creates a Coordinator. A nil flow generator defaults to UUIDv7.
func NewCoordinator(newFlow func() string) *Coordinator {
	if newFlow == nil {
		newFlow = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	return &Coordinator{newFlow: newFlow}
}

// Begin issues a ticket for a search on term, superseding all earlier tickets.
func (c *Coordinator) Begin(term string) Ticket {
	return Ticket{
		Seq:  c.latest.Add(1),
		Term: term,
		Flow: c.newFlow(),
	}
}

// Resolve settles t against the latest issued ticket.
func (c *Coordinator) Resolve(t Ticket) Completion {
	if t.Seq == c.latest.Load() {
		return Completion{Ticket: t, Outcome: Applied}
	}
	return Completion{Ticket: t, Outcome: Discarded}
}

// Latest returns the sequence number of the most recently issued ticket.
func (c *Coordinator) Latest() uint64 {
	return c.latest.Load()
}
