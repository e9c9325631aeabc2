package history

import (
	"context"
	"errors"
	"sync"
)

// collector records the events of one kind until it is stopped.
type collector struct {
	mu     sync.Mutex
	events []Event
	stop   func()
}

func collect(m *Model, kind EventKind) *collector {
	c := &collector{}
	c.stop = m.Subscribe(func(ev Event) {
		if ev.Kind != kind {
			return
		}
		c.mu.Lock()
		c.events = append(c.events, ev)
		c.mu.Unlock()
	})
	return c
}

// last returns the most recent event accepted by match.
func (c *collector) last(match func(Event) bool) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if match(c.events[i]) {
			return c.events[i], true
		}
	}
	return Event{}, false
}

// SearchSync runs Search and waits for its completion. It returns the
// projection afterwards and the store error, if the query failed. When a
// later search superseded this one, the projection of the later one is
// returned.
func (m *Model) SearchSync(ctx context.Context, term string) ([]Entry, error) {
	c := collect(m, StoreConfirmed)
	defer c.stop()

	t := m.Search(term)
	if err := m.Flush(ctx); err != nil {
		return nil, err
	}

	ev, ok := c.last(func(ev Event) bool { return ev.Completion.Seq == t.Seq })
	if !ok {
		return nil, ErrClosed
	}
	if ev.Err != nil {
		return nil, ev.Err
	}
	return m.Entries(), nil
}

// RemoveSync runs Remove and waits for the store delete. It reports false
// for an index out of range. A delete of an entry already gone from the
// store is not an error.
func (m *Model) RemoveSync(ctx context.Context, index int) (Entry, bool, error) {
	c := collect(m, EntryDeleted)
	defer c.stop()

	e, ok := m.Remove(index)
	if !ok {
		return Entry{}, false, nil
	}
	if err := m.Flush(ctx); err != nil {
		return e, true, err
	}

	ev, found := c.last(func(ev Event) bool { return ev.URL == e.URL })
	if !found {
		return e, true, ErrClosed
	}
	if ev.Err != nil && !errors.Is(ev.Err, ErrNotFound) {
		return e, true, ev.Err
	}
	return e, true, nil
}

// VisitSync runs Visit and waits for the upsert. The entry is nil when the
// store filtered the visit out.
func (m *Model) VisitSync(ctx context.Context, url, title string) (*Entry, error) {
	c := collect(m, VisitRecorded)
	defer c.stop()

	m.Visit(url, title)
	if err := m.Flush(ctx); err != nil {
		return nil, err
	}

	ev, ok := c.last(func(ev Event) bool { return ev.URL == url })
	if !ok {
		return nil, ErrClosed
	}
	return ev.Entry, ev.Err
}
