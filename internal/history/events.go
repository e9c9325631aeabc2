package history

import (
	"context"
	"sync"
)

// EventKind enumerates the notifications a Model emits.
type EventKind int

const (
	// ProjectionUpdated fires once the projection has been replaced by an
	// applied query completion.
	ProjectionUpdated EventKind = iota + 1
	// CountChanged fires whenever RowCount changes.
	CountChanged
	// StoreConfirmed fires for every finished store query, applied or not,
	// and carries the raw matched set.
	StoreConfirmed
	// VisitRecorded fires when an upsert finishes.
	VisitRecorded
	// EntryDeleted fires when a store-side delete issued by Remove finishes.
	EntryDeleted
)

func (k EventKind) String() string {
	switch k {
	case ProjectionUpdated:
		return "projection_updated"
	case CountChanged:
		return "count_changed"
	case StoreConfirmed:
		return "store_confirmed"
	case VisitRecorded:
		return "visit_recorded"
	case EntryDeleted:
		return "entry_deleted"
	default:
		return "unknown"
	}
}

// Event is a typed notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind
	// Count is the row count after the change (ProjectionUpdated, CountChanged).
	Count      int
	Completion Completion
	// Entries is the raw matched set (StoreConfirmed).
	Entries []Entry
	// Entry is the subject of VisitRecorded and EntryDeleted. It is nil for a
	// visit filtered out by the store.
	Entry *Entry
	// URL is the key a VisitRecorded or EntryDeleted operation was issued for.
	URL string
	Err error
}

// Emitter delivers events to subscribers in the order they were queued.
// Callbacks run without any lock held, so a subscriber may call back into
// the Model or change subscriptions. Events queued from inside a callback
// are delivered after the event being delivered, never nested inside it.
type Emitter struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
	keys []int

	queue    []Event
	draining bool
	idle     chan struct{} // closed when the current drain ends
}

// Subscribe registers fn and returns a function that removes it.
func (em *Emitter) Subscribe(fn func(Event)) func() {
	em.mu.Lock()
	defer em.mu.Unlock()

	if em.subs == nil {
		em.subs = make(map[int]func(Event))
	}
	id := em.next
	em.next++
	em.subs[id] = fn
	em.keys = append(em.keys, id)

	var once sync.Once
	return func() {
		once.Do(func() { em.unsubscribe(id) })
	}
}

func (em *Emitter) unsubscribe(id int) {
	em.mu.Lock()
	defer em.mu.Unlock()

	delete(em.subs, id)
	for i, k := range em.keys {
		if k == id {
			em.keys = append(em.keys[:i], em.keys[i+1:]...)
			break
		}
	}
}

// Emit queues events and delivers everything queued so far.
func (em *Emitter) Emit(events ...Event) {
	em.enqueue(events...)
	em.Drain()
}

// enqueue appends events to the delivery queue without delivering them.
// Callers that must order events with their own state changes enqueue
// while holding their lock and call Drain after releasing it.
func (em *Emitter) enqueue(events ...Event) {
	em.mu.Lock()
	em.queue = append(em.queue, events...)
	em.mu.Unlock()
}

// Drain delivers queued events. If another call is already draining, that
// call delivers them and Drain returns at once.
func (em *Emitter) Drain() {
	em.mu.Lock()
	if em.draining || len(em.queue) == 0 {
		em.mu.Unlock()
		return
	}
	em.draining = true
	em.idle = make(chan struct{})
	em.mu.Unlock()

	done := false
	defer func() {
		if !done {
			// A callback panicked. Later events stay queued for the next Drain.
			em.mu.Lock()
			em.endDrain()
			em.mu.Unlock()
		}
	}()

	for {
		em.mu.Lock()
		if len(em.queue) == 0 {
			em.endDrain()
			em.mu.Unlock()
			done = true
			return
		}
		ev := em.queue[0]
		em.queue = em.queue[1:]
		subs := make([]func(Event), 0, len(em.keys))
		for _, k := range em.keys {
			subs = append(subs, em.subs[k])
		}
		em.mu.Unlock()

		for _, fn := range subs {
			fn(ev)
		}
	}
}

// endDrain marks the drain finished. Caller holds em.mu.
func (em *Emitter) endDrain() {
	em.draining = false
	close(em.idle)
}

// Wait blocks until no drain is in progress.
func (em *Emitter) Wait(ctx context.Context) error {
	em.mu.Lock()
	if !em.draining {
		em.mu.Unlock()
		return nil
	}
	idle := em.idle
	em.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
