package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultOpTimeout bounds a single store operation.
const DefaultOpTimeout = 5 * time.Second

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for store failures and search tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithOpTimeout sets the deadline applied to each store operation.
func WithOpTimeout(d time.Duration) Option {
	return func(m *Model) { m.opTimeout = d }
}

// WithMaxResults caps the number of rows a search may place in the
// projection. Zero means unlimited.
func WithMaxResults(n int) Option {
	return func(m *Model) { m.maxResults = n }
}

// WithFlowGenerator replaces the UUIDv7 flow token generator.
func WithFlowGenerator(fn func() string) Option {
	return func(m *Model) { m.newFlow = fn }
}

// Model is the consumer-facing history list. Search, Remove and Visit
// return immediately; their store round-trips complete on a background
// worker and are reported through Subscribe.
type Model struct {
	store      EntryStore
	dispatch   *Dispatcher
	coord      *Coordinator
	events     Emitter
	logger     *slog.Logger
	opTimeout  time.Duration
	maxResults int
	newFlow    func() string

	mu   sync.Mutex
	proj Projection
	// pending counts unconfirmed store deletes per URL. Query completions
	// applied while a delete is outstanding must not bring the row back.
	pending map[string]int
}

// NewModel creates a Model over store. The store stays owned by the caller
// and must outlive the Model.
func NewModel(store EntryStore, opts ...Option) *Model {
	m := &Model{
		store:     store,
		logger:    slog.Default(),
		opTimeout: DefaultOpTimeout,
		pending:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.coord = NewCoordinator(m.newFlow)
	m.dispatch = NewDispatcher(m.opTimeout, m.logger)
	return m
}

// Subscribe registers fn for all events and returns its unsubscribe function.
// fn may call Search, Remove and Visit. It must not call Flush or the *Sync
// helpers, which wait for deliveries that include the one running fn.
func (m *Model) Subscribe(fn func(Event)) func() {
	return m.events.Subscribe(fn)
}

// RowCount returns the size of the projection.
func (m *Model) RowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proj.RowCount()
}

// EntryAt returns row i of the projection.
func (m *Model) EntryAt(i int) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proj.EntryAt(i)
}

// Data returns the field selected by role for row i.
func (m *Model) Data(i int, role Role) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proj.Data(i, role)
}

// Entries returns a copy of the projection.
func (m *Model) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proj.Entries()
}

// Search issues an asynchronous query for term. Any search still in flight
// is superseded: its result will be reported but never applied.
func (m *Model) Search(term string) Ticket {
	t := m.coord.Begin(term)
	m.logger.Debug("search issued", "flow", t.Flow, "seq", t.Seq, "term", term)

	ok := m.dispatch.Submit("search", func(ctx context.Context) {
		entries, err := m.store.QueryMatching(ctx, term)
		m.complete(t, entries, err)
	})
	if !ok {
		m.logger.Warn("search dropped: model closed", "flow", t.Flow, "term", term)
	}
	return t
}

func (m *Model) complete(t Ticket, entries []Entry, err error) {
	if err != nil {
		m.logger.Error("search failed", "flow", t.Flow, "seq", t.Seq, "term", t.Term, "error", err)
		m.events.Emit(Event{
			Kind:       StoreConfirmed,
			Completion: Completion{Ticket: t, Outcome: Discarded},
			Err:        err,
		})
		return
	}

	m.mu.Lock()
	c := m.coord.Resolve(t)
	var evs []Event
	if c.Outcome == Applied {
		before := m.proj.RowCount()
		m.proj.Replace(m.visible(entries))
		after := m.proj.RowCount()

		evs = append(evs, Event{Kind: ProjectionUpdated, Count: after, Completion: c})
		if after != before {
			evs = append(evs, Event{Kind: CountChanged, Count: after})
		}
	}
	evs = append(evs, Event{Kind: StoreConfirmed, Completion: c, Entries: entries})
	// Queued under m.mu so count events follow the order of projection changes.
	m.events.enqueue(evs...)
	m.mu.Unlock()

	m.logger.Debug("search completed",
		"flow", t.Flow, "seq", t.Seq, "matches", len(entries), "outcome", c.Outcome)
	m.events.Drain()
}

// visible ranks entries and drops rows with an outstanding delete.
// Caller holds m.mu.
func (m *Model) visible(entries []Entry) []Entry {
	rows := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if m.pending[e.URL] > 0 {
			continue
		}
		rows = append(rows, e)
	}
	Rank(rows)
	if m.maxResults > 0 && len(rows) > m.maxResults {
		rows = rows[:m.maxResults]
	}
	return rows
}

// Remove deletes row index from the projection at once and deletes the
// entry from the store in the background. It returns the removed entry.
// An index outside [0, RowCount()) is ignored and reports false.
func (m *Model) Remove(index int) (Entry, bool) {
	m.mu.Lock()
	e, ok := m.proj.RemoveAt(index)
	if !ok {
		m.mu.Unlock()
		return Entry{}, false
	}
	m.pending[e.URL]++
	m.events.enqueue(Event{Kind: CountChanged, Count: m.proj.RowCount()})
	m.mu.Unlock()
	m.events.Drain()

	ok = m.dispatch.Submit("delete", func(ctx context.Context) {
		err := m.store.DeleteByKey(ctx, e.URL)
		m.settleDelete(e.URL)
		if err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.Warn("delete failed", "url", e.URL, "error", err)
		}
		m.events.Emit(Event{Kind: EntryDeleted, Entry: &e, URL: e.URL, Err: err})
	})
	if !ok {
		m.settleDelete(e.URL)
		m.logger.Warn("delete dropped: model closed", "url", e.URL)
	}
	return e, true
}

func (m *Model) settleDelete(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending[url] <= 1 {
		delete(m.pending, url)
		return
	}
	m.pending[url]--
}

// Visit records a visit to url in the background, merging it into any
// existing entry. The projection is not touched until the next search.
func (m *Model) Visit(url, title string) {
	ok := m.dispatch.Submit("upsert", func(ctx context.Context) {
		entry, err := m.store.Upsert(ctx, url, title)
		if err != nil {
			m.logger.Warn("visit not recorded", "url", url, "error", err)
		}
		m.events.Emit(Event{Kind: VisitRecorded, Entry: entry, URL: url, Err: err})
	})
	if !ok {
		m.logger.Warn("visit dropped: model closed", "url", url)
	}
}

// Flush waits until every operation issued before the call has completed
// and its notifications have been delivered.
func (m *Model) Flush(ctx context.Context) error {
	if err := m.dispatch.Flush(ctx); err != nil {
		return err
	}
	return m.events.Wait(ctx)
}

// Close drains outstanding operations and stops the worker. The store is
// not closed.
func (m *Model) Close() error {
	return m.dispatch.Close()
}
