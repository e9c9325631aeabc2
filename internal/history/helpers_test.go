package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory EntryStore. Queries for a blocked term wait
// until the gate is released or the job context expires.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	entries   map[string]*Entry
	gates     map[string]chan struct{}
	queryErr  error
	deleteErr error
	deletes   int
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string]*Entry),
		gates:   make(map[string]chan struct{}),
	}
}

func (s *memStore) Upsert(_ context.Context, url, title string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.entries[url]
	merged := Merge(existing, url, title)
	if existing == nil {
		s.nextID++
		merged.ID = s.nextID
	}
	s.entries[url] = &merged
	out := merged
	return &out, nil
}

func (s *memStore) QueryMatching(ctx context.Context, term string) ([]Entry, error) {
	s.mu.Lock()
	gate := s.gates[term]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queryErr != nil {
		return nil, s.queryErr
	}
	out := []Entry{}
	for _, e := range s.entries {
		if Matches(*e, term) {
			out = append(out, *e)
		}
	}
	Rank(out)
	return out, nil
}

func (s *memStore) DeleteByKey(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.entries[url]; !ok {
		return fmt.Errorf("delete %s: %w", url, ErrNotFound)
	}
	delete(s.entries, url)
	return nil
}

func (s *memStore) MaxKnownID(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID, nil
}

// block makes queries for term wait until the returned function is called.
func (s *memStore) block(term string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[term] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, term)
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *memStore) deleteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestModel(t *testing.T, store EntryStore, opts ...Option) *Model {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	m := NewModel(store, opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func flush(t *testing.T, m *Model) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Flush(ctx))
}

// searchCount issues a search, waits for it and returns the row count.
func searchCount(t *testing.T, m *Model, term string) int {
	t.Helper()
	m.Search(term)
	flush(t, m)
	return m.RowCount()
}

func visitAll(t *testing.T, m *Model, pairs ...[2]string) {
	t.Helper()
	for _, p := range pairs {
		m.Visit(p[0], p[1])
	}
	flush(t, m)
}

// recorder collects events delivered to a subscriber.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func record(m *Model) *recorder {
	r := &recorder{}
	m.Subscribe(func(ev Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) of(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
