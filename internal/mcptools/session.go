package mcptools

import (
	"sync"

	"github.com/runnerr0/histidx/internal/history"
)

// Session is the history model shared by all tools of one server. Tool
// calls are serialized so that the index given to history_remove refers
// to the rows returned by the preceding history_search.
type Session struct {
	mu    sync.Mutex
	model *history.Model
}

// NewSession wraps model. The caller keeps ownership of the model.
func NewSession(model *history.Model) *Session {
	return &Session{model: model}
}

func (s *Session) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}
