package chathistory

import (
	"context"
	"sync"
	"time"

	"github.com/astracalc/agent-server/internal/domain/chat"
	"github.com/astracalc/agent-server/pkg/util"
)

type session struct {
	turns     []chat.Turn
	expiresAt time.Time
}

// MemoryStore is an in-memory history store for tests/dev and as the
// fallback when no Valkey instance is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	maxTurns int
	ttl      time.Duration
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore(maxTurns int, ttl time.Duration) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &MemoryStore{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		ttl:      ttl,
	}
}

// Recent implements chat.HistoryStore.
func (s *MemoryStore) Recent(_ context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	if sessionID == "" || limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if hasExpired(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, nil
	}

	turns := entry.turns
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]chat.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append implements chat.HistoryStore.
func (s *MemoryStore) Append(_ context.Context, sessionID string, turns ...chat.Turn) error {
	if sessionID == "" || len(turns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || hasExpired(entry.expiresAt) {
		entry = &session{}
		s.sessions[sessionID] = entry
	}
	entry.turns = append(entry.turns, turns...)
	if len(entry.turns) > s.maxTurns {
		entry.turns = entry.turns[len(entry.turns)-s.maxTurns:]
	}
	if s.ttl > 0 {
		entry.expiresAt = util.NowUTC().Add(s.ttl)
	}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(util.NowUTC())
}

var _ chat.HistoryStore = (*MemoryStore)(nil)
