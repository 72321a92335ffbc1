package chathistory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/astracalc/agent-server/internal/domain/chat"
)

// ValkeyStore keeps per-session turns in a Valkey list so conversations
// survive restarts. Writes are synchronous, which gives read-your-writes
// within one session.
type ValkeyStore struct {
	client   valkey.Client
	prefix   string
	maxTurns int
	ttl      time.Duration
}

// NewValkeyStore constructs a history store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, maxTurns int, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "chat"
	}
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &ValkeyStore{client: client, prefix: prefix, maxTurns: maxTurns, ttl: ttl}
}

// Recent implements chat.HistoryStore.
func (s *ValkeyStore) Recent(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	if sessionID == "" || limit <= 0 {
		return nil, nil
	}
	cmd := s.client.B().Lrange().Key(s.key(sessionID)).Start(int64(-limit)).Stop(-1).Build()
	entries, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	turns := make([]chat.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn chat.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append implements chat.HistoryStore.
func (s *ValkeyStore) Append(ctx context.Context, sessionID string, turns ...chat.Turn) error {
	if sessionID == "" || len(turns) == 0 {
		return nil
	}
	key := s.key(sessionID)

	push := s.client.B().Rpush().Key(key).Element()
	for _, turn := range turns {
		payload, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		push = push.Element(string(payload))
	}
	if err := s.client.Do(ctx, push.Build()).Error(); err != nil {
		return err
	}
	if err := s.client.Do(ctx, s.client.B().Ltrim().Key(key).Start(int64(-s.maxTurns)).Stop(-1).Build()).Error(); err != nil {
		return err
	}
	if s.ttl > 0 {
		_ = s.client.Do(ctx, s.client.B().Expire().Key(key).Seconds(int64(s.ttl.Seconds())).Build()).Error()
	}
	return nil
}

func (s *ValkeyStore) key(sessionID string) string {
	return s.prefix + ":history:" + sessionID
}

var _ chat.HistoryStore = (*ValkeyStore)(nil)
