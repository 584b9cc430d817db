package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careloop/medassist/pkg/errors"
)

// Turn is one user/assistant exchange in a conversation.
type Turn struct {
	UserText  string    `json:"userText"`
	Reply     string    `json:"reply"`
	Intent    string    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationStore keeps a rolling window of recent turns per user in a
// Redis list. The list is trimmed to maxTurns on every append and expires
// after ttl of inactivity.
type ConversationStore struct {
	rdb       *redis.Client
	keyPrefix string
	maxTurns  int
	ttl       time.Duration
}

// NewConversationStore builds a store with the given window size and TTL.
// Non-positive values fall back to 20 turns and 24 hours.
func NewConversationStore(rdb *redis.Client, keyPrefix string, maxTurns int, ttl time.Duration) *ConversationStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConversationStore{rdb: rdb, keyPrefix: keyPrefix, maxTurns: maxTurns, ttl: ttl}
}

func (s *ConversationStore) key(userID string) string {
	return s.keyPrefix + "conversation:" + userID
}

// AppendTurn records one exchange, trims the window, and refreshes the TTL.
func (s *ConversationStore) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode conversation turn")
	}

	key := s.key(userID)
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.maxTurns-1))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to store conversation turn")
	}
	return nil
}

// History returns up to limit most recent turns, newest first. limit <= 0
// means the full window.
func (s *ConversationStore) History(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 || limit > s.maxTurns {
		limit = s.maxTurns
	}

	raw, err := s.rdb.LRange(ctx, s.key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to load conversation history")
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			// Skip corrupt entries rather than failing the whole read.
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Clear forgets a user's conversation.
func (s *ConversationStore) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to clear conversation")
	}
	return nil
}
