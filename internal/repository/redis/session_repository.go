package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ai-shopscout-be/internal/repository/contract"
	"ai-shopscout-be/pkg/store"
)

const keyPrefix = "advisor:session:"

// SessionRepository keeps sessions in Redis as JSON values under a TTL,
// so they survive process restarts and expire server-side.
type SessionRepository struct {
	client *goredis.Client
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *goredis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*store.SessionState, error) {
	payload, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", sessionID, err)
	}

	var session store.SessionState
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *store.SessionState, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, sessionKey(sessionID), ttl).Err(); err != nil {
		return fmt.Errorf("redis expire session %s: %w", sessionID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del session %s: %w", sessionID, err)
	}
	return nil
}
