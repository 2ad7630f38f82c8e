package contract

import (
	"context"
	"time"

	"ai-shopscout-be/pkg/store"
)

// SessionRepository persists advisor sessions under a TTL. Load returns
// (nil, nil) when the session does not exist; expiry and absence are
// indistinguishable to callers.
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (*store.SessionState, error)
	Save(ctx context.Context, session *store.SessionState, ttl time.Duration) error
	Touch(ctx context.Context, sessionID string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
