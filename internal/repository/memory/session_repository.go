package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-shopscout-be/internal/repository/contract"
	"ai-shopscout-be/pkg/store"
)

// Expired entries are purged every 10 minutes.
const cleanupInterval = 10 * time.Minute

type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates an in-process session store. Entries live
// for defaultTTL after their last Save or Touch.
func NewSessionRepository(defaultTTL time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(defaultTTL, cleanupInterval),
	}
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*store.SessionState, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.SessionState), nil
	}
	return nil, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *store.SessionState, ttl time.Duration) error {
	r.cache.Set(session.ID, session, ttl)
	return nil
}

func (r *SessionRepository) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	if x, found := r.cache.Get(sessionID); found {
		r.cache.Set(sessionID, x, ttl)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}
