package session

import (
	"context"
	"time"

	"ai-shopscout-be/internal/pkg/logger"
	"ai-shopscout-be/internal/repository/contract"
	"ai-shopscout-be/pkg/store"
)

// Store layers a durable TTL backend (Redis) over an in-process cache.
// Every save writes through to the in-process layer first, so a durable
// outage degrades persistence to the process lifetime instead of failing
// the conversation. When no durable backend is configured the store runs
// memory-only.
type Store struct {
	durable contract.SessionRepository // nil when running memory-only
	memory  contract.SessionRepository
	ttl     time.Duration
	logger  logger.ILogger
}

func NewStore(durable, memory contract.SessionRepository, ttl time.Duration, log logger.ILogger) *Store {
	return &Store{
		durable: durable,
		memory:  memory,
		ttl:     ttl,
		logger:  log,
	}
}

// TTL is the session expiry window applied on every save and touch.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Load fetches a session by id. A durable backend error is downgraded to
// a warning and the in-process copy is consulted instead, so an outage
// never fails a turn. Returns found=false when the session exists in
// neither layer; expired and never-existed are indistinguishable.
func (s *Store) Load(ctx context.Context, sessionID string) (*store.SessionState, bool) {
	if s.durable != nil {
		sess, err := s.durable.Load(ctx, sessionID)
		if err != nil {
			s.logger.Warn("SESSION", "Durable load failed, consulting in-memory copy", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		} else if sess != nil {
			return sess, true
		}
		// Durable absence still falls through: the session may live only
		// in memory if it was saved during a backend outage.
	}

	sess, _ := s.memory.Load(ctx, sessionID)
	if sess == nil {
		return nil, false
	}
	return sess, true
}

// Save persists a session to both layers. The in-process write happens
// first and cannot fail; a durable failure is logged and swallowed since
// the state is already safe for this process's lifetime.
func (s *Store) Save(ctx context.Context, sess *store.SessionState) {
	_ = s.memory.Save(ctx, sess, s.ttl)

	if s.durable == nil {
		return
	}
	if err := s.durable.Save(ctx, sess, s.ttl); err != nil {
		s.logger.Warn("SESSION", "Durable save failed, in-memory copy retained", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

// Touch refreshes the expiry window without rewriting content.
func (s *Store) Touch(ctx context.Context, sessionID string) {
	_ = s.memory.Touch(ctx, sessionID, s.ttl)

	if s.durable == nil {
		return
	}
	if err := s.durable.Touch(ctx, sessionID, s.ttl); err != nil {
		s.logger.Warn("SESSION", "Durable touch failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// Delete removes the session from both layers.
func (s *Store) Delete(ctx context.Context, sessionID string) {
	_ = s.memory.Delete(ctx, sessionID)

	if s.durable == nil {
		return
	}
	if err := s.durable.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("SESSION", "Durable delete failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
