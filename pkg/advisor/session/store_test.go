package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-shopscout-be/internal/repository/contract"
	"ai-shopscout-be/internal/repository/memory"
	"ai-shopscout-be/pkg/store"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// flakyRepo wraps another repository and fails selected operations, to
// simulate a durable backend outage.
type flakyRepo struct {
	inner    contract.SessionRepository
	failLoad bool
	failSave bool
}

func (f *flakyRepo) Load(ctx context.Context, id string) (*store.SessionState, error) {
	if f.failLoad {
		return nil, errors.New("connection refused")
	}
	return f.inner.Load(ctx, id)
}

func (f *flakyRepo) Save(ctx context.Context, sess *store.SessionState, ttl time.Duration) error {
	if f.failSave {
		return errors.New("connection refused")
	}
	return f.inner.Save(ctx, sess, ttl)
}

func (f *flakyRepo) Touch(ctx context.Context, id string, ttl time.Duration) error {
	return f.inner.Touch(ctx, id, ttl)
}

func (f *flakyRepo) Delete(ctx context.Context, id string) error {
	return f.inner.Delete(ctx, id)
}

func newSession(id string) *store.SessionState {
	now := time.Now()
	return &store.SessionState{
		ID:             id,
		Phase:          store.PhasePlanning,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

func TestStoreMemoryOnlyRoundTrip(t *testing.T) {
	s := NewStore(nil, memory.NewSessionRepository(time.Hour), time.Hour, nopLogger{})
	ctx := context.Background()

	_, found := s.Load(ctx, "missing")
	assert.False(t, found)

	s.Save(ctx, newSession("sess-1"))

	loaded, found := s.Load(ctx, "sess-1")
	require.True(t, found)
	assert.Equal(t, "sess-1", loaded.ID)
	assert.Equal(t, store.PhasePlanning, loaded.Phase)

	s.Delete(ctx, "sess-1")
	_, found = s.Load(ctx, "sess-1")
	assert.False(t, found)
}

func TestStoreDurableOutageFallsBackToMemory(t *testing.T) {
	durable := &flakyRepo{
		inner:    memory.NewSessionRepository(time.Hour),
		failLoad: true,
		failSave: true,
	}
	s := NewStore(durable, memory.NewSessionRepository(time.Hour), time.Hour, nopLogger{})
	ctx := context.Background()

	// Save succeeds despite the durable outage because the in-process
	// write-through happened first.
	s.Save(ctx, newSession("sess-outage"))

	loaded, found := s.Load(ctx, "sess-outage")
	require.True(t, found)
	assert.Equal(t, "sess-outage", loaded.ID)
}

func TestStoreDurableCopyWins(t *testing.T) {
	durableInner := memory.NewSessionRepository(time.Hour)
	memoryLayer := memory.NewSessionRepository(time.Hour)
	s := NewStore(durableInner, memoryLayer, time.Hour, nopLogger{})
	ctx := context.Background()

	stale := newSession("sess-2")
	stale.Phase = store.PhasePlanning
	require.NoError(t, memoryLayer.Save(ctx, stale, time.Hour))

	fresh := newSession("sess-2")
	fresh.Phase = store.PhaseResearching
	require.NoError(t, durableInner.Save(ctx, fresh, time.Hour))

	loaded, found := s.Load(ctx, "sess-2")
	require.True(t, found)
	assert.Equal(t, store.PhaseResearching, loaded.Phase)
}

func TestStoreDurableAbsenceConsultsMemory(t *testing.T) {
	durableInner := memory.NewSessionRepository(time.Hour)
	memoryLayer := memory.NewSessionRepository(time.Hour)
	s := NewStore(durableInner, memoryLayer, time.Hour, nopLogger{})
	ctx := context.Background()

	// A session saved during an outage can live only in memory.
	require.NoError(t, memoryLayer.Save(ctx, newSession("sess-3"), time.Hour))

	loaded, found := s.Load(ctx, "sess-3")
	require.True(t, found)
	assert.Equal(t, "sess-3", loaded.ID)
}

func TestStoreDeleteRemovesBothLayers(t *testing.T) {
	durableInner := memory.NewSessionRepository(time.Hour)
	memoryLayer := memory.NewSessionRepository(time.Hour)
	s := NewStore(durableInner, memoryLayer, time.Hour, nopLogger{})
	ctx := context.Background()

	s.Save(ctx, newSession("sess-4"))
	s.Delete(ctx, "sess-4")

	fromDurable, err := durableInner.Load(ctx, "sess-4")
	require.NoError(t, err)
	assert.Nil(t, fromDurable)

	fromMemory, err := memoryLayer.Load(ctx, "sess-4")
	require.NoError(t, err)
	assert.Nil(t, fromMemory)
}
