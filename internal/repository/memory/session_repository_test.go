package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-shopscout-be/pkg/store"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	sess := &store.SessionState{ID: "abc", Phase: store.PhasePlanning}
	require.NoError(t, repo.Save(ctx, sess, time.Hour))

	loaded, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, store.PhasePlanning, loaded.Phase)

	require.NoError(t, repo.Delete(ctx, "abc"))
	loaded, err = repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionRepositoryAbsentIsNilNil(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	loaded, err := repo.Load(context.Background(), "never-saved")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	sess := &store.SessionState{ID: "short-lived", Phase: store.PhasePlanning}
	require.NoError(t, repo.Save(ctx, sess, 20*time.Millisecond))

	loaded, err := repo.Load(ctx, "short-lived")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	time.Sleep(40 * time.Millisecond)

	loaded, err = repo.Load(ctx, "short-lived")
	require.NoError(t, err)
	assert.Nil(t, loaded, "expired session must read as absent")
}

func TestSessionRepositoryTouchExtendsTTL(t *testing.T) {
	repo := NewSessionRepository(time.Hour)
	ctx := context.Background()

	sess := &store.SessionState{ID: "touched", Phase: store.PhaseResearching}
	require.NoError(t, repo.Save(ctx, sess, 40*time.Millisecond))

	time.Sleep(25 * time.Millisecond)
	require.NoError(t, repo.Touch(ctx, "touched", time.Hour))
	time.Sleep(25 * time.Millisecond)

	loaded, err := repo.Load(ctx, "touched")
	require.NoError(t, err)
	assert.NotNil(t, loaded, "touch must reset the expiry window")
}

func TestSessionRepositoryTouchMissingIsNoop(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	assert.NoError(t, repo.Touch(context.Background(), "ghost", time.Hour))

	loaded, err := repo.Load(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
