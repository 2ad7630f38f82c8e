package events

import (
	"testing"
	"time"

	"ai-shopscout-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func TestNewSessionEvent_PayloadShape(t *testing.T) {
	sess := &store.SessionState{
		ID:          "sess-1",
		Phase:       store.PhaseResearching,
		Requirement: store.RequirementRecord{Category: strPtr("laptop")},
		Research: &store.ResearchOutput{
			Candidates: []store.CandidateProduct{{Name: "A"}, {Name: "B"}},
		},
	}

	ev := NewSessionEvent(TypeSessionCompleted, sess)

	assert.Equal(t, TypeSessionCompleted, ev.EventType())
	assert.Equal(t, "sess-1", ev.Payload()["session_id"])
	assert.Equal(t, store.PhaseResearching, ev.Payload()["phase"])
	assert.Equal(t, "laptop", ev.Payload()["category"])
	assert.Equal(t, 2, ev.Payload()["candidate_count"])
	assert.WithinDuration(t, time.Now(), ev.Timestamp(), time.Second)
}

func TestNewSessionEvent_OmitsUnknownFields(t *testing.T) {
	ev := NewSessionEvent(TypeSessionCreated, &store.SessionState{ID: "sess-2", Phase: store.PhasePlanning})

	assert.NotContains(t, ev.Payload(), "category")
	assert.NotContains(t, ev.Payload(), "candidate_count")
}
