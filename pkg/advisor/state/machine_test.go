package state

import (
	"io"
	"log"
	"testing"

	"ai-shopscout-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func testMachine() *Machine {
	return NewMachine(log.New(io.Discard, "", 0))
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func sufficientRecord() store.RequirementRecord {
	return store.RequirementRecord{
		Category:  strPtr("laptop"),
		BudgetMax: f64Ptr(1500),
		UseCase:   strPtr("video editing"),
	}
}

func TestAdvance_PlanningRequiresBothGates(t *testing.T) {
	m := testMachine()

	tests := []struct {
		name       string
		record     store.RequirementRecord
		assessment *Assessment
		want       bool
	}{
		{
			name:       "record sufficient but planner still gathering",
			record:     sufficientRecord(),
			assessment: &Assessment{Status: StatusNeedMoreInfo, Confidence: 0.9},
			want:       false,
		},
		{
			name:       "planner ready but record incomplete",
			record:     store.RequirementRecord{Category: strPtr("laptop")},
			assessment: &Assessment{Status: StatusReady, Confidence: 0.95},
			want:       false,
		},
		{
			name:       "planner ready but confidence below threshold",
			record:     sufficientRecord(),
			assessment: &Assessment{Status: StatusReady, Confidence: 0.5},
			want:       false,
		},
		{
			name:       "no assessment at all",
			record:     sufficientRecord(),
			assessment: nil,
			want:       false,
		},
		{
			name:       "both gates pass at the threshold",
			record:     sufficientRecord(),
			assessment: &Assessment{Status: StatusReady, Confidence: 0.7},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &store.SessionState{ID: "s1", Phase: store.PhasePlanning, Requirement: tt.record}
			advanced := m.Advance(Evaluation{Session: sess, Assessment: tt.assessment})
			assert.Equal(t, tt.want, advanced)
			if tt.want {
				assert.Equal(t, store.PhaseResearching, sess.Phase)
			} else {
				assert.Equal(t, store.PhasePlanning, sess.Phase)
			}
		})
	}
}

func TestAdvance_ResearchingNeedsRecordedOutput(t *testing.T) {
	m := testMachine()

	sess := &store.SessionState{ID: "s1", Phase: store.PhaseResearching}
	assert.False(t, m.Advance(Evaluation{Session: sess}))
	assert.Equal(t, store.PhaseResearching, sess.Phase)

	// An empty candidate list is still recorded output.
	sess.Research = &store.ResearchOutput{Candidates: []store.CandidateProduct{}}
	assert.True(t, m.Advance(Evaluation{Session: sess}))
	assert.Equal(t, store.PhaseAnalyzing, sess.Phase)
}

func TestAdvance_AnalyzingNeedsReportAndRecommendation(t *testing.T) {
	m := testMachine()

	sess := &store.SessionState{ID: "s1", Phase: store.PhaseAnalyzing}
	assert.False(t, m.Advance(Evaluation{Session: sess}))

	sess.Report = &store.AnalysisReport{}
	assert.False(t, m.Advance(Evaluation{Session: sess}))

	sess.Recommendation = "Go with the ThinkPad."
	assert.True(t, m.Advance(Evaluation{Session: sess}))
	assert.Equal(t, store.PhaseComplete, sess.Phase)
}

func TestAdvance_CompleteIsTerminal(t *testing.T) {
	m := testMachine()

	sess := &store.SessionState{
		ID:             "s1",
		Phase:          store.PhaseComplete,
		Requirement:    sufficientRecord(),
		Research:       &store.ResearchOutput{},
		Report:         &store.AnalysisReport{},
		Recommendation: "done",
	}

	assert.False(t, m.Advance(Evaluation{
		Session:    sess,
		Assessment: &Assessment{Status: StatusReady, Confidence: 1},
	}))
	assert.Equal(t, store.PhaseComplete, sess.Phase)
}

// Walking a full lifecycle only ever moves forward.
func TestAdvance_PhaseIsMonotonic(t *testing.T) {
	m := testMachine()

	sess := &store.SessionState{ID: "s1", Phase: store.PhasePlanning, Requirement: sufficientRecord()}

	assert.True(t, m.Advance(Evaluation{
		Session:    sess,
		Assessment: &Assessment{Status: StatusReady, Confidence: 0.9},
	}))
	assert.Equal(t, store.PhaseResearching, sess.Phase)

	// Replaying the planning evaluation cannot move the session back or
	// anywhere else: the researching guard is the only one consulted now.
	assert.False(t, m.Advance(Evaluation{
		Session:    sess,
		Assessment: &Assessment{Status: StatusReady, Confidence: 0.9},
	}))
	assert.Equal(t, store.PhaseResearching, sess.Phase)

	sess.Research = &store.ResearchOutput{}
	assert.True(t, m.Advance(Evaluation{Session: sess}))
	assert.Equal(t, store.PhaseAnalyzing, sess.Phase)

	sess.Report = &store.AnalysisReport{}
	sess.Recommendation = "recommendation"
	assert.True(t, m.Advance(Evaluation{Session: sess}))
	assert.Equal(t, store.PhaseComplete, sess.Phase)
}

func TestAssessmentReady(t *testing.T) {
	assert.True(t, Assessment{Status: StatusReady, Confidence: 0.7}.Ready())
	assert.True(t, Assessment{Status: StatusReady, Confidence: 1}.Ready())
	assert.False(t, Assessment{Status: StatusReady, Confidence: 0.69}.Ready())
	assert.False(t, Assessment{Status: StatusNeedMoreInfo, Confidence: 1}.Ready())
	assert.False(t, Assessment{}.Ready())
}
