package state

import (
	"log"

	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/store"
)

// ReadyConfidenceThreshold is the minimum planner confidence the planning
// exit guard accepts.
const ReadyConfidenceThreshold = 0.7

// Planner self-assessment statuses.
const (
	StatusReady        = "ready"
	StatusNeedMoreInfo = "need_more_info"
)

// Assessment is the planner's structured self-report for one turn.
type Assessment struct {
	Status         string  `json:"status"`
	Confidence     float64 `json:"confidence"`
	QuestionsAsked int     `json:"questions_asked"`
}

// Ready reports whether the planner itself declared the requirements
// sufficient with enough confidence. Never trusted alone: the planning
// guard also requires the record's actual field completeness.
func (a Assessment) Ready() bool {
	return a.Status == StatusReady && a.Confidence >= ReadyConfidenceThreshold
}

// Evaluation carries the per-turn signals the transition guards inspect.
type Evaluation struct {
	Session    *store.SessionState
	Assessment *Assessment // planning turns only
}

type transition struct {
	from  string
	to    string
	guard func(Evaluation) bool
}

// The only legal moves. No backward edges; complete is terminal.
var transitions = []transition{
	{from: store.PhasePlanning, to: store.PhaseResearching, guard: planningDone},
	{from: store.PhaseResearching, to: store.PhaseAnalyzing, guard: researchRecorded},
	{from: store.PhaseAnalyzing, to: store.PhaseComplete, guard: analysisRecorded},
}

// Machine evaluates phase transitions. All phase movement goes through
// Advance; handlers never assign Phase directly.
type Machine struct {
	logger *log.Logger
}

// NewMachine creates a new phase machine.
func NewMachine(logger *log.Logger) *Machine {
	return &Machine{logger: logger}
}

// Next returns the phase the session may move to under the given
// evaluation, or ("", false) when no guard passes.
func (m *Machine) Next(ev Evaluation) (string, bool) {
	for _, t := range transitions {
		if t.from == ev.Session.Phase && t.guard(ev) {
			return t.to, true
		}
	}
	return "", false
}

// Advance applies Next and mutates the session phase on success.
func (m *Machine) Advance(ev Evaluation) bool {
	next, ok := m.Next(ev)
	if !ok {
		return false
	}
	m.logger.Printf("[STATE] %s -> %s (session %s)", ev.Session.Phase, next, ev.Session.ID)
	ev.Session.Phase = next
	return true
}

// planningDone is the dual gate out of planning: the record must actually
// be sufficient AND the planner must have signaled ready with confidence.
func planningDone(ev Evaluation) bool {
	if !requirement.IsSufficient(ev.Session.Requirement) {
		return false
	}
	return ev.Assessment != nil && ev.Assessment.Ready()
}

// researchRecorded passes once the pipeline recorded output, including the
// legitimate empty result.
func researchRecorded(ev Evaluation) bool {
	return ev.Session.Research != nil
}

func analysisRecorded(ev Evaluation) bool {
	return ev.Session.Report != nil && ev.Session.Recommendation != ""
}
