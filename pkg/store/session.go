package store

import "time"

// Conversation lifecycle phases. Transitions only move forward
// (see pkg/advisor/state); "complete" is terminal.
const (
	PhasePlanning    = "planning"
	PhaseResearching = "researching"
	PhaseAnalyzing   = "analyzing"
	PhaseComplete    = "complete"
)

// Roles recorded in the planning dialogue history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TurnMessage is one entry of the planning dialogue.
type TurnMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionState is the full resumable state of one conversation. It is
// owned by the session store; phase handlers work on a request-scoped
// copy that is written back before the response returns.
type SessionState struct {
	ID             string    `json:"id"`
	Phase          string    `json:"phase"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`

	// What is known about the buyer so far. Mutated only while the
	// session is in the planning phase.
	Requirement RequirementRecord `json:"requirement"`

	// Queries decided at the planning -> researching boundary.
	SearchQueries []string `json:"search_queries,omitempty"`

	// Nil until the researching phase has run. A non-nil value with
	// empty candidate list means research ran and found nothing.
	Research *ResearchOutput `json:"research,omitempty"`

	// Analysis output.
	Recommendation string          `json:"recommendation,omitempty"`
	Report         *AnalysisReport `json:"report,omitempty"`

	// Last conversational reply, replayed verbatim for turns that
	// arrive after the session is complete.
	LastResponse string `json:"last_response,omitempty"`

	// Planning dialogue history.
	History []TurnMessage `json:"history,omitempty"`

	// The planner's own running count of questions asked so far.
	QuestionsAsked int `json:"questions_asked,omitempty"`
}
