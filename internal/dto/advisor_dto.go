package dto

import (
	"time"

	"ai-shopscout-be/pkg/store"
)

// SendTurnRequest is one inbound conversation turn. SessionId is blank on
// the first turn; Message carries either user text or the continuation
// marker that drives the automated phases.
type SendTurnRequest struct {
	SessionID string `json:"session_id"`
	Phase     string `json:"phase,omitempty" validate:"omitempty,oneof=planning researching analyzing complete"`
	Message   string `json:"message" validate:"required"`
}

type SendTurnResponse struct {
	SessionID     string   `json:"session_id"`
	Phase         string   `json:"phase"`
	Response      string   `json:"response"`
	SearchQueries []string `json:"search_queries,omitempty"`
	Completed     bool     `json:"completed"`
}

type SessionSnapshotResponse struct {
	SessionID      string                  `json:"session_id"`
	Phase          string                  `json:"phase"`
	Requirement    store.RequirementRecord `json:"requirement"`
	SearchQueries  []string                `json:"search_queries,omitempty"`
	CandidateCount int                     `json:"candidate_count"`
	Completed      bool                    `json:"completed"`
	CreatedAt      time.Time               `json:"created_at"`
	LastActivityAt time.Time               `json:"last_activity_at"`
}

type SessionReportResponse struct {
	SessionID string `json:"session_id"`
	Markdown  string `json:"markdown"`
}

// SaveReportMessage rides the in-process bus from the orchestrator to the
// report writer once a session completes.
type SaveReportMessage struct {
	SessionID string `json:"session_id"`
}
