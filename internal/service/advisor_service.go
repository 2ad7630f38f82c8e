package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-shopscout-be/internal/config"
	"ai-shopscout-be/internal/constant"
	"ai-shopscout-be/internal/dto"
	"ai-shopscout-be/internal/pkg/logger"
	"ai-shopscout-be/pkg/advisor/analysis"
	"ai-shopscout-be/pkg/advisor/planning"
	"ai-shopscout-be/pkg/advisor/report"
	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/advisor/research"
	"ai-shopscout-be/pkg/advisor/session"
	"ai-shopscout-be/pkg/advisor/state"
	"ai-shopscout-be/pkg/events"
	"ai-shopscout-be/pkg/llm"
	pkgnats "ai-shopscout-be/pkg/nats"
	"ai-shopscout-be/pkg/search"
	"ai-shopscout-be/pkg/store"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured refuses new sessions while provider credentials are
	// missing. Already-running sessions are still served.
	ErrNotConfigured = errors.New("advisor is not configured")

	ErrSessionNotFound = errors.New("session not found")

	// ErrReportNotReady guards the report endpoint until a session reaches
	// the complete phase.
	ErrReportNotReady = errors.New("report not ready")
)

type IAdvisorService interface {
	SendTurn(ctx context.Context, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionSnapshotResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetReport(ctx context.Context, sessionID string) (*dto.SessionReportResponse, error)
}

// advisorService owns the conversation lifecycle: it loads the session,
// dispatches to the handler for its current phase, persists the mutated
// state, and answers. All phase movement goes through the state machine.
type advisorService struct {
	cfg       *config.Config
	configErr error
	sysLogger logger.ILogger
	llmLogger *log.Logger

	sessions *session.Store
	machine  *state.Machine

	planner      *planning.Planner
	extractor    *planning.Extractor
	queryPlanner *research.QueryPlanner
	executor     *research.Executor
	reducer      *research.Reducer
	analyzer     *analysis.Analyzer

	publisherService IPublisherService
	eventPublisher   *pkgnats.Publisher
}

func NewAdvisorService(
	cfg *config.Config,
	llmProvider llm.LLMProvider,
	searchProvider search.Provider,
	sessions *session.Store,
	publisherService IPublisherService,
	eventPublisher *pkgnats.Publisher,
	sysLogger logger.ILogger,
) IAdvisorService {
	llmLogger := initLLMLogger()

	return &advisorService{
		cfg:              cfg,
		configErr:        cfg.Validate(),
		sysLogger:        sysLogger,
		llmLogger:        llmLogger,
		sessions:         sessions,
		machine:          state.NewMachine(llmLogger),
		planner:          planning.NewPlanner(llmProvider, llmLogger),
		extractor:        planning.NewExtractor(llmProvider, llmLogger),
		queryPlanner:     research.NewQueryPlanner(llmProvider, llmLogger),
		executor:         research.NewExecutor(searchProvider, llmLogger),
		reducer:          research.NewReducer(llmProvider, llmLogger),
		analyzer:         analysis.NewAnalyzer(llmProvider, llmLogger),
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_advisor.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-ADVISOR] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// SendTurn processes one conversation turn. The stored phase decides the
// handler; a caller-supplied phase that disagrees is logged and ignored.
func (s *advisorService) SendTurn(ctx context.Context, req *dto.SendTurnRequest) (*dto.SendTurnResponse, error) {
	message := strings.TrimSpace(req.Message)

	sess, created, err := s.loadOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !created {
		// Keep the session alive for the duration of this turn even if it
		// was loaded near its expiry edge.
		s.sessions.Touch(ctx, sess.ID)
	}

	if req.Phase != "" && req.Phase != sess.Phase {
		s.sysLogger.Warn("ADVISOR", "Caller phase disagrees with stored phase", map[string]interface{}{
			"session_id":   sess.ID,
			"caller_phase": req.Phase,
			"stored_phase": sess.Phase,
		})
	}

	phaseBefore := sess.Phase

	var responseText string
	switch sess.Phase {
	case store.PhaseComplete:
		// Terminal: replay the final reply without invoking any collaborator.
		responseText = sess.LastResponse
	case store.PhasePlanning:
		responseText = s.handlePlanning(ctx, sess, message)
	case store.PhaseResearching:
		s.logIgnoredContent(sess, message)
		responseText = s.handleResearching(ctx, sess)
	case store.PhaseAnalyzing:
		s.logIgnoredContent(sess, message)
		responseText = s.handleAnalyzing(ctx, sess)
	default:
		return nil, fmt.Errorf("session %s in unknown phase %q", sess.ID, sess.Phase)
	}

	sess.LastActivityAt = time.Now()
	s.sessions.Save(ctx, sess)

	if created {
		s.publishLifecycleEvent(ctx, events.TypeSessionCreated, sess)
	}
	// Publish after the save so the report consumer reads the completed state.
	if phaseBefore != store.PhaseComplete && sess.Phase == store.PhaseComplete {
		s.publishLifecycleEvent(ctx, events.TypeSessionCompleted, sess)
		s.publishSaveReport(ctx, sess)
	}

	return &dto.SendTurnResponse{
		SessionID:     sess.ID,
		Phase:         sess.Phase,
		Response:      responseText,
		SearchQueries: sess.SearchQueries,
		Completed:     sess.Phase == store.PhaseComplete,
	}, nil
}

func (s *advisorService) GetSession(ctx context.Context, sessionID string) (*dto.SessionSnapshotResponse, error) {
	sess, found := s.sessions.Load(ctx, sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}

	snapshot := &dto.SessionSnapshotResponse{
		SessionID:      sess.ID,
		Phase:          sess.Phase,
		Requirement:    sess.Requirement,
		SearchQueries:  sess.SearchQueries,
		Completed:      sess.Phase == store.PhaseComplete,
		CreatedAt:      sess.CreatedAt,
		LastActivityAt: sess.LastActivityAt,
	}
	if sess.Research != nil {
		snapshot.CandidateCount = len(sess.Research.Candidates)
	}
	return snapshot, nil
}

func (s *advisorService) DeleteSession(ctx context.Context, sessionID string) error {
	_, found := s.sessions.Load(ctx, sessionID)
	if !found {
		return ErrSessionNotFound
	}
	s.sessions.Delete(ctx, sessionID)
	s.sysLogger.Info("ADVISOR", "Session deleted", map[string]interface{}{"session_id": sessionID})
	return nil
}

func (s *advisorService) GetReport(ctx context.Context, sessionID string) (*dto.SessionReportResponse, error) {
	sess, found := s.sessions.Load(ctx, sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	if sess.Phase != store.PhaseComplete {
		return nil, ErrReportNotReady
	}
	return &dto.SessionReportResponse{
		SessionID: sess.ID,
		Markdown:  report.Render(sess),
	}, nil
}

// loadOrCreate resolves the session for a turn. Creation is refused while
// configuration is incomplete; an existing session keeps being served so a
// hot-reloaded deployment never strands conversations mid-flight.
func (s *advisorService) loadOrCreate(ctx context.Context, sessionID string) (*store.SessionState, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID != "" {
		if sess, found := s.sessions.Load(ctx, sessionID); found {
			return sess, false, nil
		}
	}

	if s.configErr != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNotConfigured, s.configErr)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now()
	sess := &store.SessionState{
		ID:             sessionID,
		Phase:          store.PhasePlanning,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	s.sysLogger.Info("ADVISOR", "Session created", map[string]interface{}{"session_id": sess.ID})
	return sess, true, nil
}

// handlePlanning runs one requirement-gathering exchange. A continuation
// marker is treated as a normal conversational nudge: the planner speaks,
// but there is no user content to extract from.
func (s *advisorService) handlePlanning(ctx context.Context, sess *store.SessionState, message string) string {
	continuation := message == constant.ContinuationMarker
	if !continuation {
		sess.History = append(sess.History, store.TurnMessage{
			Role:      store.RoleUser,
			Content:   message,
			CreatedAt: time.Now(),
		})
	}

	reply, assessment := s.planner.Respond(ctx, sess.Requirement, planningHistory(sess), sess.QuestionsAsked)
	sess.History = append(sess.History, store.TurnMessage{
		Role:      store.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
	sess.QuestionsAsked = assessment.QuestionsAsked

	if !continuation {
		if frag, ok := s.extractor.Extract(ctx, sess.Requirement, message, reply); ok {
			sess.Requirement = requirement.Merge(sess.Requirement, frag)
		} else {
			s.llmLogger.Printf("[PLANNING] No requirement fragment this turn (session %s)", sess.ID)
		}
	}

	responseText := reply
	if s.machine.Advance(state.Evaluation{Session: sess, Assessment: assessment}) {
		// The queries are decided and persisted at the boundary itself, so
		// a snapshot read right after this turn already shows them.
		sess.SearchQueries = s.queryPlanner.PlanQueries(ctx, sess.Requirement)
		responseText = reply + constant.ResponseSeparator + queriesPreview(sess.SearchQueries)
	}

	sess.LastResponse = responseText
	return responseText
}

// handleResearching runs the fan-out search pipeline over the queries
// decided at the planning boundary. The pipeline never fails the turn:
// query failures contribute empty payloads and an all-empty outcome is a
// legitimate zero-candidate result.
func (s *advisorService) handleResearching(ctx context.Context, sess *store.SessionState) string {
	results := s.executor.Execute(ctx, sess.SearchQueries)
	sess.Research = s.reducer.Reduce(ctx, sess.Requirement, results)

	s.machine.Advance(state.Evaluation{Session: sess})

	var text string
	if len(sess.Research.Candidates) == 0 {
		text = "My searches did not turn up products matching your requirements. " +
			"I can still summarize what I learned about the market; send a continue turn for the analysis."
	} else {
		text = fmt.Sprintf(
			"I found %d candidate products across %d searches. Send a continue turn and I'll rank them against your requirements.",
			len(sess.Research.Candidates), len(sess.SearchQueries),
		)
	}

	sess.LastResponse = text
	return text
}

func (s *advisorService) handleAnalyzing(ctx context.Context, sess *store.SessionState) string {
	recommendation, analysisReport := s.analyzer.Analyze(ctx, sess.Requirement, sess.Research)
	sess.Recommendation = recommendation
	sess.Report = analysisReport

	s.machine.Advance(state.Evaluation{Session: sess})

	sess.LastResponse = recommendation
	return recommendation
}

func (s *advisorService) logIgnoredContent(sess *store.SessionState, message string) {
	if message != constant.ContinuationMarker {
		s.llmLogger.Printf("[ADVISOR] Ignoring user content during %s phase (session %s)", sess.Phase, sess.ID)
	}
}

func (s *advisorService) publishSaveReport(ctx context.Context, sess *store.SessionState) {
	if s.publisherService == nil || !s.cfg.Report.Enabled {
		return
	}

	payload, err := json.Marshal(dto.SaveReportMessage{SessionID: sess.ID})
	if err != nil {
		s.sysLogger.Error("ADVISOR", "Failed to marshal save-report message", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.sysLogger.Warn("ADVISOR", "Failed to publish save-report message", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

// publishLifecycleEvent emits a session event to NATS when a publisher is
// connected. Event loss is tolerable; the session itself is the source of
// truth.
func (s *advisorService) publishLifecycleEvent(ctx context.Context, eventType string, sess *store.SessionState) {
	if s.eventPublisher == nil {
		return
	}

	if err := s.eventPublisher.Publish(ctx, events.NewSessionEvent(eventType, sess)); err != nil {
		s.sysLogger.Warn("ADVISOR", "Failed to publish lifecycle event", map[string]interface{}{
			"event":      eventType,
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
}

func planningHistory(sess *store.SessionState) []llm.Message {
	messages := make([]llm.Message, 0, len(sess.History))
	for _, m := range sess.History {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

func queriesPreview(queries []string) string {
	var b strings.Builder
	b.WriteString("I'll research with these searches:\n")
	for i, q := range queries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nSend a continue turn when you're ready and I'll run them.")
	return b.String()
}
