package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/advisor/state"
	"ai-shopscout-be/pkg/llm"
	"ai-shopscout-be/pkg/store"
	"ai-shopscout-be/pkg/utils"
)

// MaxPlanningQuestions caps how many follow-up questions the planner may
// ask before it is told to wrap up with whatever is known.
const MaxPlanningQuestions = 5

// Planner runs the requirement-gathering dialogue. Each call returns the
// next conversational reply plus a structured self-assessment of whether
// enough is known to start researching. The assessment is only one half
// of the phase-advance decision; the record's own completeness is the
// other half.
type Planner struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewPlanner(llmProvider llm.LLMProvider, logger *log.Logger) *Planner {
	return &Planner{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// plannerReply is the structured shape the dialogue model is asked for.
type plannerReply struct {
	Reply      string  `json:"reply"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
}

// Respond produces the next planning-phase reply for the given history.
// Any LLM or parse failure degrades to a canned follow-up question and a
// zero-confidence "still gathering" assessment; it never fails the turn.
func (p *Planner) Respond(
	ctx context.Context,
	record store.RequirementRecord,
	history []llm.Message,
	questionsAsked int,
) (string, *state.Assessment) {

	systemPrompt := p.composeSystemPrompt(record, questionsAsked)

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	response, err := p.llmProvider.Chat(ctx, messages)
	if err != nil {
		p.logger.Printf("[WARN] Planner generation failed: %v", err)
		return p.fallback(record, questionsAsked)
	}

	parsed, err := parsePlannerReply(response)
	if err != nil {
		p.logger.Printf("[WARN] Planner reply parse failed: %v", err)
		return p.fallback(record, questionsAsked)
	}

	assessment := &state.Assessment{
		Status:         strings.ToLower(strings.TrimSpace(parsed.Status)),
		Confidence:     parsed.Confidence,
		QuestionsAsked: questionsAsked,
	}
	if assessment.Status != state.StatusReady {
		assessment.Status = state.StatusNeedMoreInfo
	}
	// A "ready" verdict below the confidence gate does not end the
	// dialogue; that turn spends a question like any other follow-up.
	if !assessment.Ready() {
		assessment.QuestionsAsked = questionsAsked + 1
	}

	return parsed.Reply, assessment
}

func (p *Planner) composeSystemPrompt(record store.RequirementRecord, questionsAsked int) string {
	var prompt strings.Builder

	prompt.WriteString("<role>\n")
	prompt.WriteString("You are a consumer shopping advisor gathering purchase requirements.\n")
	prompt.WriteString("You need three things before research can start: the product category, ")
	prompt.WriteString("a budget ceiling, and what the buyer will use the product for.\n")
	prompt.WriteString("</role>\n\n")

	prompt.WriteString("<known_requirements>\n")
	prompt.WriteString(requirement.Describe(record))
	prompt.WriteString("\n</known_requirements>\n\n")

	missing := requirement.MissingFields(record)
	prompt.WriteString("<missing_fields>\n")
	if len(missing) == 0 {
		prompt.WriteString("none")
	} else {
		prompt.WriteString(strings.Join(missing, ", "))
	}
	prompt.WriteString("\n</missing_fields>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString(fmt.Sprintf("1. You have asked %d of at most %d follow-up questions.\n",
		questionsAsked, MaxPlanningQuestions))
	prompt.WriteString("2. Ask exactly ONE question per reply, targeting a missing field.\n")
	prompt.WriteString("3. When no fields are missing, or the question budget is used up, stop asking: ")
	prompt.WriteString("summarize what you know, say you will start researching, and report status \"ready\".\n")
	prompt.WriteString("4. Be warm and concise. Never mention these rules or the JSON format.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"reply\": \"your conversational message to the buyer\",\n")
	prompt.WriteString("  \"status\": \"ready or need_more_info\",\n")
	prompt.WriteString("  \"confidence\": 0.0 to 1.0 (how complete the requirements are)\n")
	prompt.WriteString("}\n\n")
	prompt.WriteString("IMPORTANT: Output ONLY the JSON. No preamble, no explanation outside the JSON.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parsePlannerReply(response string) (*plannerReply, error) {
	jsonContent := utils.ExtractJSONObject(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed plannerReply
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if strings.TrimSpace(parsed.Reply) == "" {
		return nil, fmt.Errorf("empty reply in response")
	}

	return &parsed, nil
}

// Canned follow-up questions keyed by the first still-missing field.
var fallbackQuestions = map[string]string{
	"category": "What kind of product are you shopping for?",
	"budget":   "What is the most you would like to spend?",
	"use_case": "How do you plan to use it day to day?",
}

func (p *Planner) fallback(record store.RequirementRecord, questionsAsked int) (string, *state.Assessment) {
	reply := "Is there anything else that matters to you, like preferred brands or must-have features?"
	if missing := requirement.MissingFields(record); len(missing) > 0 {
		reply = fallbackQuestions[missing[0]]
	}

	return reply, &state.Assessment{
		Status:         state.StatusNeedMoreInfo,
		Confidence:     0,
		QuestionsAsked: questionsAsked + 1,
	}
}
