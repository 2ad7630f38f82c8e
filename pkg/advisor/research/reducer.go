package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/llm"
	"ai-shopscout-be/pkg/store"
	"ai-shopscout-be/pkg/utils"
)

// Reducer normalizes heterogeneous raw search payloads into the canonical
// candidate/consideration model. It never returns an error: a failed or
// unparseable reduction yields empty lists, because "no products found" is
// a legitimate research outcome and the phase must still advance.
type Reducer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewReducer(llmProvider llm.LLMProvider, logger *log.Logger) *Reducer {
	return &Reducer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (r *Reducer) Reduce(ctx context.Context, record store.RequirementRecord, results []QueryResult) *store.ResearchOutput {
	payloads := 0
	for _, res := range results {
		if res.Payload != "" {
			payloads++
		}
	}
	if payloads == 0 {
		r.logger.Printf("[WARN] Reduction skipped: no search query produced a payload")
		return emptyOutput()
	}

	response, err := r.llmProvider.Generate(ctx, r.composePrompt(record, results), llm.WithMaxTokens(4096))
	if err != nil {
		r.logger.Printf("[WARN] Reduction call failed: %v", err)
		return emptyOutput()
	}

	parsed, err := parseReduction(response)
	if err != nil {
		r.logger.Printf("[WARN] Reduction parse failed: %v", err)
		return emptyOutput()
	}

	return normalize(record, parsed)
}

func (r *Reducer) composePrompt(record store.RequirementRecord, results []QueryResult) string {
	var prompt strings.Builder

	prompt.WriteString("<role>\n")
	prompt.WriteString("You turn raw product search results into a structured candidate list ")
	prompt.WriteString("for a buyer, plus decision factors the buyer has not thought of yet.\n")
	prompt.WriteString("</role>\n\n")

	prompt.WriteString("<requirements>\n")
	prompt.WriteString(requirement.Describe(record))
	prompt.WriteString("\n</requirements>\n\n")

	for _, res := range results {
		if res.Payload == "" {
			continue
		}
		prompt.WriteString(fmt.Sprintf("<search_result query=%q>\n", res.Query))
		prompt.WriteString(res.Payload)
		prompt.WriteString("\n</search_result>\n\n")
	}

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Extract every distinct product model. Models from the same brand are ")
	prompt.WriteString("distinct candidates whenever price, specs or model identity differ.\n")
	prompt.WriteString("2. Set price to null when the results do not state one. Never invent prices.\n")
	prompt.WriteString("3. pros and cons must come from the result content, not general knowledge.\n")
	prompt.WriteString("4. considerations are decision factors the buyer did not mention ")
	prompt.WriteString("(compatibility, running costs, timing) with practical guidance.\n")
	prompt.WriteString("5. market_summary is 2-3 sentences on the overall market picture.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"candidates\": [\n")
	prompt.WriteString("    {\n")
	prompt.WriteString("      \"name\": \"full product name\",\n")
	prompt.WriteString("      \"price\": 999.99 or null,\n")
	prompt.WriteString("      \"currency\": \"USD\",\n")
	prompt.WriteString("      \"url\": \"https://...\",\n")
	prompt.WriteString("      \"specs\": {\"key\": \"value\"},\n")
	prompt.WriteString("      \"pros\": [\"...\"],\n")
	prompt.WriteString("      \"cons\": [\"...\"],\n")
	prompt.WriteString("      \"source\": \"retailer or site name\"\n")
	prompt.WriteString("    }\n")
	prompt.WriteString("  ],\n")
	prompt.WriteString("  \"considerations\": [\n")
	prompt.WriteString("    {\"label\": \"...\", \"rationale\": \"...\", \"guidance\": \"...\"}\n")
	prompt.WriteString("  ],\n")
	prompt.WriteString("  \"market_summary\": \"...\"\n")
	prompt.WriteString("}\n\n")
	prompt.WriteString("IMPORTANT: Output ONLY the JSON. No preamble, no explanation outside the JSON.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseReduction(response string) (*store.ResearchOutput, error) {
	jsonContent := utils.ExtractJSONObject(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed store.ResearchOutput
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	return &parsed, nil
}

// normalize applies the reduction policy: drop unusable entries, apply the
// budget ceiling only when a price is actually known, and dedup on the
// normalized product identity. Identity is name plus source: the same model
// listed by two retailers is two offers. Brand alone never collapses entries.
func normalize(record store.RequirementRecord, parsed *store.ResearchOutput) *store.ResearchOutput {
	out := &store.ResearchOutput{
		Candidates:     make([]store.CandidateProduct, 0, len(parsed.Candidates)),
		Considerations: make([]store.ConsiderationItem, 0, len(parsed.Considerations)),
		MarketSummary:  strings.TrimSpace(parsed.MarketSummary),
	}

	seen := make(map[string]bool, len(parsed.Candidates))
	for _, c := range parsed.Candidates {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if c.Price != nil && *c.Price < 0 {
			continue
		}
		if c.Price != nil && record.BudgetMax != nil && *c.Price > *record.BudgetMax {
			continue
		}

		identity := normalizeIdentity(c.Name) + "|" + normalizeIdentity(c.Source)
		if seen[identity] {
			continue
		}
		seen[identity] = true

		out.Candidates = append(out.Candidates, c)
	}

	for _, item := range parsed.Considerations {
		if strings.TrimSpace(item.Label) == "" {
			continue
		}
		out.Considerations = append(out.Considerations, item)
	}

	return out
}

// normalizeIdentity reduces a name or source to its lowercased alphanumeric
// core so that formatting differences do not split one listing into two.
func normalizeIdentity(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func emptyOutput() *store.ResearchOutput {
	return &store.ResearchOutput{
		Candidates:     []store.CandidateProduct{},
		Considerations: []store.ConsiderationItem{},
	}
}
