package planning

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/llm"
	"ai-shopscout-be/pkg/store"
	"ai-shopscout-be/pkg/utils"
)

// Extractor pulls a structured requirement fragment out of the latest
// dialogue exchange. It is a fallible parse boundary: any LLM or parse
// failure means "no fragment this turn", never an error that escapes
// into orchestration.
type Extractor struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewExtractor(llmProvider llm.LLMProvider, logger *log.Logger) *Extractor {
	return &Extractor{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Extract returns the fragment parsed from the exchange and true, or a
// zero fragment and false when nothing usable could be extracted.
func (e *Extractor) Extract(
	ctx context.Context,
	record store.RequirementRecord,
	userMessage string,
	assistantReply string,
) (store.RequirementFragment, bool) {

	prompt := e.composePrompt(record, userMessage, assistantReply)

	response, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		e.logger.Printf("[WARN] Requirement extraction failed: %v", err)
		return store.RequirementFragment{}, false
	}

	jsonContent := utils.ExtractJSONObject(response)
	if jsonContent == "" {
		e.logger.Printf("[WARN] Requirement extraction returned no JSON")
		return store.RequirementFragment{}, false
	}

	var frag store.RequirementFragment
	if err := json.Unmarshal([]byte(jsonContent), &frag); err != nil {
		e.logger.Printf("[WARN] Requirement fragment parse failed: %v", err)
		return store.RequirementFragment{}, false
	}

	return sanitize(frag), true
}

func (e *Extractor) composePrompt(record store.RequirementRecord, userMessage, assistantReply string) string {
	var prompt strings.Builder

	prompt.WriteString("<role>\n")
	prompt.WriteString("You extract purchase requirements from a shopping conversation.\n")
	prompt.WriteString("</role>\n\n")

	prompt.WriteString("<known_requirements>\n")
	prompt.WriteString(requirement.Describe(record))
	prompt.WriteString("\n</known_requirements>\n\n")

	prompt.WriteString("<latest_exchange>\n")
	prompt.WriteString("User said: \"")
	prompt.WriteString(userMessage)
	prompt.WriteString("\"\n")
	if assistantReply != "" {
		prompt.WriteString("Assistant replied: \"")
		prompt.WriteString(assistantReply)
		prompt.WriteString("\"\n")
	}
	prompt.WriteString("</latest_exchange>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Extract ONLY what this exchange states or clearly implies.\n")
	prompt.WriteString("2. Use null for every field the exchange says nothing about. Never guess.\n")
	prompt.WriteString("3. Budget values are plain numbers in the buyer's currency.\n")
	prompt.WriteString("4. specs holds concrete wants (e.g. \"ram\": \"32GB\"); constraints holds ")
	prompt.WriteString("limits and dislikes (e.g. \"weight\": \"under 2kg\").\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"category\": \"string or null\",\n")
	prompt.WriteString("  \"budget_min\": number or null,\n")
	prompt.WriteString("  \"budget_max\": number or null,\n")
	prompt.WriteString("  \"use_case\": \"string or null\",\n")
	prompt.WriteString("  \"specs\": {\"key\": \"value\"} or null,\n")
	prompt.WriteString("  \"constraints\": {\"key\": \"value\"} or null,\n")
	prompt.WriteString("  \"brands\": [\"brand\"] or null\n")
	prompt.WriteString("}\n\n")
	prompt.WriteString("IMPORTANT: Output ONLY the JSON. No preamble, no explanation outside the JSON.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

// sanitize drops values that would be rejected by the merge rules anyway:
// blank strings and non-positive budget numbers are treated as absent.
func sanitize(frag store.RequirementFragment) store.RequirementFragment {
	if frag.Category != nil && strings.TrimSpace(*frag.Category) == "" {
		frag.Category = nil
	}
	if frag.UseCase != nil && strings.TrimSpace(*frag.UseCase) == "" {
		frag.UseCase = nil
	}
	if frag.BudgetMin != nil && *frag.BudgetMin <= 0 {
		frag.BudgetMin = nil
	}
	if frag.BudgetMax != nil && *frag.BudgetMax <= 0 {
		frag.BudgetMax = nil
	}

	brands := frag.Brands[:0]
	for _, b := range frag.Brands {
		if strings.TrimSpace(b) != "" {
			brands = append(brands, b)
		}
	}
	frag.Brands = brands

	return frag
}
