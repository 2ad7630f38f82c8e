package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"ai-shopscout-be/pkg/advisor/requirement"
	"ai-shopscout-be/pkg/llm"
	"ai-shopscout-be/pkg/store"
	"ai-shopscout-be/pkg/utils"
)

// maxRankedEntries caps how many products the final report ranks.
const maxRankedEntries = 5

// Analyzer turns the research output into a ranked report plus a short
// conversational recommendation. It never returns an error: an empty
// candidate list and an LLM failure each have a documented degraded
// output, so the analyzing phase always completes.
type Analyzer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewAnalyzer(llmProvider llm.LLMProvider, logger *log.Logger) *Analyzer {
	return &Analyzer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// analysisReply is the structured shape the model is asked for.
type analysisReply struct {
	Recommendation string                `json:"recommendation"`
	Entries        []store.RankedProduct `json:"entries"`
	Summary        string                `json:"summary"`
}

func (a *Analyzer) Analyze(
	ctx context.Context,
	record store.RequirementRecord,
	research *store.ResearchOutput,
) (string, *store.AnalysisReport) {

	if research == nil || len(research.Candidates) == 0 {
		return a.noProducts(record)
	}

	response, err := a.llmProvider.Generate(ctx, a.composePrompt(record, research), llm.WithMaxTokens(4096))
	if err != nil {
		a.logger.Printf("[WARN] Analysis call failed, falling back to price ranking: %v", err)
		return a.degraded(research.Candidates)
	}

	parsed, err := parseAnalysis(response)
	if err != nil {
		a.logger.Printf("[WARN] Analysis parse failed, falling back to price ranking: %v", err)
		return a.degraded(research.Candidates)
	}

	report := &store.AnalysisReport{
		Entries: normalizeEntries(parsed.Entries),
		Summary: strings.TrimSpace(parsed.Summary),
	}
	return strings.TrimSpace(parsed.Recommendation), report
}

func (a *Analyzer) composePrompt(record store.RequirementRecord, research *store.ResearchOutput) string {
	var prompt strings.Builder

	prompt.WriteString("<role>\n")
	prompt.WriteString("You are an expert product analyst writing a buying recommendation.\n")
	prompt.WriteString("</role>\n\n")

	prompt.WriteString("<requirements>\n")
	prompt.WriteString(requirement.Describe(record))
	prompt.WriteString("\n</requirements>\n\n")

	prompt.WriteString("<candidates>\n")
	for i, c := range research.Candidates {
		prompt.WriteString(fmt.Sprintf("Candidate %d: %s\n", i+1, c.Name))
		if c.Price != nil {
			prompt.WriteString(fmt.Sprintf("  price: %.2f %s\n", *c.Price, orDefault(c.Currency, "USD")))
		} else {
			prompt.WriteString("  price: not found\n")
		}
		if c.Source != "" {
			prompt.WriteString("  source: " + c.Source + "\n")
		}
		for _, key := range sortedKeys(c.Specs) {
			prompt.WriteString(fmt.Sprintf("  %s: %s\n", key, c.Specs[key]))
		}
		if len(c.Pros) > 0 {
			prompt.WriteString("  pros: " + strings.Join(c.Pros, "; ") + "\n")
		}
		if len(c.Cons) > 0 {
			prompt.WriteString("  cons: " + strings.Join(c.Cons, "; ") + "\n")
		}
	}
	prompt.WriteString("</candidates>\n\n")

	if len(research.Considerations) > 0 {
		prompt.WriteString("<considerations>\n")
		for _, item := range research.Considerations {
			prompt.WriteString(fmt.Sprintf("- %s: %s\n", item.Label, item.Rationale))
		}
		prompt.WriteString("</considerations>\n\n")
	}

	prompt.WriteString("<rules>\n")
	prompt.WriteString(fmt.Sprintf("1. Rank at most the top %d candidates against the requirements.\n", maxRankedEntries))
	prompt.WriteString("2. Score 0-100 on requirement match, value for money and drawbacks.\n")
	prompt.WriteString("3. The recommendation is a short conversational message naming your top ")
	prompt.WriteString("pick, the runner-up, and the single most important consideration.\n")
	prompt.WriteString("4. Only rank products from the candidate list. Never invent products.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON in this exact structure:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"recommendation\": \"conversational recommendation for the buyer\",\n")
	prompt.WriteString("  \"entries\": [\n")
	prompt.WriteString("    {\n")
	prompt.WriteString("      \"name\": \"product name\",\n")
	prompt.WriteString("      \"rank\": 1,\n")
	prompt.WriteString("      \"score\": 87.5,\n")
	prompt.WriteString("      \"verdict\": \"one-line verdict\",\n")
	prompt.WriteString("      \"pros\": [\"...\"],\n")
	prompt.WriteString("      \"cons\": [\"...\"]\n")
	prompt.WriteString("    }\n")
	prompt.WriteString("  ],\n")
	prompt.WriteString("  \"summary\": \"2-3 sentence overall summary\"\n")
	prompt.WriteString("}\n\n")
	prompt.WriteString("IMPORTANT: Output ONLY the JSON. No preamble, no explanation outside the JSON.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseAnalysis(response string) (*analysisReply, error) {
	jsonContent := utils.ExtractJSONObject(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed analysisReply
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	if strings.TrimSpace(parsed.Recommendation) == "" {
		return nil, fmt.Errorf("empty recommendation in response")
	}

	return &parsed, nil
}

// normalizeEntries drops nameless rows, orders by the model's ranking and
// reassigns ranks 1..n so gaps or duplicates in model output cannot leak
// into the report.
func normalizeEntries(entries []store.RankedProduct) []store.RankedProduct {
	out := make([]store.RankedProduct, 0, len(entries))
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if len(out) > maxRankedEntries {
		out = out[:maxRankedEntries]
	}
	for i := range out {
		out[i].Rank = i + 1
	}

	return out
}

// noProducts is the deterministic outcome for an empty candidate list.
// It is a legitimate result, not a degraded one.
func (a *Analyzer) noProducts(record store.RequirementRecord) (string, *store.AnalysisReport) {
	category := "this category"
	if record.Category != nil {
		category = *record.Category
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("I didn't find any %s matching your requirements. ", category))
	msg.WriteString("That usually means the budget is tight for the feature set, or the combination of requirements is niche. ")
	msg.WriteString("You could raise the budget a little, relax one of the must-haves, or start a new session with adjusted requirements.")

	report := &store.AnalysisReport{
		Entries: []store.RankedProduct{},
		Summary: "No matching products were found.",
	}
	return msg.String(), report
}

// degraded ranks whatever candidates exist by ascending price (unknown
// prices last, original order preserved among equals) and flags the
// report so callers can tell it apart from a full analysis.
func (a *Analyzer) degraded(candidates []store.CandidateProduct) (string, *store.AnalysisReport) {
	ranked := make([]store.CandidateProduct, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Price, ranked[j].Price
		if pi == nil {
			return false
		}
		if pj == nil {
			return true
		}
		return *pi < *pj
	})
	if len(ranked) > maxRankedEntries {
		ranked = ranked[:maxRankedEntries]
	}

	entries := make([]store.RankedProduct, 0, len(ranked))
	for i, c := range ranked {
		entries = append(entries, store.RankedProduct{
			Name: c.Name,
			Rank: i + 1,
			Pros: c.Pros,
			Cons: c.Cons,
		})
	}

	var msg strings.Builder
	msg.WriteString("I couldn't complete the full analysis, so here are the matches ordered by price. ")
	msg.WriteString(fmt.Sprintf("The most affordable option is %s", ranked[0].Name))
	if ranked[0].Price != nil {
		msg.WriteString(fmt.Sprintf(" at %.2f", *ranked[0].Price))
	}
	if len(ranked) > 1 {
		msg.WriteString(fmt.Sprintf(", followed by %s", ranked[1].Name))
	}
	msg.WriteString(". Check the report for the full list.")

	report := &store.AnalysisReport{
		Entries:  entries,
		Summary:  "Candidates ranked by price; detailed analysis was unavailable.",
		Degraded: true,
	}
	return msg.String(), report
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
