package research

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

const (
	minQueries = 3
	maxQueries = 5
)

// Retailers used for site-scoped fallback queries.
var fallbackRetailers = []string{"amazon.com", "bestbuy.com", "walmart.com"}

// QueryPlanner turns a completed requirement record into the ordered
// search-query list. The primary path asks the LLM; anything short of a
// clean 3-to-5 query answer falls back to a deterministic set built from
// the record, so a query list is always produced.
type QueryPlanner struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewQueryPlanner(llmProvider llm.LLMProvider, logger *log.Logger) *QueryPlanner {
	return &QueryPlanner{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (q *QueryPlanner) PlanQueries(ctx context.Context, record store.RequirementRecord) []string {
	response, err := q.llmProvider.Generate(ctx, q.composePrompt(record), llm.WithTemperature(0.3))
	if err != nil {
		q.logger.Printf("[WARN] Query planning failed, using fallback queries: %v", err)
		return fallbackQueries(record)
	}

	queries, err := parseQueries(response)
	if err != nil {
		q.logger.Printf("[WARN] Query plan parse failed, using fallback queries: %v", err)
		return fallbackQueries(record)
	}

	return queries
}

func (q *QueryPlanner) composePrompt(record store.RequirementRecord) string {
	var prompt strings.Builder

	prompt.WriteString("<role>\n")
	prompt.WriteString("You plan web search queries for consumer product research.\n")
	prompt.WriteString("</role>\n\n")

	prompt.WriteString("<requirements>\n")
	prompt.WriteString(requirement.Describe(record))
	prompt.WriteString("\n</requirements>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString(fmt.Sprintf("1. Produce between %d and %d queries.\n", minQueries, maxQueries))
	prompt.WriteString("2. Each query must be a short, concrete shopping search string.\n")
	prompt.WriteString("3. Cover different angles: budget-capped search, use-case search, ")
	prompt.WriteString("and at least one retailer-scoped search (site:amazon.com etc).\n")
	prompt.WriteString("4. Order from broadest to most specific.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY a valid JSON array of strings:\n\n")
	prompt.WriteString("[\"query one\", \"query two\", \"query three\"]\n\n")
	prompt.WriteString("IMPORTANT: Output ONLY the JSON array. No preamble, no explanation.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseQueries(response string) ([]string, error) {
	jsonContent := utils.ExtractJSONArray(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var raw []string
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	queries := make([]string, 0, len(raw))
	for _, q := range raw {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}

	if len(queries) < minQueries || len(queries) > maxQueries {
		return nil, fmt.Errorf("expected %d-%d queries, got %d", minQueries, maxQueries, len(queries))
	}

	return queries, nil
}

// fallbackQueries builds a deterministic query set from the record alone:
// base terms from category and short spec values, a budget-capped variant,
// a use-case variant, then retailer-scoped variants, capped at maxQueries.
func fallbackQueries(record store.RequirementRecord) []string {
	category := ""
	if record.Category != nil {
		category = strings.TrimSpace(*record.Category)
	}

	base := category
	for _, key := range sortedSpecKeys(record.Specs) {
		value := strings.TrimSpace(record.Specs[key])
		if value == "" || len(strings.Fields(value)) > 4 {
			continue
		}
		base += " " + value
		if len(strings.Fields(base)) >= 6 {
			break
		}
	}

	var queries []string
	if record.BudgetMax != nil {
		queries = append(queries, fmt.Sprintf("%s under $%.0f", base, *record.BudgetMax))
	}
	if record.UseCase != nil {
		queries = append(queries, fmt.Sprintf("best %s for %s", category, strings.TrimSpace(*record.UseCase)))
	}
	for _, retailer := range fallbackRetailers {
		queries = append(queries, fmt.Sprintf("site:%s %s", retailer, base))
	}

	queries = dedupeQueries(queries)
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	for len(queries) < minQueries {
		queries = append(queries, fmt.Sprintf("%s reviews %d", base, len(queries)))
	}

	return queries
}

func dedupeQueries(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := queries[:0]
	for _, q := range queries {
		key := strings.ToLower(strings.TrimSpace(q))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

func sortedSpecKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
