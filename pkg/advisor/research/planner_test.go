package research

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"ai-shopscout-be/pkg/llm"
	"ai-shopscout-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

// fakeLLM returns a fixed response or error and counts calls.
type fakeLLM struct {
	response string
	err      error
	calls    int
	lastSent string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	if len(history) > 0 {
		f.lastSent = history[len(history)-1].Content
	}
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func fullRecord() store.RequirementRecord {
	return store.RequirementRecord{
		Category:  strPtr("laptop"),
		BudgetMax: f64Ptr(1500),
		UseCase:   strPtr("video editing"),
		Specs:     map[string]string{"ram": "32GB"},
	}
}

func TestPlanQueries_UsesLLMQueries(t *testing.T) {
	provider := &fakeLLM{
		response: `["laptop 32GB under $1500", "best video editing laptop 2025", "site:amazon.com laptop 32GB", "laptop color accurate display"]`,
	}
	q := NewQueryPlanner(provider, testLogger())

	queries := q.PlanQueries(context.Background(), fullRecord())

	assert.Equal(t, []string{
		"laptop 32GB under $1500",
		"best video editing laptop 2025",
		"site:amazon.com laptop 32GB",
		"laptop color accurate display",
	}, queries)
}

func TestPlanQueries_TrimsAndDropsBlankEntries(t *testing.T) {
	provider := &fakeLLM{
		response: "```json\n[\" laptop deals \", \"\", \"best laptops\", \"site:amazon.com laptop\"]\n```",
	}
	q := NewQueryPlanner(provider, testLogger())

	queries := q.PlanQueries(context.Background(), fullRecord())

	assert.Equal(t, []string{"laptop deals", "best laptops", "site:amazon.com laptop"}, queries)
}

func TestPlanQueries_FallbackOnLLMError(t *testing.T) {
	provider := &fakeLLM{err: fmt.Errorf("boom")}
	q := NewQueryPlanner(provider, testLogger())

	queries := q.PlanQueries(context.Background(), fullRecord())

	assert.Equal(t, []string{
		"laptop 32GB under $1500",
		"best laptop for video editing",
		"site:amazon.com laptop 32GB",
		"site:bestbuy.com laptop 32GB",
		"site:walmart.com laptop 32GB",
	}, queries)
}

func TestPlanQueries_FallbackOnOutOfRangeCount(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "too few", response: `["one", "two"]`},
		{name: "too many", response: `["1", "2", "3", "4", "5", "6"]`},
		{name: "array of objects", response: `[{"q": "a"}, {"q": "b"}, {"q": "c"}]`},
		{name: "garbage", response: "no structure at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueryPlanner(&fakeLLM{response: tt.response}, testLogger())

			queries := q.PlanQueries(context.Background(), fullRecord())

			assert.Len(t, queries, 5)
			assert.Equal(t, "laptop 32GB under $1500", queries[0])
		})
	}
}

func TestFallbackQueries_Deterministic(t *testing.T) {
	record := fullRecord()
	assert.Equal(t, fallbackQueries(record), fallbackQueries(record))
}

func TestFallbackQueries_SparseRecordStillYieldsMinimum(t *testing.T) {
	record := store.RequirementRecord{Category: strPtr("laptop")}

	queries := fallbackQueries(record)

	assert.GreaterOrEqual(t, len(queries), minQueries)
	assert.LessOrEqual(t, len(queries), maxQueries)
	assert.Equal(t, "site:amazon.com laptop", queries[0])
}

func TestFallbackQueries_SkipsLongSpecValues(t *testing.T) {
	record := store.RequirementRecord{
		Category:  strPtr("camera"),
		BudgetMax: f64Ptr(800),
		Specs: map[string]string{
			"notes": "something very long that is definitely not a search term",
			"lens":  "35mm",
		},
	}

	queries := fallbackQueries(record)

	assert.Equal(t, "camera 35mm under $800", queries[0])
}
