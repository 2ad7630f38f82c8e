package analysis

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

func laptopRecord() store.RequirementRecord {
	return store.RequirementRecord{
		Category:  strPtr("laptop"),
		BudgetMax: f64Ptr(1500),
		UseCase:   strPtr("video editing"),
	}
}

func threeCandidates() *store.ResearchOutput {
	return &store.ResearchOutput{
		Candidates: []store.CandidateProduct{
			{Name: "Budget Book", Price: f64Ptr(899)},
			{Name: "Mystery Book", Price: nil},
			{Name: "Value Book", Price: f64Ptr(1199)},
		},
	}
}

func TestAnalyze_ParsesRankedReport(t *testing.T) {
	provider := &fakeLLM{
		response: `{
			"recommendation": "Go with the Value Book; it has the best balance for editing.",
			"entries": [
				{"name": "Budget Book", "rank": 7, "score": 61, "verdict": "Cheap but slow"},
				{"name": "Value Book", "rank": 2, "score": 88, "verdict": "Best balance"},
				{"name": "  ", "rank": 1}
			],
			"summary": "Two strong options under budget."
		}`,
	}
	a := NewAnalyzer(provider, testLogger())

	rec, report := a.Analyze(context.Background(), laptopRecord(), threeCandidates())

	assert.Equal(t, "Go with the Value Book; it has the best balance for editing.", rec)
	assert.False(t, report.Degraded)
	assert.Equal(t, "Two strong options under budget.", report.Summary)

	// The nameless row is gone and ranks are renumbered in model order.
	assert.Len(t, report.Entries, 2)
	assert.Equal(t, "Value Book", report.Entries[0].Name)
	assert.Equal(t, 1, report.Entries[0].Rank)
	assert.Equal(t, "Budget Book", report.Entries[1].Name)
	assert.Equal(t, 2, report.Entries[1].Rank)
}

func TestAnalyze_EmptyCandidatesIsContentNotError(t *testing.T) {
	provider := &fakeLLM{response: "should never be called"}
	a := NewAnalyzer(provider, testLogger())

	rec, report := a.Analyze(context.Background(), laptopRecord(), &store.ResearchOutput{
		Candidates: []store.CandidateProduct{},
	})

	assert.Zero(t, provider.calls)
	assert.Contains(t, rec, "didn't find any laptop")
	assert.False(t, report.Degraded)
	assert.Empty(t, report.Entries)
	assert.NotNil(t, report.Entries)
}

func TestAnalyze_NilResearchTreatedAsEmpty(t *testing.T) {
	a := NewAnalyzer(&fakeLLM{}, testLogger())

	rec, report := a.Analyze(context.Background(), store.RequirementRecord{}, nil)

	assert.Contains(t, rec, "didn't find any")
	assert.NotNil(t, report)
}

func TestAnalyze_DegradedRanksByPriceAscending(t *testing.T) {
	provider := &fakeLLM{err: fmt.Errorf("model unavailable")}
	a := NewAnalyzer(provider, testLogger())

	rec, report := a.Analyze(context.Background(), laptopRecord(), threeCandidates())

	assert.True(t, report.Degraded)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, "Budget Book", report.Entries[0].Name)
	assert.Equal(t, "Value Book", report.Entries[1].Name)
	// Unknown price sorts last.
	assert.Equal(t, "Mystery Book", report.Entries[2].Name)
	assert.Equal(t, []int{1, 2, 3}, []int{
		report.Entries[0].Rank,
		report.Entries[1].Rank,
		report.Entries[2].Rank,
	})

	assert.Contains(t, rec, "Budget Book")
	assert.Contains(t, rec, "899")
}

func TestAnalyze_DegradedOnUnparseableOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "prose", response: "The Value Book seems nice."},
		{name: "broken json", response: `{"recommendation": }`},
		{name: "empty recommendation", response: `{"recommendation": "  ", "entries": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(&fakeLLM{response: tt.response}, testLogger())

			_, report := a.Analyze(context.Background(), laptopRecord(), threeCandidates())

			assert.True(t, report.Degraded)
			assert.NotEmpty(t, report.Entries)
		})
	}
}

func TestAnalyze_PromptCarriesCandidatesAndRequirements(t *testing.T) {
	provider := &fakeLLM{
		response: `{"recommendation": "ok", "entries": [], "summary": ""}`,
	}
	a := NewAnalyzer(provider, testLogger())

	research := threeCandidates()
	research.Considerations = []store.ConsiderationItem{
		{Label: "Thermals", Rationale: "Sustained load matters for rendering"},
	}

	a.Analyze(context.Background(), laptopRecord(), research)

	assert.Contains(t, provider.lastSent, "laptop")
	assert.Contains(t, provider.lastSent, "Budget Book")
	assert.Contains(t, provider.lastSent, "price: not found")
	assert.Contains(t, provider.lastSent, "Thermals")
}
