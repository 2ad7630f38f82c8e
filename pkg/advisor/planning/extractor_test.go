package planning

import (
	"context"
	"fmt"
	"testing"

	"ai-shopscout-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func TestExtract_ParsesFragment(t *testing.T) {
	provider := &fakeLLM{
		response: "```json\n" + `{
			"category": "laptop",
			"budget_min": null,
			"budget_max": 1500,
			"use_case": "video editing",
			"specs": {"ram": "32GB"},
			"constraints": {"weight": "under 2kg"},
			"brands": ["Lenovo", "ASUS"]
		}` + "\n```",
	}
	e := NewExtractor(provider, testLogger())

	frag, ok := e.Extract(context.Background(), store.RequirementRecord{},
		"I want a laptop for video editing, 32GB RAM, under $1500, ideally Lenovo or ASUS, lighter than 2kg",
		"Got it, noting all of that down.")

	assert.True(t, ok)
	assert.Equal(t, "laptop", *frag.Category)
	assert.Nil(t, frag.BudgetMin)
	assert.Equal(t, 1500.0, *frag.BudgetMax)
	assert.Equal(t, "video editing", *frag.UseCase)
	assert.Equal(t, "32GB", frag.Specs["ram"])
	assert.Equal(t, "under 2kg", frag.Constraints["weight"])
	assert.Equal(t, []string{"Lenovo", "ASUS"}, frag.Brands)
}

func TestExtract_EmptyObjectIsValidEmptyFragment(t *testing.T) {
	provider := &fakeLLM{response: `{}`}
	e := NewExtractor(provider, testLogger())

	frag, ok := e.Extract(context.Background(), store.RequirementRecord{}, "hmm let me think", "")

	assert.True(t, ok)
	assert.Equal(t, store.RequirementFragment{}, frag)
}

func TestExtract_FailsOnLLMError(t *testing.T) {
	provider := &fakeLLM{err: fmt.Errorf("connection refused")}
	e := NewExtractor(provider, testLogger())

	frag, ok := e.Extract(context.Background(), store.RequirementRecord{}, "anything", "")

	assert.False(t, ok)
	assert.Equal(t, store.RequirementFragment{}, frag)
}

func TestExtract_FailsOnUnparseableOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "prose without json", response: "The user seems to want a laptop."},
		{name: "broken json", response: `{"category": "laptop", "budget_max": }`},
		{name: "empty response", response: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(&fakeLLM{response: tt.response}, testLogger())

			frag, ok := e.Extract(context.Background(), store.RequirementRecord{}, "msg", "")

			assert.False(t, ok)
			assert.Equal(t, store.RequirementFragment{}, frag)
		})
	}
}

func TestExtract_SanitizesInvalidValues(t *testing.T) {
	provider := &fakeLLM{
		response: `{"category": "  ", "budget_min": -50, "budget_max": 0, "use_case": "", "brands": ["", "Sony"]}`,
	}
	e := NewExtractor(provider, testLogger())

	frag, ok := e.Extract(context.Background(), store.RequirementRecord{}, "msg", "")

	assert.True(t, ok)
	assert.Nil(t, frag.Category)
	assert.Nil(t, frag.BudgetMin)
	assert.Nil(t, frag.BudgetMax)
	assert.Nil(t, frag.UseCase)
	assert.Equal(t, []string{"Sony"}, frag.Brands)
}
