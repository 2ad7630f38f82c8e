package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "bare object",
			response: `{"status": "ready"}`,
			want:     `{"status": "ready"}`,
		},
		{
			name:     "fenced with language tag",
			response: "```json\n{\"status\": \"ready\"}\n```",
			want:     `{"status": "ready"}`,
		},
		{
			name:     "fenced without language tag",
			response: "```\n{\"status\": \"ready\"}\n```",
			want:     `{"status": "ready"}`,
		},
		{
			name:     "prose around the object",
			response: "Sure, here is the result:\n{\"status\": \"ready\"}\nLet me know if you need more.",
			want:     `{"status": "ready"}`,
		},
		{
			name:     "nested braces stay intact",
			response: `prefix {"outer": {"inner": 1}} suffix`,
			want:     `{"outer": {"inner": 1}}`,
		},
		{
			name:     "no object at all",
			response: "I could not produce a structured answer.",
			want:     "",
		},
		{
			name:     "braces in wrong order",
			response: "} nothing here {",
			want:     "",
		},
		{
			name:     "empty input",
			response: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.response))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "bare array",
			response: `["a", "b"]`,
			want:     `["a", "b"]`,
		},
		{
			name:     "fenced array with prose",
			response: "Here you go:\n```json\n[\"a\", \"b\"]\n```",
			want:     `["a", "b"]`,
		},
		{
			name:     "array of objects",
			response: `[{"name": "x"}, {"name": "y"}]`,
			want:     `[{"name": "x"}, {"name": "y"}]`,
		},
		{
			name:     "no array",
			response: "nothing structured",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONArray(tt.response))
		})
	}
}
