package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		wantMissing []string
	}{
		{
			name: "anthropic and serpapi fully keyed",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "anthropic"},
				Search: SearchConfig{Provider: "serpapi"},
				Keys:   APIKeys{Anthropic: "k", SerpAPI: "k"},
			},
		},
		{
			name: "anthropic key missing",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "anthropic"},
				Search: SearchConfig{Provider: "serpapi"},
				Keys:   APIKeys{SerpAPI: "k"},
			},
			wantMissing: []string{"ANTHROPIC_API_KEY"},
		},
		{
			name: "gemini key missing",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "gemini"},
				Search: SearchConfig{Provider: "serpapi"},
				Keys:   APIKeys{SerpAPI: "k"},
			},
			wantMissing: []string{"GOOGLE_GEMINI_API_KEY"},
		},
		{
			name: "huggingface key missing",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "huggingface"},
				Search: SearchConfig{Provider: "serpapi"},
				Keys:   APIKeys{SerpAPI: "k"},
			},
			wantMissing: []string{"HUGGINGFACE_API_KEY"},
		},
		{
			name: "ollama needs no llm key",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "ollama"},
				Search: SearchConfig{Provider: "serpapi"},
				Keys:   APIKeys{SerpAPI: "k"},
			},
		},
		{
			name: "perplexity key missing",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "ollama"},
				Search: SearchConfig{Provider: "perplexity"},
			},
			wantMissing: []string{"PERPLEXITY_API_KEY"},
		},
		{
			name: "both providers unkeyed",
			cfg: Config{
				Ai:     AIConfig{LLMProvider: "anthropic"},
				Search: SearchConfig{Provider: "serpapi"},
			},
			wantMissing: []string{"ANTHROPIC_API_KEY", "SERPAPI_API_KEY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, name := range tt.wantMissing {
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("SESSION_TTL_MINUTES", "15")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MODEL", "gemini-2.0-flash")
	t.Setenv("SEARCH_PROVIDER", "perplexity")
	t.Setenv("SAVE_REPORTS", "false")
	t.Setenv("REPORTS_DIR", "out/reports")
	t.Setenv("SAVE_REPORT_TOPIC_NAME", "REPORT_TOPIC")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg := Load()

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "gemini", cfg.Ai.LLMProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Ai.LLMModel)
	assert.Equal(t, "perplexity", cfg.Search.Provider)
	assert.False(t, cfg.Report.Enabled)
	assert.Equal(t, "out/reports", cfg.Report.Dir)
	assert.Equal(t, "REPORT_TOPIC", cfg.Keys.ReportTopicName)
	assert.Equal(t, "redis://cache:6379", cfg.App.RedisURL)
}

func TestEnvParsingFallbacks(t *testing.T) {
	t.Setenv("ADVISOR_TEST_INT", "not-a-number")
	assert.Equal(t, 60, getEnvAsInt("ADVISOR_TEST_INT", 60))

	t.Setenv("ADVISOR_TEST_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("ADVISOR_TEST_INT", 60))

	t.Setenv("ADVISOR_TEST_BOOL", "definitely")
	assert.True(t, getEnvAsBool("ADVISOR_TEST_BOOL", true))

	t.Setenv("ADVISOR_TEST_BOOL", "false")
	assert.False(t, getEnvAsBool("ADVISOR_TEST_BOOL", true))
}
