package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Keys    APIKeys
	Ai      AIConfig
	Search  SearchConfig
	Report  ReportConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type SessionConfig struct {
	TTL time.Duration
}

type APIKeys struct {
	Anthropic       string
	GoogleGemini    string
	HuggingFace     string
	SerpAPI         string
	Perplexity      string
	ReportTopicName string // in-process bus topic for report persistence
}

type AIConfig struct {
	LLMProvider   string // "anthropic", "gemini", "ollama" or "huggingface"
	LLMModel      string // provider default when empty
	OllamaBaseURL string
}

type SearchConfig struct {
	Provider        string // "serpapi" or "perplexity"
	PerplexityModel string
}

type ReportConfig struct {
	Enabled bool
	Dir     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Session: SessionConfig{
			TTL: time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Keys: APIKeys{
			Anthropic:       getEnv("ANTHROPIC_API_KEY", ""),
			GoogleGemini:    getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:     getEnv("HUGGINGFACE_API_KEY", ""),
			SerpAPI:         getEnv("SERPAPI_API_KEY", ""),
			Perplexity:      getEnv("PERPLEXITY_API_KEY", ""),
			ReportTopicName: getEnv("SAVE_REPORT_TOPIC_NAME", "SAVE_SESSION_REPORT"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "anthropic"),
			LLMModel:      getEnv("LLM_MODEL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Search: SearchConfig{
			Provider:        getEnv("SEARCH_PROVIDER", "serpapi"),
			PerplexityModel: getEnv("PERPLEXITY_MODEL", ""),
		},
		Report: ReportConfig{
			Enabled: getEnvAsBool("SAVE_REPORTS", true),
			Dir:     getEnv("REPORTS_DIR", "reports"),
		},
	}
}

// Validate reports the credentials missing for the selected providers.
// The result gates new session creation: a session started without them
// could never finish its lifecycle.
func (c *Config) Validate() error {
	var missing []string

	switch c.Ai.LLMProvider {
	case "anthropic":
		if c.Keys.Anthropic == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			missing = append(missing, "GOOGLE_GEMINI_API_KEY")
		}
	case "huggingface":
		if c.Keys.HuggingFace == "" {
			missing = append(missing, "HUGGINGFACE_API_KEY")
		}
	case "ollama":
		// Local runtime, no key needed.
	}

	switch c.Search.Provider {
	case "serpapi":
		if c.Keys.SerpAPI == "" {
			missing = append(missing, "SERPAPI_API_KEY")
		}
	case "perplexity":
		if c.Keys.Perplexity == "" {
			missing = append(missing, "PERPLEXITY_API_KEY")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
