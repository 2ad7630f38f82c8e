package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-shopscout-be/pkg/search"
)

const defaultBaseURL = "https://api.perplexity.ai"

const systemPrompt = "You are a product research assistant. Search the web for products " +
	"across major retailers and report accurate names, prices, retailers, URLs, ratings " +
	"and key features. Prefer structured JSON in your answers."

type PerplexityProvider struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure PerplexityProvider implements Provider
var _ search.Provider = &PerplexityProvider{}

func NewPerplexityProvider(apiKey, modelName string) *PerplexityProvider {
	if modelName == "" {
		modelName = "sonar"
	}
	return &PerplexityProvider{
		APIKey:    apiKey,
		BaseURL:   defaultBaseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---
// Perplexity exposes an OpenAI-compatible chat completions API.

type pplxMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type pplxRequest struct {
	Model       string        `json:"model"`
	Messages    []pplxMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type pplxResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// --- Interface Implementation ---

// Search sends the query to a search-enabled sonar model and returns the
// model's answer verbatim. The answer is free-form text that usually
// embeds JSON; callers parse it defensively.
func (p *PerplexityProvider) Search(ctx context.Context, query string) (string, error) {
	reqPayload := pplxRequest{
		Model: p.ModelName,
		Messages: []pplxMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: 0.3,
		MaxTokens:   4000,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("perplexity request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var pplxResp pplxResponse
	if err := json.Unmarshal(bodyBytes, &pplxResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if pplxResp.Error != nil {
		return "", fmt.Errorf("perplexity error: %s (%s)", pplxResp.Error.Message, pplxResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("perplexity error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if len(pplxResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in perplexity response")
	}

	return pplxResp.Choices[0].Message.Content, nil
}
