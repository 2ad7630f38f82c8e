package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ai-shopscout-be/pkg/search"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// maxResults caps how many shopping rows we forward downstream
const maxResults = 20

type SerpAPIProvider struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// Ensure SerpAPIProvider implements Provider
var _ search.Provider = &SerpAPIProvider{}

func NewSerpAPIProvider(apiKey string) *SerpAPIProvider {
	return &SerpAPIProvider{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Response structs (Internal to this package) ---

type shoppingItem struct {
	Title   string `json:"title,omitempty"`
	Price   string `json:"price,omitempty"`
	Source  string `json:"source,omitempty"`
	Link    string `json:"link,omitempty"`
	Rating  any    `json:"rating,omitempty"`
	Reviews any    `json:"reviews,omitempty"`
}

type serpResponse struct {
	ShoppingResults []shoppingItem `json:"shopping_results"`
	Error           string         `json:"error,omitempty"`
}

// --- Interface Implementation ---

// Search runs the query through Google Shopping. The returned payload is
// the shopping_results slice re-marshalled as JSON so downstream prompts
// are not bloated by SerpAPI envelope metadata. If the envelope cannot be
// parsed the raw body is passed through untouched.
func (s *SerpAPIProvider) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("api_key", s.APIKey)
	params.Set("num", fmt.Sprintf("%d", maxResults))

	reqURL := s.BaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("serpapi request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serpapi error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var serpResp serpResponse
	if err := json.Unmarshal(bodyBytes, &serpResp); err != nil {
		// Unknown envelope, hand the raw body downstream as-is
		return string(bodyBytes), nil
	}

	if serpResp.Error != "" {
		return "", fmt.Errorf("serpapi error: %s", serpResp.Error)
	}

	items := serpResp.ShoppingResults
	if len(items) > maxResults {
		items = items[:maxResults]
	}

	payload, err := json.Marshal(map[string][]shoppingItem{"shopping_results": items})
	if err != nil {
		return string(bodyBytes), nil
	}

	return string(payload), nil
}
