package factory

import (
	"fmt"

	"ai-shopscout-be/pkg/search"
	"ai-shopscout-be/pkg/search/perplexity"
	"ai-shopscout-be/pkg/search/serpapi"
)

func NewSearchProvider(providerType, apiKey, modelName string) (search.Provider, error) {
	switch providerType {
	case "serpapi":
		return serpapi.NewSerpAPIProvider(apiKey), nil
	case "perplexity":
		return perplexity.NewPerplexityProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", providerType)
	}
}
