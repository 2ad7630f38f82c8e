package factory

import (
	"fmt"

	"ai-shopscout-be/pkg/llm"
	"ai-shopscout-be/pkg/llm/anthropic"
	"ai-shopscout-be/pkg/llm/gemini"
	"ai-shopscout-be/pkg/llm/huggingface"
	"ai-shopscout-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, apiKey, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "anthropic":
		if modelName == "" {
			modelName = "claude-sonnet-4-5" // Default
		}
		return anthropic.NewAnthropicProvider(apiKey, modelName), nil
	case "gemini":
		if modelName == "" {
			modelName = "gemini-2.0-flash" // Default
		}
		return gemini.NewGeminiProvider(apiKey, modelName, baseURL), nil
	case "ollama":
		if modelName == "" {
			modelName = "llama3.1" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		if modelName == "" {
			modelName = "meta-llama/Llama-3.1-8B-Instruct" // Default
		}
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
