package factory

import (
	"fmt"
	"net/http"
	"time"

	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/llm/anthropic"
	"magic-diary-be/pkg/llm/huggingface"
	"magic-diary-be/pkg/llm/ollama"
)

// Settings is the provider-independent slice of configuration.
type Settings struct {
	Provider     string // "anthropic", "ollama", "huggingface"
	Model        string
	BaseURL      string
	APIKey       string
	APIVersion   string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
}

// NewLLMProvider builds the configured backend. Every backend speaks with the
// diary persona unless Settings.SystemPrompt overrides it.
func NewLLMProvider(s Settings, log logger.ILogger) (llm.LLMProvider, error) {
	if s.SystemPrompt == "" {
		s.SystemPrompt = anthropic.DefaultSystemPrompt
	}

	switch s.Provider {
	case "", "anthropic":
		client := &http.Client{Timeout: s.Timeout}
		return anthropic.NewAnthropicProvider(anthropic.Config{
			APIKey:       s.APIKey,
			BaseURL:      s.BaseURL,
			Version:      s.APIVersion,
			Model:        s.Model,
			MaxTokens:    s.MaxTokens,
			Temperature:  s.Temperature,
			SystemPrompt: s.SystemPrompt,
		}, client, log), nil
	case "ollama":
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		p := ollama.NewOllamaProvider(baseURL, s.Model, s.SystemPrompt, s.MaxTokens)
		p.Temperature = s.Temperature
		return p, nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model, s.SystemPrompt, s.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
