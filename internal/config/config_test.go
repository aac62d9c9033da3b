package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-abc")

	cfg := Load()
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.Ai.LLMModel)
	assert.Equal(t, "2023-06-01", cfg.Ai.AnthropicVersion)
	assert.Equal(t, 1000, cfg.Ai.MaxTokens)
	assert.Equal(t, 0.7, cfg.Ai.Temperature)
	assert.Equal(t, 500*time.Millisecond, cfg.Recognition.Debounce)
	assert.Equal(t, []string{"en-US"}, cfg.Recognition.Languages)
	assert.True(t, cfg.Recognition.LanguageCorrection)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "200")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("RECOGNITION_DEBOUNCE", "750ms")
	t.Setenv("RECOGNITION_LANGUAGES", "en-US, fr-FR ,")
	t.Setenv("RECOGNITION_LANGUAGE_CORRECTION", "false")
	t.Setenv("SESSION_TTL", "30m")

	cfg := Load()
	assert.Equal(t, 200, cfg.Ai.MaxTokens)
	assert.Equal(t, 0.2, cfg.Ai.Temperature)
	assert.Equal(t, 750*time.Millisecond, cfg.Recognition.Debounce)
	assert.Equal(t, []string{"en-US", "fr-FR"}, cfg.Recognition.Languages)
	assert.False(t, cfg.Recognition.LanguageCorrection)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "lots")
	t.Setenv("RECOGNITION_DEBOUNCE", "soon")

	cfg := Load()
	assert.Equal(t, 1000, cfg.Ai.MaxTokens)
	assert.Equal(t, 500*time.Millisecond, cfg.Recognition.Debounce)
}

func validConfig() *Config {
	return &Config{
		Keys:        APIKeys{Anthropic: "sk-ant-abc"},
		Ai:          AIConfig{LLMProvider: "anthropic", MaxTokens: 1000, Temperature: 0.7},
		Recognition: RecognitionConfig{Provider: "device", Level: "accurate"},
		Session:     SessionConfig{TTL: time.Hour},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad key prefix", func(c *Config) { c.Keys.Anthropic = "sk-openai" }, "sk-ant-"},
		{"unknown provider", func(c *Config) { c.Ai.LLMProvider = "gemini" }, "LLM_PROVIDER"},
		{"hf without key", func(c *Config) { c.Ai.LLMProvider = "huggingface" }, "HUGGINGFACE_API_KEY"},
		{"vision without key", func(c *Config) {
			c.Ai.LLMProvider = "ollama"
			c.Keys.Anthropic = ""
			c.Recognition.Provider = "vision"
		}, "vision"},
		{"bad level", func(c *Config) { c.Recognition.Level = "turbo" }, "RECOGNITION_LEVEL"},
		{"bad temperature", func(c *Config) { c.Ai.Temperature = 2 }, "LLM_TEMPERATURE"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "SESSION_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	c := validConfig()
	c.Ai.LLMProvider = "ollama"
	c.Keys.Anthropic = ""
	assert.NoError(t, c.Validate())
}
