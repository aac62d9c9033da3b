package factory

import (
	"testing"

	"magic-diary-be/pkg/llm/anthropic"
	"magic-diary-be/pkg/llm/huggingface"
	"magic-diary-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Settings{APIKey: "sk-ant-x"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &anthropic.AnthropicProvider{}, p)

	p, err = NewLLMProvider(Settings{Provider: "ollama", Model: "llama3", Temperature: 0.2}, nil)
	require.NoError(t, err)
	op, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434", op.BaseURL)
	assert.Equal(t, 0.2, op.Temperature)
	assert.Equal(t, anthropic.DefaultSystemPrompt, op.System)

	p, err = NewLLMProvider(Settings{Provider: "huggingface", APIKey: "hf"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	_, err = NewLLMProvider(Settings{Provider: "gemini"}, nil)
	assert.Error(t, err)
}
