package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/prompt"
)

type OllamaProvider struct {
	BaseURL     string
	ModelName   string
	System      string
	MaxTokens   int
	Temperature float64
	Client      *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName, system string, maxTokens int) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		ModelName:   modelName,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: 0.7, // Default
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string         `json:"model"`
	Message *ollamaMessage `json:"message"`
	Done    bool           `json:"done"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Complete(ctx context.Context, userMessage, conversationContext string, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
		Model:       o.ModelName,
		System:      o.System,
	}, opts...)

	messages := make([]ollamaMessage, 0, 2)
	if options.System != "" {
		messages = append(messages, ollamaMessage{Role: llm.RoleSystem, Content: options.System})
	}
	messages = append(messages, ollamaMessage{
		Role:    llm.RoleUser,
		Content: prompt.ComposeUserMessage(conversationContext, userMessage),
	})

	reqPayload := ollamaChatRequest{
		Model:    options.Model,
		Messages: messages,
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", llm.TransportError("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", llm.TransportError("ollama request failed", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError("read response", err)
	}

	if err := llm.StatusError(resp.StatusCode, bodyBytes); err != nil {
		return "", err
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return "", llm.TransportError("unmarshal response", err)
	}
	if ollamaResp.Message == nil {
		return "", llm.TransportError("unmarshal response", fmt.Errorf("missing message"))
	}

	if strings.TrimSpace(ollamaResp.Message.Content) == "" {
		return llm.ReplyNotUnderstood, nil
	}
	return ollamaResp.Message.Content, nil
}
