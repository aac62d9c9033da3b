package huggingface

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

const DefaultBaseURL = "https://router.huggingface.co/v1" // Default Router URL

type HuggingFaceProvider struct {
	apiKey    string
	baseURL   string
	model     string
	system    string
	maxTokens int
	client    *http.Client
}

// Ensure HuggingFaceProvider implements LLMProvider
var _ llm.LLMProvider = &HuggingFaceProvider{}

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices *[]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model, system string, maxTokens int) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		system:    system,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *HuggingFaceProvider) Complete(ctx context.Context, userMessage, conversationContext string, options ...llm.Option) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: huggingface API key is empty", llm.ErrAuth)
	}

	opts := llm.Apply(llm.Options{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: 0.7,
		System:      p.system,
	}, options...)

	messages := make([]llm.Message, 0, 2)
	if opts.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: opts.System})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt.ComposeUserMessage(conversationContext, userMessage),
	})

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", llm.TransportError("create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", llm.TransportError("huggingface request failed", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError("read response", err)
	}

	if err := llm.StatusError(resp.StatusCode, bodyBytes); err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", llm.TransportError("decode response", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: huggingface api returned error: %s", llm.ErrTransport, chatResp.Error.Message)
	}
	if chatResp.Choices == nil {
		return "", llm.TransportError("decode response", fmt.Errorf("missing choices"))
	}
	if len(*chatResp.Choices) == 0 {
		return llm.ReplyNotUnderstood, nil
	}

	return (*chatResp.Choices)[0].Message.Content, nil
}
