package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL     = "https://api.anthropic.com"
	DefaultVersion     = "2023-06-01"
	DefaultModel       = "claude-3-haiku-20240307"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7

	// KeyPrefix is the prefix every Anthropic API key carries.
	KeyPrefix = "sk-ant-"

	messagesPath = "/v1/messages"
)

// DefaultSystemPrompt is the diary persona.
const DefaultSystemPrompt = "You're a quirky magical diary! Keep responses super short (1-2 sentences max). " +
	"Be curious about what's shared and respond with wit and charm. " +
	"Avoid using any text effects or action descriptions."

type Config struct {
	APIKey       string
	BaseURL      string
	Version      string
	Model        string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

type AnthropicProvider struct {
	cfg    Config
	Client *http.Client
	logger logger.ILogger
}

// Ensure AnthropicProvider implements LLMProvider
var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(cfg Config, client *http.Client, log logger.ILogger) *AnthropicProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &AnthropicProvider{
		cfg:    cfg,
		Client: client,
		logger: log,
	}
}

// --- Request/Response structs (Internal to this package) ---

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	System      string    `json:"system"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Pointer fields are required: a nil one is a schema mismatch.
type messagesResponse struct {
	ID      *string         `json:"id"`
	Content json.RawMessage `json:"content"`
	Model   *string         `json:"model"`
	Role    *string         `json:"role"`
}

type contentBlock struct {
	Text *string `json:"text"`
	Type *string `json:"type"`
}

// ValidateKey fails fast on credentials that cannot be valid.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: API key is empty", llm.ErrAuth)
	}
	if !strings.HasPrefix(key, KeyPrefix) {
		return fmt.Errorf("%w: API key does not start with %q", llm.ErrAuth, KeyPrefix)
	}
	return nil
}

// --- Interface Implementation ---

func (p *AnthropicProvider) Complete(ctx context.Context, userMessage, conversationContext string, opts ...llm.Option) (reply string, err error) {
	if err := ValidateKey(p.cfg.APIKey); err != nil {
		return "", err
	}

	options := llm.Apply(llm.Options{
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		Model:       p.cfg.Model,
		System:      p.cfg.SystemPrompt,
	}, opts...)

	ctx, span := otel.Tracer("magic-diary/llm").Start(ctx, "anthropic.messages")
	span.SetAttributes(
		attribute.String("llm.model", options.Model),
		attribute.Int("llm.context_bytes", len(conversationContext)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, llm.Kind(err))
		}
		span.End()
	}()

	reqPayload := messagesRequest{
		Model:     options.Model,
		MaxTokens: options.MaxTokens,
		Messages: []message{{
			Role:    llm.RoleUser,
			Content: prompt.ComposeUserMessage(conversationContext, userMessage),
		}},
		System:      options.System,
		Temperature: options.Temperature,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+messagesPath, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", llm.TransportError("create request", err)
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", p.cfg.Version)

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		return "", llm.TransportError("anthropic request failed", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", llm.TransportError("read response", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if statusErr := llm.StatusError(resp.StatusCode, bodyBytes); statusErr != nil {
		p.logger.Error("AnthropicProvider", "Messages API returned an error status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(bodyBytes),
			"kind":   llm.Kind(statusErr),
		})
		return "", statusErr
	}

	blocks, err := decodeContent(bodyBytes)
	if err != nil {
		return "", err
	}

	p.logger.Debug("AnthropicProvider", "Messages API call completed", map[string]interface{}{
		"model":       options.Model,
		"blocks":      len(blocks),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if len(blocks) == 0 {
		p.logger.Warn("AnthropicProvider", "No response text found in API response", nil)
		return llm.ReplyNotUnderstood, nil
	}

	return *blocks[0].Text, nil
}

// decodeContent decodes the response body and insists on id, model, role
// and a content array of {type, text} blocks. Anything else is a schema
// mismatch.
func decodeContent(body []byte) ([]contentBlock, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, llm.TransportError("unmarshal response", err)
	}
	switch {
	case resp.ID == nil:
		return nil, llm.TransportError("unmarshal response", fmt.Errorf("missing id"))
	case resp.Model == nil:
		return nil, llm.TransportError("unmarshal response", fmt.Errorf("missing model"))
	case resp.Role == nil:
		return nil, llm.TransportError("unmarshal response", fmt.Errorf("missing role"))
	}

	raw := bytes.TrimSpace(resp.Content)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, llm.TransportError("unmarshal response", fmt.Errorf("missing content array"))
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, llm.TransportError("unmarshal content", err)
	}
	for i, b := range blocks {
		if b.Type == nil || *b.Type == "" {
			return nil, llm.TransportError("unmarshal content", fmt.Errorf("content block %d has no type", i))
		}
		if b.Text == nil {
			return nil, llm.TransportError("unmarshal content", fmt.Errorf("content block %d has no text", i))
		}
	}

	return blocks, nil
}
