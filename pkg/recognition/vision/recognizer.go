// Package vision recognizes handwriting with a hosted multimodal model.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/recognition"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultModel = "claude-3-haiku-20240307"

	// illegibleMarker is what the model is told to answer when it cannot read
	// the strokes.
	illegibleMarker = "ILLEGIBLE"

	maxTranscriptTokens = 300
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Options recognition.Options
}

// Recognizer sends the PNG snapshot to the vision model and returns its
// transcription.
type Recognizer struct {
	client anthropic.Client
	cfg    Config
	logger logger.ILogger
}

var _ recognition.Provider = (*Recognizer)(nil)

func NewRecognizer(cfg Config, httpClient *http.Client, log logger.ILogger) *Recognizer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &Recognizer{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
		logger: log,
	}
}

// Instructions renders the tuning knobs as the system prompt.
func Instructions(o recognition.Options) string {
	var b strings.Builder
	b.WriteString("You transcribe handwriting from an image of pen strokes. ")
	b.WriteString("Reply with the transcribed text only, joining separate lines with single spaces. ")
	fmt.Fprintf(&b, "If nothing legible is written, reply with exactly %s. ", illegibleMarker)

	if len(o.Languages) > 0 {
		fmt.Fprintf(&b, "Expected languages: %s. ", strings.Join(o.Languages, ", "))
	}
	if o.MinimumTextHeight > 0 {
		fmt.Fprintf(&b, "Ignore marks shorter than %.0f%% of the image height. ", o.MinimumTextHeight*100)
	}
	if o.UsesLanguageCorrection {
		b.WriteString("Correct obvious spelling slips toward real words. ")
	} else {
		b.WriteString("Do not correct spelling. ")
	}
	if len(o.CustomWords) > 0 {
		fmt.Fprintf(&b, "Prefer these words when ambiguous: %s. ", strings.Join(o.CustomWords, ", "))
	}
	if o.Level == recognition.LevelFast {
		b.WriteString("Favor speed over exhaustive analysis.")
	} else {
		b.WriteString("Favor accuracy.")
	}
	return strings.TrimSpace(b.String())
}

func (r *Recognizer) Recognize(ctx context.Context, snapshot recognition.Snapshot) (recognition.Result, error) {
	if len(snapshot.Image) == 0 {
		if len(snapshot.DeviceLines) == 0 {
			return recognition.Result{}, recognition.ErrNoSnapshot
		}
		// Nothing to look at; fall back to what the device read.
		text := recognition.JoinLines(snapshot.DeviceLines)
		return recognition.Result{Text: text, OK: text != ""}, nil
	}

	ctx, span := otel.Tracer("magic-diary/recognition").Start(ctx, "vision.recognize")
	defer span.End()
	span.SetAttributes(attribute.Int("recognition.image_bytes", len(snapshot.Image)))

	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.cfg.Model),
		MaxTokens: maxTranscriptTokens,
		System: []anthropic.TextBlockParam{
			{Text: Instructions(r.cfg.Options)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(snapshot.Image)),
				anthropic.NewTextBlock("Transcribe this handwriting."),
			),
		},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return recognition.Result{}, llm.StatusError(apiErr.StatusCode, []byte(apiErr.Error()))
		}
		return recognition.Result{}, llm.TransportError("vision request failed", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = strings.TrimSpace(block.Text)
			break
		}
	}

	switch {
	case text == "":
		return recognition.Result{}, nil
	case strings.EqualFold(text, illegibleMarker):
		r.logger.Info("VisionRecognizer", "Strokes were not legible", nil)
		return recognition.Result{Text: recognition.IllegibleSentinel, OK: true}, nil
	default:
		return recognition.Result{Text: recognition.JoinLines(strings.Split(text, "\n")), OK: true}, nil
	}
}
