// Package canvas turns a stream of drawing-changed events into recognized
// text: it waits for the strokes to settle, recognizes the latest snapshot
// and hands non-empty text to a sink.
package canvas

import (
	"context"
	"sync"
	"time"

	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/pkg/recognition"
)

const recognizeTimeout = 30 * time.Second

// Sink receives recognized text for a session.
type Sink interface {
	Deliver(ctx context.Context, sessionID, text string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sessionID, text string) error

func (f SinkFunc) Deliver(ctx context.Context, sessionID, text string) error {
	return f(ctx, sessionID, text)
}

type Pipeline struct {
	sessionID  string
	recognizer recognition.Provider
	sink       Sink
	debouncer  *Debouncer
	logger     logger.ILogger

	mu     sync.Mutex
	latest *recognition.Snapshot
}

func NewPipeline(sessionID string, recognizer recognition.Provider, sink Sink, settle time.Duration, log logger.ILogger) *Pipeline {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Pipeline{
		sessionID:  sessionID,
		recognizer: recognizer,
		sink:       sink,
		debouncer:  NewDebouncer(settle),
		logger:     log,
	}
}

// DrawingChanged records the newest snapshot and restarts the settle delay.
// Only the snapshot present when the delay expires is recognized.
func (p *Pipeline) DrawingChanged(snapshot recognition.Snapshot) {
	p.mu.Lock()
	p.latest = &snapshot
	p.mu.Unlock()

	p.debouncer.Schedule(p.fire)
}

// Cancel drops the pending snapshot, e.g. when the canvas was cleared.
func (p *Pipeline) Cancel() {
	p.debouncer.Cancel()
	p.mu.Lock()
	p.latest = nil
	p.mu.Unlock()
}

func (p *Pipeline) Close() {
	p.debouncer.Close()
	p.mu.Lock()
	p.latest = nil
	p.mu.Unlock()
}

func (p *Pipeline) fire() {
	p.mu.Lock()
	snapshot := p.latest
	p.latest = nil
	p.mu.Unlock()

	if snapshot == nil || snapshot.Empty() {
		p.logger.Debug("CanvasPipeline", "No drawing detected", map[string]interface{}{"session_id": p.sessionID})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recognizeTimeout)
	defer cancel()

	res, err := p.recognizer.Recognize(ctx, *snapshot)
	if err != nil {
		p.logger.Error("CanvasPipeline", "Text recognition error", map[string]interface{}{
			"session_id": p.sessionID,
			"error":      err,
		})
		return
	}
	if !res.OK || res.Text == "" {
		p.logger.Debug("CanvasPipeline", "No text observations found", map[string]interface{}{"session_id": p.sessionID})
		return
	}

	if err := p.sink.Deliver(ctx, p.sessionID, res.Text); err != nil {
		p.logger.Error("CanvasPipeline", "Failed to deliver recognized text", map[string]interface{}{
			"session_id": p.sessionID,
			"error":      err,
		})
	}
}
