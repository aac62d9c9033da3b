package diary

import (
	"sync"
	"time"

	"magic-diary-be/pkg/canvas"
	"magic-diary-be/pkg/store"
)

// Session is one writer's diary: its conversation, the orchestrator that owns
// it and the canvas pipeline feeding it.
type Session struct {
	ID           string
	CreatedAt    time.Time
	Orchestrator *Orchestrator
	Canvas       *canvas.Pipeline

	mu   sync.RWMutex
	mode store.Mode
}

func NewSession(id string, mode store.Mode, orchestrator *Orchestrator, pipeline *canvas.Pipeline) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		Orchestrator: orchestrator,
		Canvas:       pipeline,
		mode:         mode,
	}
}

func (s *Session) Mode() store.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Session) SetMode(mode store.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Close stops the canvas pipeline. The conversation is left to the GC.
func (s *Session) Close() {
	if s.Canvas != nil {
		s.Canvas.Close()
	}
}
