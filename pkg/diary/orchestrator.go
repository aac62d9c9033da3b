package diary

import (
	"context"
	"strings"
	"sync"

	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/pkg/events"
	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/prompt"
	"magic-diary-be/pkg/recognition"
	"magic-diary-be/pkg/store"
	"magic-diary-be/pkg/transcript"

	"github.com/google/uuid"
)

// State is the conversation-level request state.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Outcome describes how a submitted text was resolved.
type Outcome struct {
	Turn store.Turn
	// Degraded is set when the reply is the fallback for a failed model call.
	Degraded bool
	// ShortCircuited is set when the text was illegible and no call was made.
	ShortCircuited bool
	// Discarded is set when the conversation was reset while the call ran;
	// the reply was not stored.
	Discarded bool
}

type Option func(*Orchestrator)

// WithFallback replaces the reply used when the model call fails.
func WithFallback(reply string) Option {
	return func(o *Orchestrator) {
		o.fallback = reply
	}
}

// Orchestrator turns recognized text into resolved turns. It is the only
// writer of its conversation and lets one model call run at a time.
type Orchestrator struct {
	sessionID    string
	conversation *store.Conversation
	provider     llm.LLMProvider
	publisher    events.Publisher
	logger       logger.ILogger
	fallback     string

	mu    sync.Mutex
	state State
}

func NewOrchestrator(
	sessionID string,
	conversation *store.Conversation,
	provider llm.LLMProvider,
	publisher events.Publisher,
	log logger.ILogger,
	opts ...Option,
) *Orchestrator {
	if publisher == nil {
		publisher = events.Nop
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	o := &Orchestrator{
		sessionID:    sessionID,
		conversation: conversation,
		provider:     provider,
		publisher:    publisher,
		logger:       log,
		fallback:     ReplyTrouble,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit records text as a new turn and resolves it.
//
// Illegible text is answered with ReplyWriteClearly without a model call.
// Otherwise the turns before the new one are serialized as context and the
// model is asked for a reply; any failure resolves the turn with the
// fallback. The model call is not cancelled when ctx is.
func (o *Orchestrator) Submit(ctx context.Context, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, ErrEmptyText
	}

	o.mu.Lock()
	if o.state == StatePending {
		o.mu.Unlock()
		return Outcome{}, ErrBusy
	}

	if recognition.IsIllegible(text) {
		id := o.conversation.Append(text)
		o.conversation.Resolve(id, ReplyWriteClearly)
		o.mu.Unlock()

		turn := o.turn(id, text, ReplyWriteClearly)
		o.publish(ctx, events.TurnAppended(o.sessionID, turn))
		o.publish(ctx, events.TurnResolved(o.sessionID, turn, false))
		o.logger.Info("Orchestrator", "Illegible handwriting, skipped model call", map[string]interface{}{
			"session_id": o.sessionID,
		})
		return Outcome{Turn: turn, ShortCircuited: true}, nil
	}

	conversationContext := prompt.Serialize(o.conversation.Snapshot())
	id := o.conversation.Append(text)
	o.state = StatePending
	pending, _ := o.conversation.Get(id)
	o.mu.Unlock()

	o.publish(ctx, events.BusyChanged(o.sessionID, true))
	o.publish(ctx, events.TurnAppended(o.sessionID, pending))

	reply, err := o.provider.Complete(context.WithoutCancel(ctx), text, conversationContext)
	degraded := err != nil
	if err != nil {
		o.logger.Error("Orchestrator", "Error generating response", map[string]interface{}{
			"session_id": o.sessionID,
			"turn_id":    id.String(),
			"kind":       llm.Kind(err),
			"error":      err,
		})
		reply = o.fallback
	}

	o.mu.Lock()
	stored := o.conversation.Resolve(id, reply)
	o.state = StateIdle
	o.mu.Unlock()

	turn := o.turn(id, text, reply)
	if stored {
		o.publish(ctx, events.TurnResolved(o.sessionID, turn, degraded))
	} else {
		o.logger.Info("Orchestrator", "Conversation reset while reply was pending, reply dropped", map[string]interface{}{
			"session_id": o.sessionID,
			"turn_id":    id.String(),
		})
	}
	o.publish(ctx, events.BusyChanged(o.sessionID, false))

	return Outcome{Turn: turn, Degraded: degraded, Discarded: !stored}, nil
}

// turn returns the stored turn, or a detached copy when the conversation
// was reset underneath.
func (o *Orchestrator) turn(id uuid.UUID, text, reply string) store.Turn {
	if t, ok := o.conversation.Get(id); ok {
		return t
	}
	return store.Turn{ID: id, UserText: text, AssistantReply: &reply}
}

// Reset clears the conversation. A reply still in flight is dropped when it
// arrives.
func (o *Orchestrator) Reset(ctx context.Context) {
	o.mu.Lock()
	o.conversation.Reset()
	o.mu.Unlock()

	o.publish(ctx, events.ConversationReset(o.sessionID))
}

// Busy is advisory: true while a model call is pending.
func (o *Orchestrator) Busy() bool {
	return o.State() == StatePending
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Turns projects the conversation for the given presentation mode.
func (o *Orchestrator) Turns(mode store.Mode) []store.Turn {
	return o.conversation.Project(mode)
}

func (o *Orchestrator) TurnCount() int {
	return o.conversation.Len()
}

// Export renders the whole conversation as a transcript.
func (o *Orchestrator) Export() string {
	return transcript.Export(o.conversation.Snapshot())
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if err := o.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		o.logger.Warn("Orchestrator", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err,
		})
	}
}
