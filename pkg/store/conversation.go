package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one exchange: the recognized user text and, once resolved, the reply.
type Turn struct {
	ID             uuid.UUID  `json:"id"`
	UserText       string     `json:"user_text"`
	AssistantReply *string    `json:"assistant_reply"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// Pending reports whether the reply has not been set yet.
func (t Turn) Pending() bool {
	return t.AssistantReply == nil
}

// Reply returns the assistant reply, or "" while pending.
func (t Turn) Reply() string {
	if t.AssistantReply == nil {
		return ""
	}
	return *t.AssistantReply
}

func (t Turn) clone() Turn {
	c := t
	if t.AssistantReply != nil {
		reply := *t.AssistantReply
		c.AssistantReply = &reply
	}
	if t.ResolvedAt != nil {
		at := *t.ResolvedAt
		c.ResolvedAt = &at
	}
	return c
}

// Conversation is the append-only, chronologically ordered log of turns.
// A single orchestrator writes to it; readers get copies.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
	index map[uuid.UUID]int
	now   func() time.Time
}

func NewConversation() *Conversation {
	return &Conversation{
		index: make(map[uuid.UUID]int),
		now:   time.Now,
	}
}

// Append adds a pending turn and returns its identifier.
func (c *Conversation) Append(userText string) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New()
	c.index[id] = len(c.turns)
	c.turns = append(c.turns, Turn{
		ID:        id,
		UserText:  userText,
		CreatedAt: c.now(),
	})
	return id
}

// Resolve sets the reply of the turn with the given id. It is a no-op,
// returning false, when the turn no longer exists (the conversation was
// reset in the meantime) or was already resolved.
func (c *Conversation) Resolve(id uuid.UUID, reply string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok || c.turns[i].AssistantReply != nil {
		return false
	}
	at := c.now()
	c.turns[i].AssistantReply = &reply
	c.turns[i].ResolvedAt = &at
	return true
}

// Reset drops every turn. Calling it on an empty conversation is harmless.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = nil
	c.index = make(map[uuid.UUID]int)
}

// Snapshot returns a copy of all turns in chronological order.
func (c *Conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Turn, len(c.turns))
	for i, t := range c.turns {
		out[i] = t.clone()
	}
	return out
}

// Get returns a copy of the turn with the given id.
func (c *Conversation) Get(id uuid.UUID) (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return Turn{}, false
	}
	return c.turns[i].clone(), true
}

// Latest returns the most recent turn.
func (c *Conversation) Latest() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1].clone(), true
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Project returns the turns the presentation layer shows in the given mode.
func (c *Conversation) Project(mode Mode) []Turn {
	if mode == ModeEphemeral {
		latest, ok := c.Latest()
		if !ok {
			return []Turn{}
		}
		return []Turn{latest}
	}
	return c.Snapshot()
}
