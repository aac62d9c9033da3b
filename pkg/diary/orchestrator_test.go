package diary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"magic-diary-be/pkg/events"
	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/prompt"
	"magic-diary-be/pkg/recognition"
	"magic-diary-be/pkg/store"
	"magic-diary-be/pkg/transcript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Complete(ctx context.Context, userMessage, conversationContext string, opts ...llm.Option) (string, error) {
	args := m.Called(ctx, userMessage, conversationContext)
	return args.String(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func newTestOrchestrator(p llm.LLMProvider, opts ...Option) (*Orchestrator, *store.Conversation, *recordingPublisher) {
	conv := store.NewConversation()
	pub := &recordingPublisher{}
	return NewOrchestrator("s1", conv, p, pub, nil, opts...), conv, pub
}

func TestSubmit_ScenarioA(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "Dear diary, I saw a cat today", "").
		Return("A cat! How whiskerful.", nil).Once()

	o, conv, pub := newTestOrchestrator(p)

	out, err := o.Submit(context.Background(), "Dear diary, I saw a cat today")
	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.False(t, out.ShortCircuited)
	assert.Equal(t, "A cat! How whiskerful.", out.Turn.Reply())

	turns := conv.Snapshot()
	require.Len(t, turns, 1)
	assert.Equal(t, "Dear diary, I saw a cat today", turns[0].UserText)
	assert.Equal(t, "A cat! How whiskerful.", turns[0].Reply())

	assert.Equal(t,
		transcript.Header+"You: Dear diary, I saw a cat today\nDiary: A cat! How whiskerful.\n\n",
		o.Export(),
	)
	assert.Equal(t, StateIdle, o.State())
	assert.Equal(t, []string{
		events.TypeBusyChanged,
		events.TypeTurnAppended,
		events.TypeTurnResolved,
		events.TypeBusyChanged,
	}, pub.types())
	p.AssertExpectations(t)
}

func TestSubmit_ScenarioB_IllegibleSkipsModel(t *testing.T) {
	p := &mockProvider{}
	o, conv, _ := newTestOrchestrator(p)

	out, err := o.Submit(context.Background(), recognition.IllegibleSentinel)
	require.NoError(t, err)
	assert.True(t, out.ShortCircuited)
	assert.Equal(t, ReplyWriteClearly, out.Turn.Reply())

	latest, ok := conv.Latest()
	require.True(t, ok)
	assert.Equal(t, ReplyWriteClearly, latest.Reply())
	p.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ScenarioC_ContextIsPrecedingTurns(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "first", "").Return("one", nil).Once()
	p.On("Complete", mock.Anything, "second", "User: first\nAssistant: one\n").Return("two", nil).Once()
	p.On("Complete", mock.Anything, "third", "User: first\nAssistant: one\nUser: second\nAssistant: two\n").
		Return("three", nil).Once()

	o, conv, _ := newTestOrchestrator(p)
	ctx := context.Background()

	_, err := o.Submit(ctx, "first")
	require.NoError(t, err)
	_, err = o.Submit(ctx, "second")
	require.NoError(t, err)

	// Context seen by the third call, before it is appended.
	preceding := prompt.Serialize(conv.Snapshot())
	assert.Equal(t, "User: first\nAssistant: one\nUser: second\nAssistant: two\n", preceding)

	_, err = o.Submit(ctx, "third")
	require.NoError(t, err)
	assert.Equal(t, 3, conv.Len())
	p.AssertExpectations(t)
}

func TestSubmit_FailureDegradesToFallback(t *testing.T) {
	for _, failure := range []error{llm.ErrAuth, llm.ErrRateLimit, llm.ErrServer, llm.ErrTransport} {
		p := &mockProvider{}
		p.On("Complete", mock.Anything, "hi", "").Return("", failure).Once()

		o, conv, _ := newTestOrchestrator(p)
		out, err := o.Submit(context.Background(), "hi")
		require.NoError(t, err)
		assert.True(t, out.Degraded)
		assert.Equal(t, ReplyTrouble, out.Turn.Reply())

		latest, _ := conv.Latest()
		assert.Equal(t, ReplyTrouble, latest.Reply())
		assert.Equal(t, StateIdle, o.State())
	}
}

func TestSubmit_WithFallback(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "hi", "").Return("", llm.ErrServer).Once()

	o, _, _ := newTestOrchestrator(p, WithFallback(ReplyTroubleUnderstanding))
	out, err := o.Submit(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, ReplyTroubleUnderstanding, out.Turn.Reply())
}

func TestSubmit_EmptyText(t *testing.T) {
	o, conv, _ := newTestOrchestrator(&mockProvider{})
	_, err := o.Submit(context.Background(), "   \n")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, 0, conv.Len())
}

// blockingProvider holds the call until release is closed.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
	reply   string
}

func newBlockingProvider(reply string) *blockingProvider {
	return &blockingProvider{started: make(chan struct{}, 1), release: make(chan struct{}), reply: reply}
}

func (b *blockingProvider) Complete(ctx context.Context, _, _ string, _ ...llm.Option) (string, error) {
	b.started <- struct{}{}
	<-b.release
	return b.reply, nil
}

func TestSubmit_BusyWhilePending(t *testing.T) {
	p := newBlockingProvider("done")
	o, conv, _ := newTestOrchestrator(p)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := o.Submit(context.Background(), "first")
		done <- out
	}()
	<-p.started

	assert.True(t, o.Busy())
	_, err := o.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, conv.Len())

	// Pending turn is visible with no reply.
	latest, _ := conv.Latest()
	assert.True(t, latest.Pending())

	close(p.release)
	out := <-done
	assert.Equal(t, "done", out.Turn.Reply())
	assert.False(t, o.Busy())
}

func TestSubmit_ResetWhilePendingDropsReply(t *testing.T) {
	p := newBlockingProvider("late")
	o, conv, pub := newTestOrchestrator(p)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := o.Submit(context.Background(), "first")
		done <- out
	}()
	<-p.started

	o.Reset(context.Background())
	close(p.release)

	out := <-done
	assert.True(t, out.Discarded)
	assert.Equal(t, 0, conv.Len())
	assert.Empty(t, conv.Snapshot())
	assert.NotContains(t, pub.types(), events.TypeTurnResolved)
	assert.Equal(t, StateIdle, o.State())
}

func TestSubmit_CallerCancelDoesNotCancelModelCall(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "hi", "").
		Return("still here", nil).Once()

	o, _, _ := newTestOrchestrator(p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := o.Submit(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "still here", out.Turn.Reply())
	p.AssertExpectations(t)
}

func TestTurns_ProjectsByMode(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)

	o, _, _ := newTestOrchestrator(p)
	for _, text := range []string{"a", "b", "c"} {
		_, err := o.Submit(context.Background(), text)
		require.NoError(t, err)
	}

	eph := o.Turns(store.ModeEphemeral)
	require.Len(t, eph, 1)
	assert.Equal(t, "c", eph[0].UserText)
	assert.Len(t, o.Turns(store.ModePersistentLog), 3)
	assert.Equal(t, 3, o.TurnCount())
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "hi", "").Return("ok", nil)

	failing := events.PublisherFunc(func(context.Context, events.Event) error { return errors.New("bus down") })
	o := NewOrchestrator("s1", store.NewConversation(), p, failing, nil)

	out, err := o.Submit(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Turn.Reply())
}

func TestSession_Mode(t *testing.T) {
	s := NewSession("s1", store.ModeEphemeral, nil, nil)
	assert.Equal(t, store.ModeEphemeral, s.Mode())
	s.SetMode(store.ModePersistentLog)
	assert.Equal(t, store.ModePersistentLog, s.Mode())
	assert.WithinDuration(t, time.Now(), s.CreatedAt, time.Second)
	assert.NotPanics(t, s.Close)
}
