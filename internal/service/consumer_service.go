package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"magic-diary-be/internal/dto"
	"magic-diary-be/internal/pkg/logger"
	"magic-diary-be/internal/pkg/serverutils"
	"magic-diary-be/pkg/diary"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until every dispatched submission returned.
	Wait()
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	sessionService ISessionService
	logger         logger.ILogger
	wg             sync.WaitGroup

	// queues holds recognized text waiting per session. A key is present
	// while that session's drain goroutine runs.
	mu     sync.Mutex
	queues map[string][]dto.RecognizedTextMessage
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	sessionService ISessionService,
	log logger.ILogger,
) IConsumerService {
	if topicName == "" {
		topicName = RecognizedTextTopic
	}
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		sessionService: sessionService,
		logger:         log,
		queues:         make(map[string][]dto.RecognizedTextMessage),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Wait() {
	cs.wg.Wait()
}

// processMessage acks as soon as the text is decoded and queues it for its
// session. Each session is drained by one goroutine, in arrival order, so a
// slow reply holds back only its own session.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RecognizedTextMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal recognized text", map[string]interface{}{"error": err})
		msg.Ack()
		return
	}
	msg.Ack()

	cs.enqueue(ctx, payload)
}

func (cs *consumerService) enqueue(ctx context.Context, payload dto.RecognizedTextMessage) {
	cs.mu.Lock()
	q, running := cs.queues[payload.SessionId]
	cs.queues[payload.SessionId] = append(q, payload)
	cs.mu.Unlock()

	if running {
		return
	}
	cs.wg.Add(1)
	go cs.drain(ctx, payload.SessionId)
}

func (cs *consumerService) drain(ctx context.Context, sessionID string) {
	defer cs.wg.Done()

	for {
		cs.mu.Lock()
		q := cs.queues[sessionID]
		if len(q) == 0 {
			delete(cs.queues, sessionID)
			cs.mu.Unlock()
			return
		}
		next := q[0]
		cs.queues[sessionID] = q[1:]
		cs.mu.Unlock()

		cs.submit(ctx, next)
	}
}

func (cs *consumerService) submit(ctx context.Context, payload dto.RecognizedTextMessage) {
	details := map[string]interface{}{"session_id": payload.SessionId}

	_, err := cs.sessionService.SubmitRecognized(ctx, payload.SessionId, payload.Text)
	switch {
	case err == nil:
		cs.logger.Debug("Consumer", "Recognized text submitted", details)
	case errors.Is(err, diary.ErrBusy):
		// A typed entry for the same session is still being answered.
		cs.logger.Warn("Consumer", "Reply still pending, recognized text dropped", details)
	case errors.Is(err, serverutils.ErrNotFound):
		cs.logger.Warn("Consumer", "Session gone, recognized text dropped", details)
	default:
		details["error"] = err
		cs.logger.Error("Consumer", "Failed to submit recognized text", details)
	}
}
