package service

import (
	"context"
	"encoding/json"
	"fmt"

	"magic-diary-be/internal/dto"
	"magic-diary-be/pkg/canvas"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// RecognizedTextTopic carries recognized handwriting to the consumer.
const RecognizedTextTopic = "diary.recognized_text"

type IPublisherService interface {
	canvas.Sink
	PublishRecognizedText(ctx context.Context, sessionID, text string) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
}

func NewPublisherService(publisher message.Publisher, topicName string) IPublisherService {
	if topicName == "" {
		topicName = RecognizedTextTopic
	}
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
	}
}

func (ps *publisherService) PublishRecognizedText(ctx context.Context, sessionID, text string) error {
	payload, err := json.Marshal(dto.RecognizedTextMessage{
		SessionId: sessionID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal recognized text: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := ps.publisher.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("failed to publish recognized text: %w", err)
	}
	return nil
}

// Deliver lets a canvas pipeline hand text straight to the topic.
func (ps *publisherService) Deliver(ctx context.Context, sessionID, text string) error {
	return ps.PublishRecognizedText(ctx, sessionID, text)
}
