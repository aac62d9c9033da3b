package events

import (
	"context"
	"errors"
	"time"

	"magic-diary-be/pkg/store"
)

const (
	TypeTurnAppended        = "diary.turn_appended"
	TypeTurnResolved        = "diary.turn_resolved"
	TypeConversationReset   = "diary.conversation_reset"
	TypeBusyChanged         = "diary.busy_changed"
	TypeRecognitionComplete = "diary.recognition_completed"
)

// SessionID extracts the owning session of a diary event.
func SessionID(e Event) string {
	id, _ := e.Payload()["session_id"].(string)
	return id
}

func diaryEvent(eventType, sessionID string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["session_id"] = sessionID
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func TurnAppended(sessionID string, turn store.Turn) Event {
	return diaryEvent(TypeTurnAppended, sessionID, map[string]interface{}{"turn": turn})
}

func TurnResolved(sessionID string, turn store.Turn, degraded bool) Event {
	return diaryEvent(TypeTurnResolved, sessionID, map[string]interface{}{
		"turn":     turn,
		"degraded": degraded,
	})
}

func ConversationReset(sessionID string) Event {
	return diaryEvent(TypeConversationReset, sessionID, nil)
}

func BusyChanged(sessionID string, busy bool) Event {
	return diaryEvent(TypeBusyChanged, sessionID, map[string]interface{}{"busy": busy})
}

func RecognitionCompleted(sessionID, text string) Event {
	return diaryEvent(TypeRecognitionComplete, sessionID, map[string]interface{}{"text": text})
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
