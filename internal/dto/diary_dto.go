package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=magical memory ephemeral persistent-log"`
}

type SessionResponse struct {
	Id        string    `json:"id"`
	Mode      string    `json:"mode"`
	Busy      bool      `json:"busy"`
	TurnCount int       `json:"turn_count"`
	CreatedAt time.Time `json:"created_at"`
}

type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=magical memory ephemeral persistent-log"`
}

type SubmitEntryRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// SubmitStrokesRequest carries one canvas change. Either a PNG of the canvas
// or the lines an on-device recognizer already produced.
type SubmitStrokesRequest struct {
	ImageBase64     string   `json:"image_base64,omitempty" validate:"required_without=TranscriptLines"`
	TranscriptLines []string `json:"transcript_lines,omitempty" validate:"required_without=ImageBase64,max=200"`
	StrokeCount     int      `json:"stroke_count,omitempty"`
}

type TurnResponse struct {
	Id             uuid.UUID  `json:"id"`
	UserText       string     `json:"user_text"`
	AssistantReply *string    `json:"assistant_reply"`
	Pending        bool       `json:"pending"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

type SubmitEntryResponse struct {
	Turn           TurnResponse `json:"turn"`
	Degraded       bool         `json:"degraded"`
	ShortCircuited bool         `json:"short_circuited"`
	Discarded      bool         `json:"discarded"`
}

type GetTurnsResponse struct {
	Mode  string         `json:"mode"`
	Busy  bool           `json:"busy"`
	Turns []TurnResponse `json:"turns"`
}

type OneShotRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type OneShotResponse struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}

// RecognizedTextMessage travels on the recognized-text topic.
type RecognizedTextMessage struct {
	SessionId string `json:"session_id"`
	Text      string `json:"text"`
}
