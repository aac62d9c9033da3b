package prompt

import (
	"strings"

	"magic-diary-be/pkg/store"
)

const (
	userMarker      = "User: "
	assistantMarker = "Assistant: "
)

// Serialize renders turns as the transcript fed back to the model as context.
// Each turn yields a "User:" line and, once resolved, an "Assistant:" line.
func Serialize(turns []store.Turn) string {
	var b strings.Builder

	for _, t := range turns {
		b.WriteString(userMarker)
		b.WriteString(t.UserText)
		b.WriteString("\n")
		if t.AssistantReply != nil {
			b.WriteString(assistantMarker)
			b.WriteString(*t.AssistantReply)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// ComposeUserMessage builds the single user message sent to the model.
// With no context the message is sent as is; otherwise the transcript comes
// first, then a blank line and the new message under the user marker.
func ComposeUserMessage(conversationContext, userMessage string) string {
	trimmed := strings.TrimRight(conversationContext, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return userMessage
	}

	var b strings.Builder
	b.WriteString(trimmed)
	b.WriteString("\n\n")
	b.WriteString(userMarker)
	b.WriteString(userMessage)
	return b.String()
}
