// Package transcript renders a conversation as a human-readable export.
package transcript

import (
	"strings"

	"magic-diary-be/pkg/store"
)

// Header opens every export.
const Header = "Magical Diary - Conversation Export\n\n"

// Export renders one "You:"/"Diary:" block per turn, in chronological order.
// Pending turns have no "Diary:" line.
func Export(turns []store.Turn) string {
	var b strings.Builder
	b.WriteString(Header)

	for _, t := range turns {
		b.WriteString("You: ")
		b.WriteString(t.UserText)
		b.WriteString("\n")
		if t.AssistantReply != nil {
			b.WriteString("Diary: ")
			b.WriteString(*t.AssistantReply)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}
