package diary

import "errors"

// Fixed in-character replies. Failures never reach the writer as raw errors.
const (
	// ReplyWriteClearly answers illegible handwriting without calling the model.
	ReplyWriteClearly = "I'm having trouble reading your handwriting. Could you please write more clearly and a bit larger?"

	// ReplyTrouble replaces any model failure in a conversation.
	ReplyTrouble = "I'm having trouble responding right now. Could you try writing again?"

	// ReplyTroubleUnderstanding replaces model failures in single-shot mode.
	ReplyTroubleUnderstanding = "The diary seems to be having trouble understanding your message..."
)

var (
	// ErrBusy is returned when text arrives while a reply is still pending.
	ErrBusy = errors.New("diary: a reply is still pending")

	// ErrEmptyText is returned for blank input; recognition filters it upstream.
	ErrEmptyText = errors.New("diary: recognized text is empty")
)
