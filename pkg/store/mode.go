package store

import "fmt"

// Mode selects what the presentation layer shows. It never changes the
// conversation itself.
type Mode string

const (
	// ModeEphemeral shows only the latest turn ("magical" diary).
	ModeEphemeral Mode = "ephemeral"
	// ModePersistentLog shows the full history ("memory" diary).
	ModePersistentLog Mode = "persistent-log"
)

// ParseMode accepts the canonical names and the original UI labels.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeEphemeral), "magical":
		return ModeEphemeral, nil
	case string(ModePersistentLog), "memory":
		return ModePersistentLog, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}
