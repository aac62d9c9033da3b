// Package recognition turns a rendered snapshot of pen strokes into text.
//
// The heavy lifting belongs to a vendor: either the device's own vision
// framework, whose transcript travels with the snapshot, or a hosted vision
// model. This package only defines the contract, the tuning knobs and the
// sentinel that marks illegible input.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// IllegibleSentinel is the text the recognition pipeline emits when the
// strokes could not be read. The orchestrator short-circuits on it.
const IllegibleSentinel = "I don't understand what you wrote"

// IsIllegible reports whether text carries the illegible sentinel.
func IsIllegible(text string) bool {
	return strings.Contains(text, IllegibleSentinel)
}

// ErrNoSnapshot is returned when a snapshot carries neither image nor transcript.
var ErrNoSnapshot = errors.New("recognition: empty snapshot")

// Level trades accuracy for speed.
type Level string

const (
	LevelFast     Level = "fast"
	LevelAccurate Level = "accurate"
)

func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case LevelFast:
		return LevelFast, nil
	case LevelAccurate, "":
		return LevelAccurate, nil
	default:
		return "", fmt.Errorf("unknown recognition level %q", s)
	}
}

// Options are tuning knobs, not part of the core contract.
type Options struct {
	Level                  Level
	Languages              []string
	MinimumTextHeight      float64 // fraction of the image height
	UsesLanguageCorrection bool
	CustomWords            []string
}

func DefaultOptions() Options {
	return Options{
		Level:                  LevelAccurate,
		Languages:              []string{"en-US"},
		MinimumTextHeight:      0.1,
		UsesLanguageCorrection: true,
	}
}

// Snapshot is the rendered canvas at the moment the debounce fired.
type Snapshot struct {
	// Image is a PNG rendering of the strokes' bounding box.
	Image []byte
	// DeviceLines are the top candidates of on-device recognition, one per
	// observed line, when the device already ran its own recognizer.
	DeviceLines []string
	// StrokeCount lets providers skip blank canvases.
	StrokeCount int
}

func (s Snapshot) Empty() bool {
	return len(s.Image) == 0 && len(s.DeviceLines) == 0
}

// Result is the best-guess transcription. OK is false when nothing was read.
type Result struct {
	Text string
	OK   bool
}

// Provider recognizes handwriting in a snapshot.
type Provider interface {
	Recognize(ctx context.Context, snapshot Snapshot) (Result, error)
}

// JoinLines joins observed lines with single spaces, dropping blanks.
func JoinLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}
