package recognition

import (
	"context"
	"strings"
)

// DeviceProvider trusts the transcript produced by the device's own vision
// framework. Custom words are matched case-insensitively and rewritten to
// their canonical spelling.
type DeviceProvider struct {
	opts Options
}

var _ Provider = (*DeviceProvider)(nil)

func NewDeviceProvider(opts Options) *DeviceProvider {
	return &DeviceProvider{opts: opts}
}

func (p *DeviceProvider) Recognize(_ context.Context, snapshot Snapshot) (Result, error) {
	if snapshot.Empty() {
		return Result{}, ErrNoSnapshot
	}

	text := JoinLines(snapshot.DeviceLines)
	if text == "" {
		return Result{}, nil
	}
	if len(p.opts.CustomWords) > 0 {
		text = applyCustomWords(text, p.opts.CustomWords)
	}
	return Result{Text: text, OK: true}, nil
}

func applyCustomWords(text string, words []string) string {
	canonical := make(map[string]string, len(words))
	for _, w := range words {
		canonical[strings.ToLower(w)] = w
	}

	fields := strings.Fields(text)
	for i, f := range fields {
		if c, ok := canonical[strings.ToLower(f)]; ok {
			fields[i] = c
		}
	}
	return strings.Join(fields, " ")
}
