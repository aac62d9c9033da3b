package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, ErrAuth},
		{429, ErrRateLimit},
		{500, ErrServer},
		{503, ErrServer},
		{400, ErrTransport},
		{418, ErrTransport},
	}
	for _, tt := range tests {
		err := StatusError(tt.status, []byte(`{"error":"x"}`))
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)

		var apiErr *APIError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tt.status, apiErr.Status)
	}

	assert.NoError(t, StatusError(200, nil))
	assert.NoError(t, StatusError(204, nil))
}

func TestAPIError_TruncatesBody(t *testing.T) {
	err := StatusError(500, []byte(strings.Repeat("a", 1000)))
	assert.Less(t, len(err.Error()), 400)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "auth", Kind(StatusError(401, nil)))
	assert.Equal(t, "rate_limit", Kind(StatusError(429, nil)))
	assert.Equal(t, "server", Kind(StatusError(502, nil)))
	assert.Equal(t, "transport", Kind(TransportError("dial", errors.New("refused"))))
	assert.Equal(t, "unknown", Kind(errors.New("other")))
}

func TestApplyOptions(t *testing.T) {
	defaults := Options{Temperature: 0.7, MaxTokens: 1000, Model: "m", System: "s"}

	assert.Equal(t, defaults, Apply(defaults))

	got := Apply(defaults, WithTemperature(0), WithModel("other"), WithMaxTokens(10), WithSystem("sys"))
	assert.Equal(t, Options{Temperature: 0, MaxTokens: 10, Model: "other", System: "sys"}, got)
}
