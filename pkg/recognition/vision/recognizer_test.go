package vision

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"magic-diary-be/pkg/llm"
	"magic-diary-be/pkg/recognition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageBody(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       DefaultModel,
		"content":     []map[string]string{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 3},
	})
	return string(b)
}

func newTestRecognizer(t *testing.T, status int, body string, got *map[string]interface{}) *Recognizer {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		if got != nil {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return NewRecognizer(Config{
		APIKey:  "sk-ant-test",
		BaseURL: srv.URL + "/",
		Options: recognition.DefaultOptions(),
	}, srv.Client(), nil)
}

func TestRecognize_Transcribes(t *testing.T) {
	var req map[string]interface{}
	r := newTestRecognizer(t, 200, messageBody("Dear diary,\nI saw a cat"), &req)

	res, err := r.Recognize(context.Background(), recognition.Snapshot{Image: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "Dear diary, I saw a cat", res.Text)

	assert.Equal(t, DefaultModel, req["model"])
	assert.EqualValues(t, maxTranscriptTokens, req["max_tokens"])
}

func TestRecognize_IllegibleMapsToSentinel(t *testing.T) {
	r := newTestRecognizer(t, 200, messageBody("ILLEGIBLE"), nil)

	res, err := r.Recognize(context.Background(), recognition.Snapshot{Image: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, recognition.IllegibleSentinel, res.Text)
	assert.True(t, recognition.IsIllegible(res.Text))
}

func TestRecognize_StatusMapping(t *testing.T) {
	r := newTestRecognizer(t, 429, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, nil)

	_, err := r.Recognize(context.Background(), recognition.Snapshot{Image: []byte{1}})
	assert.ErrorIs(t, err, llm.ErrRateLimit)
}

func TestRecognize_FallsBackToDeviceLines(t *testing.T) {
	r := NewRecognizer(Config{APIKey: "sk-ant-test"}, nil, nil)

	res, err := r.Recognize(context.Background(), recognition.Snapshot{DeviceLines: []string{"hello", "world"}})
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)

	_, err = r.Recognize(context.Background(), recognition.Snapshot{})
	assert.ErrorIs(t, err, recognition.ErrNoSnapshot)
}

func TestInstructions(t *testing.T) {
	opts := recognition.DefaultOptions()
	opts.CustomWords = []string{"Riddle"}
	got := Instructions(opts)

	assert.Contains(t, got, "ILLEGIBLE")
	assert.Contains(t, got, "en-US")
	assert.Contains(t, got, "10%")
	assert.Contains(t, got, "Riddle")
	assert.Contains(t, got, "Favor accuracy.")

	opts.Level = recognition.LevelFast
	opts.UsesLanguageCorrection = false
	got = Instructions(opts)
	assert.Contains(t, got, "Do not correct spelling.")
	assert.Contains(t, got, "Favor speed")
}
