package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"magic-diary-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string, got *ollamaChatRequest) *OllamaProvider {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			require.NoError(t, json.Unmarshal(raw, got))
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewOllamaProvider(srv.URL+"/", "llama3", "be a diary", 100)
}

func TestOllama_Complete(t *testing.T) {
	var req ollamaChatRequest
	p := serve(t, 200, `{"model":"llama3","message":{"role":"assistant","content":"hello"},"done":true}`, &req)

	reply, err := p.Complete(context.Background(), "hi", "User: a\nAssistant: b\n")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	assert.Equal(t, "llama3", req.Model)
	assert.False(t, req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "be a diary", req.Messages[0].Content)
	assert.Equal(t, "User: a\nAssistant: b\n\nUser: hi", req.Messages[1].Content)
	require.NotNil(t, req.Options)
	assert.Equal(t, 100, req.Options.NumPredict)
	assert.Equal(t, 0.7, req.Options.Temperature)
}

func TestOllama_EmptyReply(t *testing.T) {
	p := serve(t, 200, `{"message":{"role":"assistant","content":"  "},"done":true}`, nil)

	reply, err := p.Complete(context.Background(), "hi", "")
	require.NoError(t, err)
	assert.Equal(t, llm.ReplyNotUnderstood, reply)
}

func TestOllama_Errors(t *testing.T) {
	_, err := serve(t, 500, `boom`, nil).Complete(context.Background(), "hi", "")
	assert.ErrorIs(t, err, llm.ErrServer)

	_, err = serve(t, 200, `{"done":true}`, nil).Complete(context.Background(), "hi", "")
	assert.ErrorIs(t, err, llm.ErrTransport)

	_, err = serve(t, 200, `not json`, nil).Complete(context.Background(), "hi", "")
	assert.ErrorIs(t, err, llm.ErrTransport)
}
