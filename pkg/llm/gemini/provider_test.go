package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-agent-be/pkg/llm"
)

func newTestProvider(handler http.HandlerFunc) (*GeminiProvider, *httptest.Server) {
	srv := httptest.NewServer(handler)
	provider := NewGeminiProvider("test-key", "gemini-2.5-flash")
	provider.BaseURL = srv.URL
	return provider, srv
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	provider, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"PermitRootLogin must be no."}],"role":"model"}}]}`))
	})
	defer srv.Close()

	answer, err := provider.Generate(context.Background(), "What does CCE-001 require?")
	require.NoError(t, err)
	assert.Equal(t, "PermitRootLogin must be no.", answer)
}

func TestChatMapsAssistantRole(t *testing.T) {
	var seenBody string
	provider, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		seenBody = string(buf)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})
	defer srv.Close()

	_, err := provider.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Contains(t, seenBody, `"role":"model"`)
	assert.NotContains(t, seenBody, `"role":"assistant"`)
}

func TestGenerateFailureIsTagged(t *testing.T) {
	provider, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})
	defer srv.Close()

	_, err := provider.Generate(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrGenerationFailure))
}

func TestGenerateEmptyCandidates(t *testing.T) {
	provider, srv := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})
	defer srv.Close()

	_, err := provider.Generate(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrGenerationFailure))
}
