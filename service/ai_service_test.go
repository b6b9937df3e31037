package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/types"
)

func newOpenAITestServer(t *testing.T, status int, body string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			if gotPrompt != nil {
				*gotPrompt = req.Messages[0].Content
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIService_Generate(t *testing.T) {
	var gotPrompt string
	srv := newOpenAITestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "test-model",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Kathmandu  \n"}, "finish_reason": "stop"}]
	}`, &gotPrompt)

	ai := NewOpenAIService(srv.URL+"/v1", "sk-test", "test-model")
	out, err := ai.Generate(context.Background(), "What is the capital of Nepal?")
	require.NoError(t, err)
	assert.Equal(t, "Kathmandu", out)
	assert.Equal(t, "What is the capital of Nepal?", gotPrompt)
}

func TestOpenAIService_GenerateNoChoices(t *testing.T) {
	srv := newOpenAITestServer(t, http.StatusOK, `{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`, nil)

	ai := NewOpenAIService(srv.URL+"/v1", "sk-test", "test-model")
	_, err := ai.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, types.ErrGeneration)
}

func TestOpenAIService_GenerateProviderError(t *testing.T) {
	srv := newOpenAITestServer(t, http.StatusInternalServerError,
		`{"error": {"message": "upstream exploded", "type": "server_error"}}`, nil)

	ai := NewOpenAIService(srv.URL+"/v1", "sk-test", "test-model")
	_, err := ai.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrGeneration)
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestNewGeminiService_NoKeys(t *testing.T) {
	_, err := NewGeminiService(context.Background(), nil, "", nil)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("  Namaste "), genai.Text("world\n")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Namaste world", text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
}

func TestGeminiService_RotateAPIKey(t *testing.T) {
	ctx := context.Background()
	gemini, err := NewGeminiService(ctx, []string{"key-a", "key-b"}, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gemini.Close() })

	first := gemini.client
	require.NoError(t, gemini.rotateAPIKey(ctx))
	assert.Equal(t, 1, gemini.keyIndex())
	assert.NotSame(t, first, gemini.client)

	require.NoError(t, gemini.rotateAPIKey(ctx))
	assert.Equal(t, 0, gemini.keyIndex())
}

func TestGeminiService_SingleKeyDoesNotRotate(t *testing.T) {
	ctx := context.Background()
	gemini, err := NewGeminiService(ctx, []string{"only-key"}, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gemini.Close() })

	client := gemini.client
	require.NoError(t, gemini.rotateAPIKey(ctx))
	assert.Equal(t, 0, gemini.keyIndex())
	assert.Same(t, client, gemini.client)
}

func TestGeminiService_CancelledCallKeepsKey(t *testing.T) {
	gemini, err := NewGeminiService(context.Background(), []string{"key-a", "key-b"}, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gemini.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = gemini.Generate(ctx, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrGeneration)
	assert.Equal(t, 0, gemini.keyIndex())
}
