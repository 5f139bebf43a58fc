package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func textResponse(texts ...string) map[string]any {
	parts := make([]map[string]string, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, map[string]string{"text": text})
	}
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": parts}},
		},
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BaseURL: "http://example.com"})
	assert.Error(t, err)

	_, err = New(Config{APIKey: "key"})
	assert.Error(t, err)

	client, err := New(Config{APIKey: "key", BaseURL: "http://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", client.baseURL)
}

func TestClient_GenerateText(t *testing.T) {
	var gotPath, gotKey string
	var gotRequest generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(textResponse("hello ", "world"))
	})

	text, err := client.GenerateText(context.Background(), "test-model", "say hi", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotRequest.Contents, 1)
	assert.Equal(t, "say hi", gotRequest.Contents[0].Parts[0].Text)
	assert.Nil(t, gotRequest.GenerationConfig)
}

func TestClient_GenerateText_JSONMode(t *testing.T) {
	var gotRequest generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(textResponse(`{"ok":true}`))
	})

	_, err := client.GenerateText(context.Background(), "test-model", "json please", GenerateOptions{JSONResponse: true})
	require.NoError(t, err)
	require.NotNil(t, gotRequest.GenerationConfig)
	assert.Equal(t, "application/json", gotRequest.GenerationConfig.ResponseMIMEType)
}

func TestClient_GenerateText_ServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded"},
		})
	})

	_, err := client.GenerateText(context.Background(), "test-model", "x", GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_GenerateText_EmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.GenerateText(context.Background(), "test-model", "x", GenerateOptions{})
	assert.Error(t, err)
}

func TestClient_StreamChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		var gotRequest generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		// History plus the new message, with the system prompt separate.
		require.Len(t, gotRequest.Contents, 3)
		require.NotNil(t, gotRequest.SystemInstruction)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, text := range []string{"Good ", "evening, ", "listener!"} {
			payload, _ := json.Marshal(textResponse(text))
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	history := []Message{
		{Role: "user", Text: "hi"},
		{Role: "model", Text: "hey there"},
	}
	chunks, err := client.StreamChat(context.Background(), "test-model", "be friendly", history, "what's up?")
	require.NoError(t, err)

	var got []string
	for chunk := range chunks {
		require.NoError(t, chunk.Err)
		got = append(got, chunk.Text)
	}
	assert.Equal(t, []string{"Good ", "evening, ", "listener!"}, got)
}

func TestClient_StreamChat_SkipsUnparsableEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {garbage\n\n")
		payload, _ := json.Marshal(textResponse("still here"))
		fmt.Fprintf(w, "data: %s\n\n", payload)
	})

	chunks, err := client.StreamChat(context.Background(), "test-model", "", nil, "hi")
	require.NoError(t, err)

	var got []string
	for chunk := range chunks {
		require.NoError(t, chunk.Err)
		got = append(got, chunk.Text)
	}
	assert.Equal(t, []string{"still here"}, got)
}

func TestClient_StreamChat_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 403, "message": "key rejected"},
		})
	})

	_, err := client.StreamChat(context.Background(), "test-model", "", nil, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key rejected")
}
