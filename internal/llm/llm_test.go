package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient(t *testing.T) {
	var got openAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization header: %q", auth)
		}
		got = openAIChatRequest{}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	c := NewOpenAIClient("sk-test", server.URL+"/", 5*time.Second)

	t.Run("json mode", func(t *testing.T) {
		text, err := c.Complete(context.Background(), Request{
			Model:       "gpt-test",
			System:      "persona",
			Messages:    []Message{{Role: RoleUser, Content: "hello"}},
			JSON:        true,
			Temperature: 0.3,
		})
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, text)

		assert.Equal(t, "gpt-test", got.Model)
		assert.InDelta(t, 0.3, got.Temperature, 1e-9)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "persona", got.Messages[0].Content)
		assert.Equal(t, Message{Role: RoleUser, Content: "hello"}, got.Messages[1])
		require.NotNil(t, got.ResponseFormat)
		assert.Equal(t, "json_object", got.ResponseFormat.Type)
	})

	t.Run("text mode omits system and response format", func(t *testing.T) {
		_, err := c.Complete(context.Background(), Request{
			Model:    "gpt-test",
			Messages: []Message{{Role: RoleUser, Content: "hello"}},
		})
		require.NoError(t, err)
		assert.Nil(t, got.ResponseFormat)
		require.Len(t, got.Messages, 1)
	})
}

func TestOpenAIClientErrors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewOpenAIClient("k", server.URL, time.Second).Complete(context.Background(), Request{Model: "m"})
		require.Error(t, err)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusServiceUnavailable, se.Status)
		assert.Contains(t, se.Body, "overloaded")
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		_, err := NewOpenAIClient("k", server.URL, time.Second).Complete(context.Background(), Request{Model: "m"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewOpenAIClient("k", url, time.Second).Complete(context.Background(), Request{Model: "m"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "request failed")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := NewOpenAIClient("k", server.URL, 50*time.Millisecond).Complete(context.Background(), Request{Model: "m"})
		require.Error(t, err)
	})
}

func TestOllamaClient(t *testing.T) {
	var got ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "# Report"},
		}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, time.Second)
	text, err := c.Complete(context.Background(), Request{
		Model:       "qwen2.5:7b",
		System:      "persona",
		Messages:    []Message{{Role: RoleUser, Content: "write"}},
		JSON:        true,
		Temperature: 0.6,
	})
	require.NoError(t, err)
	assert.Equal(t, "# Report", text)
	assert.Equal(t, "qwen2.5:7b", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "json", got.Format)
	assert.InDelta(t, 0.6, got.Options.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestOllamaClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllamaClient(server.URL, time.Second).Complete(context.Background(), Request{Model: "nope"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ollama", se.Provider)
	assert.Equal(t, http.StatusNotFound, se.Status)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", time.Second)
	require.Error(t, err)
}

func TestGeminiContentsRoles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "brief"},
		{Role: RoleAssistant, Content: "draft"},
		{Role: RoleUser, Content: "again"},
	})
	require.Len(t, contents, 3)

	var roles []string
	for _, c := range contents {
		roles = append(roles, c.Role)
		require.Len(t, c.Parts, 1)
	}
	assert.Equal(t, []string{"user", "model", "user"}, roles)
	assert.Equal(t, "draft", contents[1].Parts[0].Text)
}
