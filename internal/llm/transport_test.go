package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/prompt-builder/internal/core"
)

const chatCompletionBody = `{
	"id": "gen-1",
	"object": "chat.completion",
	"model": "openai/gpt-4.1-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "bonjour"}, "finish_reason": "stop"}]
}`

func TestOpenRouterCompleterRequest(t *testing.T) {
	var got map[string]any
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		header = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatCompletionBody)
	}))
	defer srv.Close()

	c := NewOpenRouterCompleter(Config{BaseURL: srv.URL})
	text, err := c.Complete(context.Background(), premium, Request{
		Messages: []Message{
			{Role: core.RoleSystem, Text: "sys"},
			{Role: core.RoleUser, Text: "salut"},
		},
		JSONMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)

	assert.Equal(t, "Bearer sk-test", header.Get("Authorization"))
	assert.Equal(t, "https://prompt-generator.app", header.Get("HTTP-Referer"))
	assert.Equal(t, "Générateur de Prompt IA", header.Get("X-Title"))

	assert.Equal(t, core.PremiumModelID, got["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "salut", messages[1].(map[string]any)["content"])
}

func TestOpenRouterCompleterOmitsResponseFormat(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		raw = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatCompletionBody)
	}))
	defer srv.Close()

	c := NewOpenRouterCompleter(Config{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), premium, Request{Messages: []Message{{Role: core.RoleUser, Text: "x"}}})
	require.NoError(t, err)
	assert.NotContains(t, raw, "response_format")
}

func TestOpenRouterCompleterImagePart(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatCompletionBody)
	}))
	defer srv.Close()

	img := &core.Image{Data: []byte("not really a png"), MIMEType: "image/png"}
	c := NewOpenRouterCompleter(Config{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), premium, Request{
		Messages: []Message{{Role: core.RoleUser, Text: "décris", Image: img}},
	})
	require.NoError(t, err)

	parts := got["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	imagePart := parts[1].(map[string]any)
	assert.Equal(t, "image_url", imagePart["type"])
	url := imagePart["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)
}

func TestOpenRouterCompleterImageOnly(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatCompletionBody)
	}))
	defer srv.Close()

	img := &core.Image{Data: []byte("RIFF\x1a\x00\x00\x00WEBPVP8L"), MIMEType: "image/webp"}
	c := NewOpenRouterCompleter(Config{BaseURL: srv.URL, MaxImageWidth: 1024})
	_, err := c.Complete(context.Background(), premium, Request{
		Messages: []Message{{Role: core.RoleUser, Text: "  ", Image: img}},
	})
	require.NoError(t, err)

	parts := got["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 1, "blank text is not sent")
	imagePart := parts[0].(map[string]any)
	assert.Equal(t, "image_url", imagePart["type"])
	url := imagePart["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/webp;base64,"), url)
}

func TestOpenRouterCompleterErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"No auth credentials found","code":401}}`},
		{"plain error", http.StatusBadGateway, `upstream down`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewOpenRouterCompleter(Config{BaseURL: srv.URL})
			_, err := c.Complete(context.Background(), premium, Request{Messages: []Message{{Role: core.RoleUser, Text: "x"}}})
			status, ok := IsTransport(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestOpenRouterCompleterNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","choices":[]}`)
	}))
	defer srv.Close()

	c := NewOpenRouterCompleter(Config{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), premium, Request{Messages: []Message{{Role: core.RoleUser, Text: "x"}}})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestAnthropicCompleter(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"salut"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer srv.Close()

	c := NewAnthropicCompleter(Config{BaseURL: srv.URL, MaxTokens: 512})
	text, err := c.Complete(context.Background(), core.APIConfig{APIKey: "sk-ant", Model: "claude-haiku"}, Request{
		Messages: []Message{
			{Role: core.RoleSystem, Text: "sys"},
			{Role: core.RoleUser, Text: "bonjour"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "salut", text)

	assert.Equal(t, "claude-haiku", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	system := got["system"].([]any)
	assert.Equal(t, "sys", system[0].(map[string]any)["text"])
	assert.Len(t, got["messages"], 1)
}

func TestAnthropicCompleterImageOnly(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`)
	}))
	defer srv.Close()

	img := &core.Image{Data: []byte("RIFF\x1a\x00\x00\x00WEBPVP8L"), MIMEType: "image/webp"}
	c := NewAnthropicCompleter(Config{BaseURL: srv.URL, MaxTokens: 512, MaxImageWidth: 1024})
	_, err := c.Complete(context.Background(), core.APIConfig{APIKey: "sk-ant", Model: "claude-haiku"}, Request{
		Messages: []Message{{Role: core.RoleUser, Image: img}},
	})
	require.NoError(t, err)

	content := got["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "image", content[0].(map[string]any)["type"])
}

func TestAnthropicCompleterError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	c := NewAnthropicCompleter(Config{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), core.APIConfig{APIKey: "k", Model: "m"}, Request{
		Messages: []Message{{Role: core.RoleUser, Text: "x"}},
	})
	status, ok := IsTransport(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, 1, calls)
}

func TestNewCompleter(t *testing.T) {
	c, err := NewCompleter(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, c.Name())

	c, err = NewCompleter(Config{Provider: "Anthropic"})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, c.Name())

	_, err = NewCompleter(Config{Provider: "gemini"})
	assert.Error(t, err)
}
