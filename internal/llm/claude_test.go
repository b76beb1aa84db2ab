package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessel/daynote/internal/logging"
)

func testClaude(t *testing.T, handler http.HandlerFunc) *ClaudeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClaudeClient("test-key", "claude-test", logging.New(nil, "silent"))
	c.BaseURL = srv.URL
	return c
}

func TestClaude_MissingKey(t *testing.T) {
	c := NewClaudeClient("", "claude-test", logging.New(nil, "silent"))

	_, err := c.Generate(context.Background(), Request{UserText: "hi"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "anthropicApiKey", cfgErr.Missing)
}

func TestClaude_ExtractsFirstTextBlock(t *testing.T) {
	c := testClaude(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "tool_use"},
				{"type": "text", "text": "hello back"},
			},
		})
	})

	reply, err := c.Generate(context.Background(), Request{UserText: "hi", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
}

func TestClaude_EmptyContentYieldsPlaceholder(t *testing.T) {
	c := testClaude(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
	})

	reply, err := c.Generate(context.Background(), Request{UserText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, placeholderReply, reply)
}

func TestClaude_ProviderError(t *testing.T) {
	c := testClaude(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), Request{UserText: "hi"})
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "claude", provErr.Provider)
	assert.Equal(t, http.StatusServiceUnavailable, provErr.Code)
}

func TestClaude_MultimodalTurnShape(t *testing.T) {
	var captured map[string]any
	c := testClaude(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	})

	_, err := c.Generate(context.Background(), Request{
		System:   "be helpful",
		History:  []Message{{Role: "user", Content: "earlier"}, {Role: "assistant", Content: "sure"}},
		UserText: "what is this?",
		ImageURLs: []string{
			"http://blobs.local/a.png",
			"http://blobs.local/b.png",
		},
		Pages:     []WebPage{{URL: "https://example.com", Title: "Example", Content: "page text"}},
		MaxTokens: 512,
	})
	require.NoError(t, err)

	assert.Equal(t, "be helpful", captured["system"])
	assert.Equal(t, float64(512), captured["max_tokens"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 3)

	final := messages[2].(map[string]any)
	assert.Equal(t, "user", final["role"])

	blocks := final["content"].([]any)
	require.Len(t, blocks, 3) // two images then one text block

	first := blocks[0].(map[string]any)
	assert.Equal(t, "image", first["type"])
	assert.Equal(t, "http://blobs.local/a.png", first["source"].(map[string]any)["url"])

	text := blocks[2].(map[string]any)
	assert.Equal(t, "text", text["type"])
	assert.Contains(t, text["text"], "what is this?")
	assert.Contains(t, text["text"], "**Referenced Content:**")
	assert.Contains(t, text["text"], "Source: https://example.com")
}

func TestClaude_PlainTurnIncludesNoteContext(t *testing.T) {
	var captured map[string]any
	c := testClaude(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	})

	_, err := c.Generate(context.Background(), Request{
		UserText:    "remind me",
		NoteContext: "\n\nnotes here\n\n",
	})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	final := messages[0].(map[string]any)
	content, ok := final["content"].(string)
	require.True(t, ok, "plain turn should be a string, not blocks")
	assert.Contains(t, content, "notes here")
	assert.Contains(t, content, "remind me")
}

func TestRenderPages_Empty(t *testing.T) {
	assert.Empty(t, RenderPages(nil))
}
