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

func testGroq(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGroqClient("test-key", "llama-test", logging.New(nil, "silent"))
	g.BaseURL = srv.URL
	return g
}

func groqReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestGroq_MissingKey(t *testing.T) {
	g := NewGroqClient("", "llama-test", logging.New(nil, "silent"))

	_, err := g.Generate(context.Background(), Request{UserText: "hi"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "groqApiKey", cfgErr.Missing)
}

func TestGroq_ExtractsReply(t *testing.T) {
	g := testGroq(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(groqReply("hello back"))
	})

	reply, err := g.Generate(context.Background(), Request{UserText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
}

func TestGroq_EmptyChoicesYieldsPlaceholder(t *testing.T) {
	g := testGroq(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	reply, err := g.Generate(context.Background(), Request{UserText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, placeholderReply, reply)
}

func TestGroq_FlattensEverythingIntoText(t *testing.T) {
	var captured map[string]any
	g := testGroq(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(groqReply("ok"))
	})

	_, err := g.Generate(context.Background(), Request{
		System:      "be helpful",
		History:     []Message{{Role: "user", Content: "earlier"}},
		UserText:    "what about this?",
		NoteContext: "\n\nnotes here\n\n",
		ImageURLs:   []string{"http://blobs.local/a.png", "http://blobs.local/b.png"},
		Pages:       []WebPage{{URL: "https://example.com", Title: "Example", Content: "page text"}},
		MaxTokens:   256,
	})
	require.NoError(t, err)

	assert.Equal(t, groqTemperature, captured["temperature"])
	assert.Equal(t, float64(256), captured["max_tokens"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 3) // system, history, final turn

	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, "be helpful", system["content"])

	final := messages[2].(map[string]any)
	content := final["content"].(string)
	assert.Contains(t, content, "notes here")
	assert.Contains(t, content, "what about this?")
	assert.Contains(t, content, "2 image(s) attached but vision processing not available")
	assert.Contains(t, content, "**Referenced Content:**")
}

func TestGroq_ProviderError(t *testing.T) {
	g := testGroq(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := g.Generate(context.Background(), Request{UserText: "hi"})
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "grok", provErr.Provider)
}
