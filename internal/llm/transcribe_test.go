package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessel/daynote/internal/logging"
)

func testTranscriber(t *testing.T, models []string, handler http.HandlerFunc) *Transcriber {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tr := NewTranscriber("test-key", models, logging.New(nil, "silent"))
	tr.BaseURL = srv.URL
	return tr
}

func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestTranscriber_MissingKey(t *testing.T) {
	tr := NewTranscriber("", []string{"gemini-test"}, logging.New(nil, "silent"))

	_, err := tr.Transcribe(context.Background(), "aGVsbG8=")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "geminiApiKey", cfgErr.Missing)
}

func TestTranscriber_TrimsTranscript(t *testing.T) {
	tr := testTranscriber(t, []string{"gemini-test"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(geminiReply("  hello world \n"))
	})

	text, err := tr.Transcribe(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestTranscriber_FallsThroughTiersOnNotFound(t *testing.T) {
	var models []string
	tr := testTranscriber(t, []string{"tier-a", "tier-b", "tier-c"}, func(w http.ResponseWriter, r *http.Request) {
		model := strings.TrimPrefix(r.URL.Path, "/v1beta/models/")
		model = strings.TrimSuffix(model, ":generateContent")
		models = append(models, model)
		if model != "tier-c" {
			http.Error(w, "model not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(geminiReply("made it"))
	})

	text, err := tr.Transcribe(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "made it", text)
	assert.Equal(t, []string{"tier-a", "tier-b", "tier-c"}, models)
}

func TestTranscriber_FatalErrorStopsTiers(t *testing.T) {
	var calls int
	tr := testTranscriber(t, []string{"tier-a", "tier-b"}, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := tr.Transcribe(context.Background(), "aGVsbG8=")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Code)
}

func TestTranscriber_AllTiersExhausted(t *testing.T) {
	tr := testTranscriber(t, []string{"tier-a", "tier-b"}, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := tr.Transcribe(context.Background(), "aGVsbG8=")
	assert.ErrorIs(t, err, ErrAllVariantsExhausted)
}

func TestTranscriber_EmptyCandidates(t *testing.T) {
	tr := testTranscriber(t, []string{"gemini-test"}, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	text, err := tr.Transcribe(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.Empty(t, text)
}
