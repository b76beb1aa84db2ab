package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mkessel/daynote/internal/logging"
)

// transcribePrompt is the fixed instruction sent alongside the audio.
const transcribePrompt = "Transcribe the spoken words in this audio clearly and accurately. " +
	"Only return the transcription, no commentary or additional text."

// Transcriber converts recorded audio to text via the Gemini generateContent
// API, trying model variants in priority order through the tiered invoker.
type Transcriber struct {
	// BaseURL may be overridden for tests.
	BaseURL string

	apiKey string
	models []string
	client *http.Client
	log    *logging.Logger
}

// NewTranscriber creates a transcription client over the given model tiers.
func NewTranscriber(apiKey string, models []string, log *logging.Logger) *Transcriber {
	return &Transcriber{
		BaseURL: "https://generativelanguage.googleapis.com",
		apiKey:  apiKey,
		models:  models,
		client:  &http.Client{Timeout: 120 * time.Second},
		log:     log.Sub("llm.transcribe"),
	}
}

// Transcribe sends base64-encoded webm audio and returns the trimmed
// transcript. An empty transcript from a successful call is not an error.
func (t *Transcriber) Transcribe(ctx context.Context, audioBase64 string) (string, error) {
	if t.apiKey == "" {
		return "", &ConfigError{Missing: "geminiApiKey"}
	}

	inv := TieredInvoker[string]{
		Variants: t.models,
		Invoke: func(ctx context.Context, variant string) (string, error) {
			return t.sendOnce(ctx, variant, audioBase64)
		},
		Log: t.log,
	}
	return inv.Do(ctx)
}

func (t *Transcriber) sendOnce(ctx context.Context, model, audioBase64 string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": transcribePrompt},
					{"inline_data": map[string]any{
						"mime_type": "audio/webm",
						"data":      audioBase64,
					}},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     0.1,
			"maxOutputTokens": 2048,
			"topP":            0.95,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		t.BaseURL, model, url.QueryEscape(t.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: "gemini", Code: resp.StatusCode, Message: string(respBody)}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", nil
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			return strings.TrimSpace(part.Text), nil
		}
	}
	return "", nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}
