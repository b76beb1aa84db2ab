package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkessel/daynote/internal/logging"
)

// groqTemperature is the conservative default for the text-only backend.
const groqTemperature = 0.7

// GroqClient is the text-only chat backend speaking the OpenAI-compatible
// chat completions API. Note context, scraped pages, and an explicit notice
// for unsupported images are all flattened into the final user turn.
type GroqClient struct {
	// BaseURL may be overridden for tests.
	BaseURL string

	apiKey string
	model  string
	client *http.Client
	log    *logging.Logger
}

// NewGroqClient creates a Groq chat backend.
func NewGroqClient(apiKey, model string, log *logging.Logger) *GroqClient {
	return &GroqClient{
		BaseURL: "https://api.groq.com/openai",
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		log:     log.Sub("llm.groq"),
	}
}

// Name returns the backend name.
func (g *GroqClient) Name() string { return "grok" }

// Generate sends one chat turn and returns the extracted assistant text.
func (g *GroqClient) Generate(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", &ConfigError{Missing: "groqApiKey"}
	}

	inv := TieredInvoker[string]{
		Variants: []string{g.model},
		Invoke: func(ctx context.Context, variant string) (string, error) {
			return g.sendOnce(ctx, variant, req)
		},
		Log: g.log,
	}
	return inv.Do(ctx)
}

func (g *GroqClient) sendOnce(ctx context.Context, model string, req Request) (string, error) {
	body := map[string]any{
		"model":       model,
		"messages":    g.buildMessages(req),
		"temperature": groqTemperature,
		"max_tokens":  req.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/v1/chat/completions", strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: "grok", Code: resp.StatusCode, Message: string(respBody)}
	}

	var result groqResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return placeholderReply, nil
	}
	return result.Choices[0].Message.Content, nil
}

// buildMessages flattens everything into text: the history window followed
// by a single composed user turn.
func (g *GroqClient) buildMessages(req Request) []Message {
	messages := make([]Message, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, req.History...)

	content := req.NoteContext + req.UserText
	if n := len(req.ImageURLs); n > 0 {
		content += fmt.Sprintf("\n\n[Note: %d image(s) attached but vision processing not available with current model]", n)
	}
	content += RenderPages(req.Pages)

	return append(messages, Message{Role: RoleUser, Content: content})
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
