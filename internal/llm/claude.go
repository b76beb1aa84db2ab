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

// ClaudeClient is the multimodal chat backend speaking the Anthropic
// messages API. Image URLs are passed through as image blocks; scraped
// pages are rendered into the text block that follows them.
type ClaudeClient struct {
	// BaseURL may be overridden for tests.
	BaseURL string

	apiKey string
	model  string
	client *http.Client
	log    *logging.Logger
}

// NewClaudeClient creates a Claude chat backend.
func NewClaudeClient(apiKey, model string, log *logging.Logger) *ClaudeClient {
	return &ClaudeClient{
		BaseURL: "https://api.anthropic.com",
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		log:     log.Sub("llm.claude"),
	}
}

// Name returns the backend name.
func (c *ClaudeClient) Name() string { return "claude" }

// Generate sends one chat turn and returns the extracted assistant text.
func (c *ClaudeClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", &ConfigError{Missing: "anthropicApiKey"}
	}

	inv := TieredInvoker[string]{
		Variants: []string{c.model},
		Invoke: func(ctx context.Context, variant string) (string, error) {
			return c.sendOnce(ctx, variant, req)
		},
		Log: c.log,
	}
	return inv.Do(ctx)
}

func (c *ClaudeClient) sendOnce(ctx context.Context, model string, req Request) (string, error) {
	body := map[string]any{
		"model":      model,
		"max_tokens": req.MaxTokens,
		"messages":   c.buildMessages(req),
	}
	if req.System != "" {
		body["system"] = req.System
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/messages", strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: "claude", Code: resp.StatusCode, Message: string(respBody)}
	}

	var result claudeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	for _, block := range result.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return placeholderReply, nil
}

// buildMessages maps the history window unmodified and appends the final
// user turn. When images or scraped pages exist, the final turn becomes a
// structured content payload: image blocks first, then one text block.
func (c *ClaudeClient) buildMessages(req Request) []map[string]any {
	messages := make([]map[string]any, 0, len(req.History)+1)
	for _, m := range req.History {
		messages = append(messages, map[string]any{
			"role":    m.Role,
			"content": m.Content,
		})
	}

	var content any
	if len(req.ImageURLs) > 0 || len(req.Pages) > 0 {
		blocks := make([]map[string]any, 0, len(req.ImageURLs)+1)
		for _, imageURL := range req.ImageURLs {
			blocks = append(blocks, map[string]any{
				"type": "image",
				"source": map[string]any{
					"type": "url",
					"url":  imageURL,
				},
			})
		}
		blocks = append(blocks, map[string]any{
			"type": "text",
			"text": req.UserText + RenderPages(req.Pages),
		})
		content = blocks
	} else {
		content = req.NoteContext + req.UserText
	}

	return append(messages, map[string]any{
		"role":    RoleUser,
		"content": content,
	})
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Model      string `json:"model"`
}

// RenderPages formats scraped pages as a referenced-content section for
// inclusion after the user's message. Empty input renders nothing.
func RenderPages(pages []WebPage) string {
	if len(pages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n---\n\n**Referenced Content:**\n\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "### %s\n*Source: %s*\n\n%s\n\n---\n\n", p.Title, p.URL, p.Content)
	}
	return b.String()
}
