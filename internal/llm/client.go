// Package llm defines the chat backend interface and its HTTP adapters.
//
// Each adapter owns its provider's wire schema end to end: request
// construction from a backend-agnostic Request, and plain-text extraction
// from the provider response. Nothing outside this package knows either
// JSON shape.
package llm

import "context"

// Role constants for messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single prior turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WebPage is scraped page content folded into the prompt.
type WebPage struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Request is the backend-agnostic input for one chat turn. History holds
// the recent message window unmodified; UserText is the effective user
// message before any backend-specific shaping.
type Request struct {
	System      string
	History     []Message
	UserText    string
	NoteContext string
	ImageURLs   []string
	Pages       []WebPage
	MaxTokens   int
}

// Client is the interface both chat backends implement.
type Client interface {
	// Generate sends one turn and returns the extracted assistant text.
	// A provider that succeeds without extractable text yields a fixed
	// placeholder rather than an error.
	Generate(ctx context.Context, req Request) (string, error)

	// Name returns the backend name ("claude" or "grok").
	Name() string
}

// placeholderReply is returned when a provider responds successfully but
// yields no extractable text.
const placeholderReply = "I apologize, but I could not generate a response."
