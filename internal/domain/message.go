package domain

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AttachmentType classifies a message attachment.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentLink  AttachmentType = "link"
)

// Attachment is a tagged variant attached to a user message. Image
// attachments carry an opaque blob reference; link attachments carry a URL
// plus optionally a resolved title and pre-scraped content. Attachments feed
// context assembly for the turn they were sent in; once persisted they are
// display-only.
type Attachment struct {
	Type           AttachmentType `json:"type"`
	BlobRef        string         `json:"blobRef,omitempty"`
	URL            string         `json:"url,omitempty"`
	Title          string         `json:"title,omitempty"`
	ScrapedContent string         `json:"scrapedContent,omitempty"`
}

// Message is a single immutable turn in a chat session.
type Message struct {
	Role        string       `json:"role"` // "user" | "assistant"
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
