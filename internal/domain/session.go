// Package domain holds the core data types shared across daynote.
package domain

import (
	"strings"
	"time"
)

// ChatSession is one owner's conversation thread for a given date key.
// Its message sequence is append-only: corrections happen by appending new
// messages, never by editing history. SearchBlob is the space-joined
// concatenation of every message's content in append order, a redundant
// cache recomputable from the messages alone.
type ChatSession struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Messages      []Message `json:"messages,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	SearchBlob    string    `json:"searchBlob,omitempty"`
}

// RecomputeSearchBlob derives the search blob from the message sequence.
// The stored blob must always equal this value.
func (s *ChatSession) RecomputeSearchBlob() string {
	texts := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		texts = append(texts, m.Content)
	}
	return strings.Join(texts, " ")
}

// AppendSearchBlob extends an existing blob with one more message text.
func AppendSearchBlob(blob, text string) string {
	if blob == "" {
		return text
	}
	return blob + " " + text
}
