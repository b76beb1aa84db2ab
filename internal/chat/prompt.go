package chat

import (
	"fmt"
	"strings"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/domain"
)

// promptSeparator joins the configured prompt sections and prefixes
// rendered note context.
const promptSeparator = "\n\n---\n\n"

// BuildSystemPrompt assembles the system prompt from the configured
// sections, joined in style, context, rules order. When every section is
// empty the fixed fallback prompt is used instead.
func BuildSystemPrompt(cfg config.ChatConfig) string {
	var parts []string
	for _, part := range []string{cfg.PromptStyle, cfg.PromptContext, cfg.PromptRules} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return cfg.FallbackPrompt
	}
	return strings.Join(parts, promptSeparator)
}

// RenderNoteContext formats referenced notes as a block appended to the
// user's message. Empty input renders nothing.
func RenderNoteContext(notes []domain.Note) string {
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(promptSeparator)
	b.WriteString("**User's Notes for Reference:**\n\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "### %s\n%s\n\n---\n\n", n.Title, n.Content)
	}
	return b.String()
}
