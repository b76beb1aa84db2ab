package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/domain"
)

func TestBuildSystemPrompt_JoinsSections(t *testing.T) {
	cfg := config.ChatConfig{
		PromptStyle:   "style section",
		PromptContext: "context section",
		PromptRules:   "rules section",
	}

	prompt := BuildSystemPrompt(cfg)
	assert.Equal(t, "style section\n\n---\n\ncontext section\n\n---\n\nrules section", prompt)
}

func TestBuildSystemPrompt_SkipsEmptySections(t *testing.T) {
	cfg := config.ChatConfig{
		PromptStyle: "style only",
		PromptRules: "  ",
	}

	prompt := BuildSystemPrompt(cfg)
	assert.Equal(t, "style only", prompt)
	assert.NotContains(t, prompt, "---")
}

func TestBuildSystemPrompt_FallsBack(t *testing.T) {
	cfg := config.ChatConfig{FallbackPrompt: "be brief"}
	assert.Equal(t, "be brief", BuildSystemPrompt(cfg))
}

func TestRenderNoteContext(t *testing.T) {
	notes := []domain.Note{
		{Title: "One", Content: "first body"},
		{Title: "Two", Content: "second body"},
	}

	out := RenderNoteContext(notes)
	assert.True(t, strings.HasPrefix(out, "\n\n---\n\n**User's Notes for Reference:**\n\n"))
	assert.Contains(t, out, "### One\nfirst body")
	assert.Contains(t, out, "### Two\nsecond body")
}

func TestRenderNoteContext_Empty(t *testing.T) {
	assert.Empty(t, RenderNoteContext(nil))
}
