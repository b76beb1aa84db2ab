package chat

import (
	"fmt"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/llm"
	"github.com/mkessel/daynote/internal/logging"
)

// Router maps a model selector to one of the chat backends. The backend
// set is closed: "claude" and "grok" are the only selectors, and an empty
// selector falls back to the configured default.
type Router struct {
	backends     map[string]llm.Client
	defaultModel string
}

// NewRouter builds the backend set from config.
func NewRouter(cfg config.LLMConfig, log *logging.Logger) *Router {
	return &Router{
		backends: map[string]llm.Client{
			"claude": llm.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, log),
			"grok":   llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, log),
		},
		defaultModel: cfg.DefaultModel,
	}
}

// NewRouterWith builds a router over explicit backends, keyed by Name.
// Used by tests to substitute mock backends.
func NewRouterWith(defaultModel string, backends ...llm.Client) *Router {
	m := make(map[string]llm.Client, len(backends))
	for _, b := range backends {
		m[b.Name()] = b
	}
	return &Router{backends: m, defaultModel: defaultModel}
}

// Route resolves a model selector to a backend. An empty selector routes
// to the default model.
func (r *Router) Route(model string) (llm.Client, error) {
	if model == "" {
		model = r.defaultModel
	}
	backend, ok := r.backends[model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	return backend, nil
}
