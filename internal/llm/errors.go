package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAllVariantsExhausted signals that every model variant in a tiered
// fallback chain reported "not found". It is distinct from a ProviderError:
// it means total unavailability of a capability, not a single bad response.
var ErrAllVariantsExhausted = errors.New("all model variants exhausted")

// ProviderError is a non-success response from an LLM or scraping backend.
type ProviderError struct {
	Provider string
	Code     int // HTTP status
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ConfigError indicates a missing credential. It is fatal, surfaced to the
// caller verbatim, and never retried.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return e.Missing + " not configured"
}

// IsNotFound reports whether err is a "model not found"-class provider
// response, the only failure that advances a tiered fallback chain.
func IsNotFound(err error) bool {
	var provErr *ProviderError
	return errors.As(err, &provErr) && provErr.Code == http.StatusNotFound
}
