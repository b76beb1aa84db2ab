package llm

import (
	"context"
	"fmt"

	"github.com/mkessel/daynote/internal/logging"
)

// TieredInvoker calls a sequence of named model variants in priority order,
// accepting the first that does not report "not found". Any other failure
// is fatal for the whole invocation. Steps are strictly sequential: a later
// variant is tried only after a definitive not-found signal from the prior
// one.
type TieredInvoker[T any] struct {
	// Variants are model names in priority order.
	Variants []string

	// Invoke performs one call against a single variant.
	Invoke func(ctx context.Context, variant string) (T, error)

	// TryNext classifies an error: true advances to the next variant,
	// false aborts. When nil, IsNotFound is used.
	TryNext func(error) bool

	Log *logging.Logger
}

// Do runs the fallback chain. If every variant is exhausted it fails with
// ErrAllVariantsExhausted.
func (t TieredInvoker[T]) Do(ctx context.Context) (T, error) {
	var zero T

	tryNext := t.TryNext
	if tryNext == nil {
		tryNext = IsNotFound
	}

	for _, variant := range t.Variants {
		result, err := t.Invoke(ctx, variant)
		if err == nil {
			return result, nil
		}
		if !tryNext(err) {
			return zero, err
		}
		if t.Log != nil {
			t.Log.Warn().Str("variant", variant).Err(err).Msg("model variant not found, trying next")
		}
	}

	return zero, fmt.Errorf("%d variants tried: %w", len(t.Variants), ErrAllVariantsExhausted)
}
