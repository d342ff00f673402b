package ai

import (
	"context"
)

// Oracle scores the textual similarity of two strings in [0,100].
// Implementations must be symmetric: Similarity(a, b) == Similarity(b, a).
type Oracle interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, a, b string) (float64, error)

func (f OracleFunc) Similarity(ctx context.Context, a, b string) (float64, error) {
	return f(ctx, a, b)
}

// Named is implemented by oracles that can report a provider name for logging.
type Named interface {
	Name() string
}

// NameOf returns the provider name of the oracle or "custom".
func NameOf(o Oracle) string {
	if n, ok := o.(Named); ok {
		return n.Name()
	}
	return "custom"
}
