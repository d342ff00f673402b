package gemini

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/hire-ranker/internal/model"
)

type vectorSource interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Oracle scores text similarity as the cosine of two embeddings scaled to [0,100].
type Oracle struct {
	embedder vectorSource
}

func NewOracle(embedder vectorSource) *Oracle {
	return &Oracle{embedder: embedder}
}

func (o *Oracle) Name() string { return "gemini" }

func (o *Oracle) Similarity(ctx context.Context, a, b string) (float64, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0, nil
	}
	if a == b {
		return 100, nil
	}

	left, err := o.embedder.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed first text: %w", err)
	}
	right, err := o.embedder.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed second text: %w", err)
	}

	return model.ClampScore(cosine(left, right) * 100), nil
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
