package ai

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFallbackOracleDegradesErrorsToZero(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	inner := OracleFunc(func(_ context.Context, _, _ string) (float64, error) {
		return 0, errors.New("quota exceeded")
	})
	oracle := NewFallbackOracle(inner, time.Second, zap.New(core))

	score, err := oracle.Similarity(context.Background(), "kubernetes", "k8s")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	entries := logs.FilterMessage("similarity degraded to zero").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "custom", entries[0].ContextMap()["oracle"])
	assert.Equal(t, "kubernetes", entries[0].ContextMap()["text_a"])
}

func TestFallbackOracleAppliesTimeout(t *testing.T) {
	t.Parallel()

	inner := OracleFunc(func(ctx context.Context, _, _ string) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	oracle := NewFallbackOracle(inner, 10*time.Millisecond, zap.NewNop())

	score, err := oracle.Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestFallbackOracleClampsScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{name: "above range", raw: 150, want: 100},
		{name: "below range", raw: -3, want: 0},
		{name: "nan", raw: math.NaN(), want: 0},
		{name: "in range", raw: 73.5, want: 73.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			inner := OracleFunc(func(_ context.Context, _, _ string) (float64, error) { return raw, nil })
			score, err := NewFallbackOracle(inner, 0, nil).Similarity(context.Background(), "x", "y")
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestFallbackOracleWithoutInner(t *testing.T) {
	t.Parallel()

	score, err := NewFallbackOracle(nil, 0, nil).Similarity(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}
