package matching

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hire-ranker/internal/ai"
)

func constantOracle(score float64) ai.Oracle {
	return ai.OracleFunc(func(context.Context, string, string) (float64, error) {
		return score, nil
	})
}

func tableOracle(scores map[[2]string]float64) ai.Oracle {
	return ai.OracleFunc(func(_ context.Context, a, b string) (float64, error) {
		if v, ok := scores[[2]string{a, b}]; ok {
			return v, nil
		}
		return scores[[2]string{b, a}], nil
	})
}

func TestSkillMatcherLowSimilarityLeavesSkillMissing(t *testing.T) {
	t.Parallel()

	matcher := NewSkillMatcher(constantOracle(40), 2, nil)

	got, err := matcher.Match(context.Background(), []string{"Python", "SQL"}, []string{"Python", "SQL", "AWS"})
	require.NoError(t, err)

	assert.Equal(t, 66.67, got.Score)
	assert.Equal(t, []string{"python", "sql"}, got.Matched)
	assert.Equal(t, []string{"aws"}, got.Missing)
	assert.Empty(t, got.Extra)
}

func TestSkillMatcherEmptyRequirementIsPerfect(t *testing.T) {
	t.Parallel()

	matcher := NewSkillMatcher(constantOracle(0), 1, nil)

	got, err := matcher.Match(context.Background(), []string{"Go", "Rust"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.Score)
	assert.Equal(t, []string{"go", "rust"}, got.Extra)
	assert.Empty(t, got.Missing)
}

func TestSkillMatcherThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		similarity  float64
		wantMatched []string
		wantMissing []string
		wantExtra   []string
	}{
		{name: "at threshold", similarity: 70, wantMatched: []string{"postgresql"}, wantMissing: []string{}, wantExtra: []string{}},
		{name: "below threshold", similarity: 69.99, wantMatched: []string{}, wantMissing: []string{"postgresql"}, wantExtra: []string{"postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matcher := NewSkillMatcher(constantOracle(tt.similarity), 1, nil)
			got, err := matcher.Match(context.Background(), []string{"postgres"}, []string{"PostgreSQL"})
			require.NoError(t, err)

			assert.Equal(t, tt.wantMatched, got.Matched)
			assert.Equal(t, tt.wantMissing, got.Missing)
			assert.Equal(t, tt.wantExtra, got.Extra)
		})
	}
}

func TestSkillMatcherTieBreakKeepsFirstCandidate(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	oracle := tableOracle(map[[2]string]float64{
		{"kubernetes", "k8s"}:        85,
		{"kubernetes", "openshift"}:  85,
		{"kubernetes", "containers"}: 60,
	})
	matcher := NewSkillMatcher(oracle, 4, zap.New(core))

	got, err := matcher.Match(context.Background(), []string{"containers", "k8s", "openshift"}, []string{"kubernetes"})
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.Score)
	assert.Equal(t, []string{"containers"}, got.Extra)

	entries := logs.FilterMessage("skill matched by similarity").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "k8s", entries[0].ContextMap()["candidate"])
}

func TestSkillMatcherDegradesOracleErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	oracle := ai.OracleFunc(func(context.Context, string, string) (float64, error) {
		return 0, errors.New("timeout")
	})
	matcher := NewSkillMatcher(oracle, 2, zap.New(core))

	got, err := matcher.Match(context.Background(), []string{"go"}, []string{"golang"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, []string{"golang"}, got.Missing)
	assert.NotZero(t, logs.FilterMessage("similarity degraded to zero").Len())
}

func TestSkillMatcherStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matcher := NewSkillMatcher(constantOracle(90), 1, nil)
	_, err := matcher.Match(ctx, []string{"go"}, []string{"golang"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSkillMatcherScoreIsBounded(t *testing.T) {
	t.Parallel()

	pool := []string{"go", "python", "sql", "aws", "react", "docker", "kafka", "redis"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		candidate := sample(rng, pool)
		required := sample(rng, pool)
		matcher := NewSkillMatcher(constantOracle(rng.Float64()*100), 3, nil)

		got, err := matcher.Match(context.Background(), candidate, required)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, got.Score, 0.0, fmt.Sprintf("candidate=%v required=%v", candidate, required))
		assert.LessOrEqual(t, got.Score, 100.0, fmt.Sprintf("candidate=%v required=%v", candidate, required))
		assert.Equal(t, len(required), len(got.Matched)+len(got.Missing))
	}
}

func sample(rng *rand.Rand, pool []string) []string {
	n := rng.Intn(len(pool) + 1)
	out := make([]string, 0, n)
	for _, idx := range rng.Perm(len(pool))[:n] {
		out = append(out, pool[idx])
	}
	return out
}

