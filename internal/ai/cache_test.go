package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedOracleSharesSymmetricPairs(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := OracleFunc(func(_ context.Context, a, b string) (float64, error) {
		calls.Add(1)
		return DiceSimilarity(a, b), nil
	})
	cached := NewCachedOracle(inner)

	ab, err := cached.Similarity(context.Background(), "react", "reactjs")
	require.NoError(t, err)
	ba, err := cached.Similarity(context.Background(), "reactjs", "react")
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, cached.Len())
	assert.Equal(t, "custom", cached.Name())
}

func TestCachedOracleCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	inner := OracleFunc(func(_ context.Context, _, _ string) (float64, error) {
		calls.Add(1)
		<-release
		return 42, nil
	})
	cached := NewCachedOracle(inner)

	const workers = 8
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	results := make([]float64, workers)
	started.Add(workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], _ = cached.Similarity(context.Background(), "go", "golang")
		}(i)
	}
	started.Wait()
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 42.0, r)
	}
	assert.LessOrEqual(t, calls.Load(), int32(workers))
	assert.Equal(t, 1, cached.Len())
}

func TestCachedOracleDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	fail := true
	inner := OracleFunc(func(_ context.Context, _, _ string) (float64, error) {
		if fail {
			return 0, errors.New("unavailable")
		}
		return 80, nil
	})
	cached := NewCachedOracle(inner)

	_, err := cached.Similarity(context.Background(), "sql", "postgresql")
	require.Error(t, err)
	assert.Equal(t, 0, cached.Len())

	fail = false
	score, err := cached.Similarity(context.Background(), "sql", "postgresql")
	require.NoError(t, err)
	assert.Equal(t, 80.0, score)
}
