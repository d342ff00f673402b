package ai

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedOracle memoizes similarity results for the process lifetime.
// Keys are unordered pairs, so (a, b) and (b, a) share one entry.
// Concurrent lookups of the same pair are collapsed into one upstream call.
type CachedOracle struct {
	inner Oracle

	mu    sync.RWMutex
	cache map[pairKey]float64
	group singleflight.Group
}

type pairKey struct {
	lo string
	hi string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

func (k pairKey) String() string {
	return k.lo + "\x00" + k.hi
}

// NewCachedOracle wraps the provided oracle with a pair cache.
func NewCachedOracle(inner Oracle) *CachedOracle {
	return &CachedOracle{inner: inner, cache: make(map[pairKey]float64)}
}

func (c *CachedOracle) Name() string { return NameOf(c.inner) }

func (c *CachedOracle) Similarity(ctx context.Context, a, b string) (float64, error) {
	key := newPairKey(a, b)

	c.mu.RLock()
	if v, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		score, err := c.inner.Similarity(ctx, key.lo, key.hi)
		if err != nil {
			return 0.0, err
		}

		c.mu.Lock()
		c.cache[key] = score
		c.mu.Unlock()

		return score, nil
	})
	if err != nil {
		return 0, err
	}

	return v.(float64), nil
}

// Len reports the number of cached pairs.
func (c *CachedOracle) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
