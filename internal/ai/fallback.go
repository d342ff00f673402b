package ai

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/model"
	"github.com/spigell/hire-ranker/internal/utils"
)

const defaultMaxLogLength = 80

// FallbackOracle bounds every call with a timeout and degrades failures to zero similarity.
// It never returns an error, so a slow or broken provider cannot fail a scoring request.
type FallbackOracle struct {
	inner   Oracle
	timeout time.Duration
	logger  *zap.Logger
}

// NewFallbackOracle wraps the oracle. A non-positive timeout disables the deadline.
func NewFallbackOracle(inner Oracle, timeout time.Duration, log *zap.Logger) *FallbackOracle {
	return &FallbackOracle{
		inner:   inner,
		timeout: timeout,
		logger:  logger.WithFields(log, zap.String(logger.FieldOracle, NameOf(inner))),
	}
}

func (f *FallbackOracle) Name() string { return NameOf(f.inner) }

func (f *FallbackOracle) Similarity(ctx context.Context, a, b string) (float64, error) {
	if f.inner == nil {
		return 0, nil
	}

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	score, err := f.inner.Similarity(callCtx, a, b)
	if err != nil {
		f.logger.Warn("similarity degraded to zero",
			zap.Error(fmt.Errorf("%w: %w", model.ErrOracleUnavailable, err)),
			zap.String("text_a", utils.TruncateForLog(a, defaultMaxLogLength)),
			zap.String("text_b", utils.TruncateForLog(b, defaultMaxLogLength)),
		)
		return 0, nil
	}

	if math.IsNaN(score) {
		return 0, nil
	}

	return model.ClampScore(score), nil
}
