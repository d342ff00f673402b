package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/model"
)

type minimumScoreFilter struct {
	enabled   bool
	reason    string
	threshold float64
}

// NewMinimumScore creates a filter that drops matches whose base score is below threshold.
// A zero threshold disables the filter.
func NewMinimumScore(threshold float64) Filter {
	f := &minimumScoreFilter{enabled: true, threshold: threshold}
	if threshold <= 0 {
		f.Disable("minimum match score is not set")
	}
	return f
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return f.enabled }

func (f *minimumScoreFilter) Validate(*Config) error {
	if f.threshold > 100 {
		return fmt.Errorf("minimum match score %.2f is above 100: %w", f.threshold, model.ErrInvalidInput)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, results []model.MatchResult) ([]model.MatchResult, Step, error) {
	initial := len(results)
	kept, dropped := keep(results, func(r model.MatchResult) bool {
		return r.BaseScore >= f.threshold
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("dropping candidates below minimum match score",
			zap.Float64("threshold", f.threshold),
			zap.Strings("dropped_candidates", dropped),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{
			"threshold": strconv.FormatFloat(f.threshold, 'f', 2, 64),
		},
	}
}
