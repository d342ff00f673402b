package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/model"
)

// Filter represents a single post-ranking step applied to match results.
// Implementations must keep the relative order of the results they retain.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, results []model.MatchResult) ([]model.MatchResult, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinimumMatchScore float64
	Candidates        []string
	ExcludeFile       string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the filter chain built from cfg in its fixed order.
func Default(cfg *Config) []Filter {
	if cfg == nil {
		cfg = &Config{}
	}
	return []Filter{
		NewExcludedCandidates(cfg.Candidates),
		NewExcludeFile(cfg.ExcludeFile),
		NewMinimumScore(cfg.MinimumMatchScore),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the retained results.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, results []model.MatchResult) ([]model.MatchResult, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, results)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		results = next
	}

	return results, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns a new slice with the results accepted by pred, preserving order.
func keep(results []model.MatchResult, pred func(model.MatchResult) bool) ([]model.MatchResult, []string) {
	kept := make([]model.MatchResult, 0, len(results))
	var dropped []string
	for _, result := range results {
		if pred(result) {
			kept = append(kept, result)
			continue
		}
		dropped = append(dropped, result.CandidateID)
	}
	return kept, dropped
}
