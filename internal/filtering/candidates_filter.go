package filtering

import (
	"context"

	"github.com/spigell/hire-ranker/internal/model"
)

type candidatesFilter struct {
	candidates map[string]struct{}
}

// NewExcludedCandidates creates a filter that removes candidates listed in the config.
func NewExcludedCandidates(ids []string) Filter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &candidatesFilter{candidates: set}
}

func (f *candidatesFilter) Name() string { return "candidates" }

func (f *candidatesFilter) Disable(string) {}

func (f *candidatesFilter) IsEnabled() bool { return true }

func (f *candidatesFilter) Validate(*Config) error { return nil }

func (f *candidatesFilter) Apply(_ context.Context, _ Deps, results []model.MatchResult) ([]model.MatchResult, Step, error) {
	initial := len(results)
	if len(f.candidates) == 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, dropped := keep(results, func(r model.MatchResult) bool {
		_, excluded := f.candidates[r.CandidateID]
		return !excluded
	})

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}
