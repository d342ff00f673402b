package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/model"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates contained in the exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{
		path: path,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(*Config) error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, results []model.MatchResult) ([]model.MatchResult, Step, error) {
	initial := len(results)
	if f.path == "" {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded, err := ExcludedCandidatesFromFile(f.path)
	if err != nil {
		return results, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	ids := make(map[string]struct{}, excluded.Len())
	for _, id := range excluded.CandidateIDs() {
		ids[id] = struct{}{}
	}

	kept, dropped := keep(results, func(r model.MatchResult) bool {
		_, found := ids[r.CandidateID]
		return !found
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("file", f.path),
			zap.Strings("excluded_candidates", dropped),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}
