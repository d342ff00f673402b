package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hire-ranker/internal/model"
)

func ranked() []model.MatchResult {
	return []model.MatchResult{
		{CandidateID: "c-1", JobID: "j-1", BaseScore: 91},
		{CandidateID: "c-2", JobID: "j-1", BaseScore: 74.67},
		{CandidateID: "c-3", JobID: "j-1", BaseScore: 60},
		{CandidateID: "c-4", JobID: "j-1", BaseScore: 41.5},
	}
}

func ids(results []model.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.CandidateID)
	}
	return out
}

func TestMinimumScoreKeepsOrder(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	deps := Deps{Logger: zap.New(core)}

	out, err := Run(context.Background(), &Config{}, deps, []Filter{NewMinimumScore(60)}, ranked())
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-2", "c-3"}, ids(out))

	steps := logs.FilterMessage("filter step").All()
	require.Len(t, steps, 1)
	assert.EqualValues(t, 4, steps[0].ContextMap()["initial"])
	assert.EqualValues(t, 1, steps[0].ContextMap()["dropped"])
	assert.Equal(t, 1, logs.FilterMessage("dropping candidates below minimum match score").Len())
}

func TestMinimumScoreDisabledWhenZero(t *testing.T) {
	f := NewMinimumScore(0)
	assert.False(t, f.IsEnabled())

	out, err := Run(context.Background(), nil, Deps{}, []Filter{f}, ranked())
	require.NoError(t, err)
	assert.Len(t, out, 4)

	status := Describe([]Filter{f})
	require.Len(t, status, 1)
	assert.Equal(t, "minimum match score is not set", status[0].Reason)
	assert.Equal(t, "0.00", status[0].Details["threshold"])
}

func TestMinimumScoreValidation(t *testing.T) {
	_, err := Run(context.Background(), nil, Deps{}, []Filter{NewMinimumScore(150)}, ranked())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
	assert.Contains(t, err.Error(), "minimum_score")
}

func TestExcludedCandidates(t *testing.T) {
	out, err := Run(context.Background(), nil, Deps{}, []Filter{NewExcludedCandidates([]string{"c-2", "c-9"})}, ranked())
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-3", "c-4"}, ids(out))
}

func TestDisableByName(t *testing.T) {
	steps := Default(&Config{MinimumMatchScore: 50})
	DisableByName(steps, "minimum_score", "forced")

	out, err := Run(context.Background(), nil, Deps{}, steps, ranked())
	require.NoError(t, err)
	assert.Len(t, out, 4)

	statuses := Describe(steps)
	require.Len(t, statuses, 3)
	assert.Equal(t, "candidates", statuses[0].Name)
	assert.True(t, statuses[0].Enabled)
	assert.Equal(t, "minimum_score", statuses[2].Name)
	assert.False(t, statuses[2].Enabled)
	assert.Equal(t, "forced", statuses[2].Reason)
}

func TestExcludeFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, AppendToFile(path, ranked()[:1], now))
	require.NoError(t, AppendToFile(path, ranked()[2:3], now.Add(time.Hour)))

	excluded, err := ExcludedCandidatesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-3"}, excluded.CandidateIDs())
	assert.Equal(t, "j-1", excluded.Items[0].JobID)
	assert.True(t, excluded.Items[1].ExcludedAt.Equal(now.Add(time.Hour)))

	core, logs := observer.New(zap.InfoLevel)
	out, err := Run(context.Background(), nil, Deps{Logger: zap.New(core)}, []Filter{NewExcludeFile(path)}, ranked())
	require.NoError(t, err)
	assert.Equal(t, []string{"c-2", "c-4"}, ids(out))
	assert.Equal(t, 1, logs.FilterMessage("excluding candidates based on exclude file").Len())
}

func TestExcludeFileMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	missing, err := ExcludedCandidatesFromFile(filepath.Join(dir, "nope.json"))
	require.NoError(t, err)
	assert.Zero(t, missing.Len())

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	out, err := Run(context.Background(), nil, Deps{}, []Filter{NewExcludeFile(empty)}, ranked())
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestExcludeFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Run(context.Background(), nil, Deps{}, []Filter{NewExcludeFile(path)}, ranked())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude_file")
}

func TestToFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")
	now := time.Now()

	require.NoError(t, ToExcluded(ranked(), now).ToFile(path))
	require.NoError(t, ToExcluded(ranked()[:1], now).ToFile(path))

	excluded, err := ExcludedCandidatesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1"}, excluded.CandidateIDs())
}
