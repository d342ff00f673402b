package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-ranker/internal/model"
)

func TestMemoryNotFound(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()

	_, err := mem.GetJob(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = mem.GetCandidate(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = mem.GetScoreResponse(ctx, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = mem.GetMatchResult(ctx, "c", "j")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryReplacesInPlace(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveCandidate(ctx, model.CandidateProfile{ID: "a", ExperienceYears: 1}))
	require.NoError(t, mem.SaveCandidate(ctx, model.CandidateProfile{ID: "b"}))
	require.NoError(t, mem.SaveCandidate(ctx, model.CandidateProfile{ID: "a", ExperienceYears: 4}))

	candidates, err := mem.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "a", candidates[0].ID)
	assert.Equal(t, 4, candidates[0].ExperienceYears)

	require.NoError(t, mem.SaveMatchResult(ctx, model.MatchResult{CandidateID: "a", JobID: "j", BaseScore: 10}))
	require.NoError(t, mem.SaveMatchResult(ctx, model.MatchResult{CandidateID: "a", JobID: "j", BaseScore: 55}))

	got, err := mem.GetMatchResult(ctx, "a", "j")
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.BaseScore)
	assert.Len(t, mem.matches, 1)
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()

	skills := []string{"go"}
	require.NoError(t, mem.SaveJob(ctx, model.JobPosting{ID: "j", Skills: skills}))
	skills[0] = "mutated"

	job, err := mem.GetJob(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, job.Skills)

	job.Skills[0] = "changed"
	again, err := mem.GetJob(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Skills)

	resp := model.ScoreResponse{RequestID: "r", ContextFactors: map[string]float64{"market_demand": 0.5}}
	require.NoError(t, mem.SaveScoreResponse(ctx, resp))
	resp.ContextFactors["market_demand"] = 1

	stored, err := mem.GetScoreResponse(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, 0.5, stored.ContextFactors["market_demand"])
}

func TestMemoryHistoricalOutcomes(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveCandidate(ctx, model.CandidateProfile{ID: "c1", ExperienceYears: 3}))
	require.NoError(t, mem.SaveCandidate(ctx, model.CandidateProfile{ID: "c2", ExperienceYears: 7}))
	require.NoError(t, mem.SaveJob(ctx, model.JobPosting{ID: "j1", Title: "Sales Manager"}))
	require.NoError(t, mem.SaveJob(ctx, model.JobPosting{ID: "j2", Title: "Regional Sales Lead"}))
	require.NoError(t, mem.SaveJob(ctx, model.JobPosting{ID: "j3", Title: "Designer"}))

	require.NoError(t, mem.SaveScoreResponse(ctx, model.ScoreResponse{RequestID: "r1", CandidateID: "c1", JobID: "j2", Score: 70}))
	require.NoError(t, mem.SaveScoreResponse(ctx, model.ScoreResponse{RequestID: "r2", CandidateID: "c2", JobID: "j3", Score: 90}))
	require.NoError(t, mem.SaveScoreResponse(ctx, model.ScoreResponse{RequestID: "r3", CandidateID: "c2", JobID: "j1", Score: 50}))
	require.NoError(t, mem.SaveInterview(ctx, model.Interview{CandidateID: "c1", JobID: "j2", Status: model.InterviewCompleted}))

	outcomes, err := mem.HistoricalOutcomes(ctx, model.JobTypeSales, "j1")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, 70.0, *outcomes[0].Score)
	assert.Equal(t, model.InterviewCompleted, outcomes[0].Status)
	assert.Equal(t, 3, outcomes[0].ExperienceYears)
	assert.Equal(t, 50.0, *outcomes[1].Score)
	assert.Empty(t, outcomes[1].Status)

	none, err := mem.HistoricalOutcomes(ctx, model.JobTypeGeneral, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryFeedbackIsAppendOnly(t *testing.T) {
	t.Parallel()

	mem := NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveFeedback(ctx, model.FeedbackRecord{RequestID: "r1", FeedbackScore: 0.9}))
	require.NoError(t, mem.SaveFeedback(ctx, model.FeedbackRecord{RequestID: "r1", FeedbackScore: 0.2}))

	log, err := mem.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, 0.9, log[0].FeedbackScore)
	assert.Equal(t, 0.2, log[1].FeedbackScore)
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), Config{Driver: "mongo"}, nil)
	require.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: DriverPostgres}, nil)
	require.Error(t, err)
}
