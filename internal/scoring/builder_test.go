package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hire-ranker/internal/model"
)

type fakeJobs struct {
	jobs       map[string]model.JobPosting
	outcomes   []model.HistoricalOutcome
	historyErr error

	gotJobType model.JobType
}

func (f *fakeJobs) GetJob(_ context.Context, id string) (model.JobPosting, error) {
	job, ok := f.jobs[id]
	if !ok {
		return model.JobPosting{}, model.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobs) HistoricalOutcomes(_ context.Context, jobType model.JobType, _ string) ([]model.HistoricalOutcome, error) {
	f.gotJobType = jobType
	return f.outcomes, f.historyErr
}

func score(v float64) *float64 { return &v }

func TestInitializeContext(t *testing.T) {
	t.Parallel()

	jobs := &fakeJobs{
		jobs: map[string]model.JobPosting{
			"j1": {
				ID:          "j1",
				Title:       "Senior Backend Engineer",
				Description: "Build payment services",
				Skills:      []string{"Python", "AWS", "Kubernetes", "Go"},
			},
		},
		outcomes: []model.HistoricalOutcome{
			{Score: score(80), Status: model.InterviewCompleted, ExperienceYears: 5},
			{Status: model.InterviewCompleted, ExperienceYears: 3},
			{Score: score(60), Status: "rejected", ExperienceYears: 1},
			{Status: "scheduled"},
		},
	}

	got, err := NewBuilder(jobs, nil).InitializeContext(context.Background(), "j1")
	require.NoError(t, err)

	assert.Equal(t, model.JobTypeTechnical, jobs.gotJobType)
	assert.Equal(t, model.ScoringContext{
		JobID:          "j1",
		JobType:        model.JobTypeTechnical,
		Seniority:      model.SenioritySenior,
		Industry:       model.IndustryFintech,
		RequiredSkills: []string{"python", "aws", "kubernetes", "go"},
		Historical:     model.HistoricalPerformance{SuccessRate: 0.5, AvgScore: 70, SampleSize: 4},
		Market:         model.MarketConditions{DemandScore: 0.75, Trend: model.TrendGrowing, CompetitionLevel: model.CompetitionHigh},
	}, got)
}

func TestInitializeContextMissingJob(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(&fakeJobs{}, nil).InitializeContext(context.Background(), "nope")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestInitializeContextDegradesHistoryErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	jobs := &fakeJobs{
		jobs:       map[string]model.JobPosting{"j1": {ID: "j1", Title: "Designer"}},
		historyErr: errors.New("connection reset"),
	}

	got, err := NewBuilder(jobs, zap.New(core)).InitializeContext(context.Background(), "j1")
	require.NoError(t, err)

	assert.Equal(t, model.HistoricalPerformance{}, got.Historical)
	assert.Equal(t, 1, logs.FilterMessage("historical outcomes unavailable, using empty history").Len())
}

func TestMarketConditionsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		skills []string
		want   model.MarketConditions
	}{
		{name: "no skills", skills: nil, want: model.MarketConditions{Trend: model.TrendStable, CompetitionLevel: model.CompetitionMedium}},
		{name: "half in demand", skills: []string{"python", "cobol"}, want: model.MarketConditions{DemandScore: 0.5, Trend: model.TrendStable, CompetitionLevel: model.CompetitionMedium}},
		{name: "word match only", skills: []string{"react native", "openai"}, want: model.MarketConditions{DemandScore: 0.5, Trend: model.TrendStable, CompetitionLevel: model.CompetitionMedium}},
		{name: "suffixed names", skills: []string{"python3", "reactjs", "aws-lambda", "kubernetes-operators"}, want: model.MarketConditions{DemandScore: 1, Trend: model.TrendGrowing, CompetitionLevel: model.CompetitionHigh}},
		{name: "keyword inside a word", skills: []string{"openai", "spark"}, want: model.MarketConditions{Trend: model.TrendStable, CompetitionLevel: model.CompetitionMedium}},
		{name: "all in demand", skills: []string{"aws", "machine learning"}, want: model.MarketConditions{DemandScore: 1, Trend: model.TrendGrowing, CompetitionLevel: model.CompetitionHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarketConditionsFor(tt.skills))
		})
	}
}

func TestHistoricalPerformanceWithoutScores(t *testing.T) {
	t.Parallel()

	got := HistoricalPerformanceOf([]model.HistoricalOutcome{{Status: "completed"}, {Status: "no_show"}})
	assert.Equal(t, model.HistoricalPerformance{SuccessRate: 0.5, SampleSize: 2}, got)
}
