package matching

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-ranker/internal/model"
)

func backendJob() model.JobPosting {
	return model.JobPosting{
		ID:                   "job-1",
		Title:                "Backend Engineer",
		Description:          "Build data services in Python on AWS",
		Skills:               []string{"Python", "SQL", "AWS"},
		ExperienceYears:      5,
		EducationRequirement: "Bachelor",
	}
}

func TestMatchWeightsSumToOne(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(constantOracle(0), Config{}, nil)
	assert.InDelta(t, 1.0, matcher.Weights().Sum(), 1e-12)
}

func TestComputeOverallMatch(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(constantOracle(40), Config{Parallelism: 2}, nil)
	candidate := model.CandidateProfile{
		ID:              "cand-1",
		Skills:          []string{"Python", "SQL"},
		ExperienceYears: 8,
		EducationLevel:  "Bachelor",
		EducationScore:  0.6,
	}

	got, err := matcher.ComputeOverallMatch(context.Background(), candidate, backendJob())
	require.NoError(t, err)

	assert.Equal(t, "cand-1", got.CandidateID)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, 66.67, got.Skills.Score)
	assert.Equal(t, []string{"aws"}, got.Skills.Missing)
	assert.Equal(t, 100.0, got.Experience.Score)
	assert.Equal(t, 100.0, got.Education.Score)
	assert.Equal(t, 40.0, got.SemanticSimilarity)
	assert.Equal(t, 74.67, got.BaseScore)
	assert.Equal(t, model.DefaultMatchWeights(), got.Weights)
}

func TestComputeOverallMatchWithoutOracle(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(nil, Config{}, nil)
	got, err := matcher.ComputeOverallMatch(context.Background(), model.CandidateProfile{ID: "empty"}, backendJob())
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.SemanticSimilarity)
	assert.Equal(t, 0.0, got.Skills.Score)
	assert.Equal(t, []string{"python", "sql", "aws"}, got.Skills.Missing)
	assert.False(t, got.Experience.MeetsRequirement)
}

func TestComputeOverallMatchWithNaNEducation(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(constantOracle(0), Config{}, nil)
	got, err := matcher.ComputeOverallMatch(context.Background(), model.CandidateProfile{ID: "nan", EducationScore: math.NaN()}, backendJob())
	require.NoError(t, err)

	assert.Equal(t, 0.6, got.Education.Gap)
	_, err = json.Marshal(got)
	assert.NoError(t, err)
}

func TestRankCandidatesIsStable(t *testing.T) {
	t.Parallel()

	strong := model.CandidateProfile{Skills: []string{"python", "sql", "aws"}, ExperienceYears: 6, EducationScore: 0.8}
	weak := model.CandidateProfile{Skills: []string{"excel"}, ExperienceYears: 1, EducationScore: 0.1}

	candidates := []model.CandidateProfile{weak, strong, weak, strong, weak}
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		candidates[i].ID = id
	}

	matcher := NewMatcher(constantOracle(0), Config{Parallelism: 3}, nil)
	got, err := matcher.RankCandidates(context.Background(), candidates, backendJob())
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.CandidateID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].BaseScore, got[i].BaseScore)
	}
}

func TestRankCandidatesEmpty(t *testing.T) {
	t.Parallel()

	got, err := NewMatcher(constantOracle(0), Config{}, nil).RankCandidates(context.Background(), nil, backendJob())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsights(t *testing.T) {
	t.Parallel()

	matcher := NewMatcher(constantOracle(40), Config{}, nil)

	t.Run("good match", func(t *testing.T) {
		candidate := model.CandidateProfile{ID: "c1", Skills: []string{"Python", "SQL"}, ExperienceYears: 8, EducationScore: 0.6}

		got, err := matcher.Insights(context.Background(), candidate, backendJob())
		require.NoError(t, err)

		assert.Equal(t, 74.67, got.OverallScore)
		assert.Equal(t, "B", got.Grade)
		assert.Equal(t, "Recommended - Good match with minor gaps", got.Recommendation)
		assert.Equal(t, []string{"Meets experience requirements", "Meets education requirements"}, got.Strengths)
		assert.Empty(t, got.Weaknesses)
	})

	t.Run("weak match", func(t *testing.T) {
		job := backendJob()
		job.Skills = []string{"Python", "SQL", "AWS", "Docker"}
		job.EducationRequirement = "Master"
		candidate := model.CandidateProfile{ID: "c2", Skills: []string{"Go"}, ExperienceYears: 2, EducationScore: 0.4}

		got, err := matcher.Insights(context.Background(), candidate, job)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"Skills gap (0.0% match)",
			"Experience gap: 3 years",
			"Education level below requirement",
		}, got.Weaknesses)
		assert.Equal(t, []string{
			"Consider developing: python, sql, aws",
			"Consider candidates with relevant project experience",
		}, got.Suggestions)
		assert.Empty(t, got.Strengths)
	})
}

func TestRecommendationAndGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score          float64
		recommendation string
		grade          string
	}{
		{score: 92, recommendation: "Highly Recommended - Excellent match", grade: "A+"},
		{score: 85, recommendation: "Highly Recommended - Excellent match", grade: "A"},
		{score: 72, recommendation: "Recommended - Good match with minor gaps", grade: "B"},
		{score: 56, recommendation: "Consider - Moderate match, may need training", grade: "C"},
		{score: 41, recommendation: "Weak Match - Significant gaps present", grade: "D"},
		{score: 10, recommendation: "Not Recommended - Poor match", grade: "D"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.recommendation, Recommendation(tt.score))
		assert.Equal(t, tt.grade, Grade(tt.score))
	}
}
