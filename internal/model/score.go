package model

import (
	"math"
	"time"
)

// ContextWeights weigh the four contextual sub-scores.
type ContextWeights struct {
	SkillsMatch         float64 `json:"skills_match" mapstructure:"skills-match"`
	ExperienceRelevance float64 `json:"experience_relevance" mapstructure:"experience-relevance"`
	CulturalFit         float64 `json:"cultural_fit" mapstructure:"cultural-fit"`
	GrowthPotential     float64 `json:"growth_potential" mapstructure:"growth-potential"`
}

// DefaultContextWeights returns skills 0.4, experience 0.3, cultural 0.15, growth 0.15.
func DefaultContextWeights() ContextWeights {
	return ContextWeights{SkillsMatch: 0.4, ExperienceRelevance: 0.3, CulturalFit: 0.15, GrowthPotential: 0.15}
}

func (w ContextWeights) Sum() float64 {
	return w.SkillsMatch + w.ExperienceRelevance + w.CulturalFit + w.GrowthPotential
}

// Normalize rescales the weights to sum to 1.0. Zero weights fall back to the defaults.
func (w ContextWeights) Normalize() ContextWeights {
	sum := w.Sum()
	if sum <= 0 {
		return DefaultContextWeights()
	}
	if math.Abs(sum-1) < weightsTolerance {
		return w
	}
	return ContextWeights{
		SkillsMatch:         w.SkillsMatch / sum,
		ExperienceRelevance: w.ExperienceRelevance / sum,
		CulturalFit:         w.CulturalFit / sum,
		GrowthPotential:     w.GrowthPotential / sum,
	}
}

// ContextualScores are the four sub-scores recomputed with a ScoringContext.
type ContextualScores struct {
	SkillsMatch         float64 `json:"skills_match"`
	ExperienceRelevance float64 `json:"experience_relevance"`
	CulturalFit         float64 `json:"cultural_fit"`
	GrowthPotential     float64 `json:"growth_potential"`
}

// Values returns the sub-scores in evaluation order.
func (s ContextualScores) Values() []float64 {
	return []float64{s.SkillsMatch, s.ExperienceRelevance, s.CulturalFit, s.GrowthPotential}
}

// ScoreResponse is the immutable output of a contextual scoring call.
type ScoreResponse struct {
	RequestID      string             `json:"request_id"`
	CandidateID    string             `json:"candidate_id"`
	JobID          string             `json:"job_id"`
	Score          float64            `json:"score"`
	Confidence     float64            `json:"confidence"`
	Reasoning      []string           `json:"reasoning"`
	ContextFactors map[string]float64 `json:"context_factors"`
	SubScores      ContextualScores   `json:"sub_scores"`
	Weights        ContextWeights     `json:"weights"`
	ModelVersion   string             `json:"model_version"`
	Timestamp      time.Time          `json:"timestamp"`
}

// FeedbackRecord is an append-only outcome label for a prior ScoreResponse.
type FeedbackRecord struct {
	RequestID     string    `json:"request_id"`
	ActualOutcome string    `json:"actual_outcome"`
	FeedbackScore float64   `json:"feedback_score"`
	Timestamp     time.Time `json:"timestamp"`
}

// ModelStats is a point-in-time copy of the process-wide model state.
type ModelStats struct {
	ModelVersion  string         `json:"model_version"`
	Accuracy      float64        `json:"accuracy"`
	FeedbackCount int            `json:"feedback_count"`
	Weights       ContextWeights `json:"context_weights"`
	LastUpdated   time.Time      `json:"last_updated"`
}
