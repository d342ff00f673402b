package model

import "math"

// weightsTolerance absorbs float rounding when checking that weights sum to 1.0.
const weightsTolerance = 1e-9

// SkillsBreakdown lists required skills that matched or are missing, and candidate extras.
type SkillsBreakdown struct {
	Score   float64  `json:"score"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Extra   []string `json:"extra"`
}

// AttributeBreakdown is the result of a bounded numeric attribute comparison.
type AttributeBreakdown struct {
	Score            float64 `json:"score"`
	Gap              float64 `json:"gap"`
	MeetsRequirement bool    `json:"meets_requirement"`
}

// MatchWeights are the fixed weights of the base match score.
type MatchWeights struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Semantic   float64 `json:"semantic"`
}

// DefaultMatchWeights returns skills 40%, experience 30%, education 10%, semantic 20%.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{Skills: 0.4, Experience: 0.3, Education: 0.1, Semantic: 0.2}
}

func (w MatchWeights) Sum() float64 {
	return w.Skills + w.Experience + w.Education + w.Semantic
}

// Normalize rescales the weights to sum to 1.0. Zero weights fall back to the defaults.
func (w MatchWeights) Normalize() MatchWeights {
	sum := w.Sum()
	if sum <= 0 {
		return DefaultMatchWeights()
	}
	if math.Abs(sum-1) < weightsTolerance {
		return w
	}
	return MatchWeights{
		Skills:     w.Skills / sum,
		Experience: w.Experience / sum,
		Education:  w.Education / sum,
		Semantic:   w.Semantic / sum,
	}
}

// MatchResult is the context-free match between one candidate and one job.
type MatchResult struct {
	CandidateID        string             `json:"candidate_id"`
	JobID              string             `json:"job_id"`
	BaseScore          float64            `json:"base_score"`
	Skills             SkillsBreakdown    `json:"skills_breakdown"`
	Experience         AttributeBreakdown `json:"experience_breakdown"`
	Education          AttributeBreakdown `json:"education_breakdown"`
	SemanticSimilarity float64            `json:"semantic_similarity"`
	Weights            MatchWeights       `json:"weights"`
}

// Insights classifies the strengths and weaknesses of a match.
type Insights struct {
	OverallScore   float64  `json:"overall_score"`
	Grade          string   `json:"grade"`
	Recommendation string   `json:"recommendation"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Suggestions    []string `json:"suggestions"`
}

// ClampScore bounds a score to [0,100]. NaN becomes 0.
func ClampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
