package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/model"
)

const (
	// usableHistorySamples is the sample size below which history is logged as insufficient.
	usableHistorySamples = 5

	// fullHistorySamples is the sample size at which history adds its full confidence share.
	fullHistorySamples    = 20
	fixedMarketConfidence = 1.0
	varianceScale         = 1000.0
)

// Context factor keys.
const (
	FactorJobTypeInfluence  = "job_type_influence"
	FactorMarketDemand      = "market_demand"
	FactorHistoricalSuccess = "historical_success_rate"
	FactorSkillRarity       = "skill_rarity"
	FactorHistorySampleSize = "history_sample_size"
	FactorBaseMatchScore    = "base_match_score"
)

var expectedExperience = map[model.Seniority]int{
	model.SeniorityJunior:     2,
	model.SeniorityMid:        5,
	model.SenioritySenior:     8,
	model.SeniorityManagement: 10,
}

var jobTypeInfluence = map[model.JobType]float64{
	model.JobTypeTechnical:  0.8,
	model.JobTypeManagement: 0.6,
	model.JobTypeSales:      0.7,
	model.JobTypeDesign:     0.75,
	model.JobTypeGeneral:    0.5,
}

// StateReader exposes the current model state to the scorer.
type StateReader interface {
	Snapshot() model.ModelStats
}

// Config tunes the contextual scorer.
type Config struct {
	// RenormalizeOverrides rescales weights to 1.0 after job type and seniority overrides.
	// Off by default, so overridden weights may sum to more or less than 1.0.
	RenormalizeOverrides bool
}

// Scorer recomputes sub-scores with a ScoringContext and produces a ScoreResponse.
type Scorer struct {
	state  StateReader
	cfg    Config
	logger *zap.Logger

	newID func() string
	now   func() time.Time
}

func NewScorer(state StateReader, cfg Config, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{
		state:  state,
		cfg:    cfg,
		logger: log,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ProcessScoreRequest scores the candidate in the given context. It never fails:
// missing candidate data lowers the sub-scores and the confidence instead.
func (s *Scorer) ProcessScoreRequest(candidate model.CandidateProfile, scoringCtx model.ScoringContext) model.ScoreResponse {
	candidate = candidate.Normalized()
	stats := s.snapshot()

	scores := ContextualScores(candidate, scoringCtx)
	weights := s.Weights(stats.Weights, scoringCtx)

	total := scores.SkillsMatch*weights.SkillsMatch +
		scores.ExperienceRelevance*weights.ExperienceRelevance +
		scores.CulturalFit*weights.CulturalFit +
		scores.GrowthPotential*weights.GrowthPotential

	resp := model.ScoreResponse{
		RequestID:   s.newID(),
		CandidateID: candidate.ID,
		JobID:       scoringCtx.JobID,
		Score:       model.Round2(model.ClampScore(total)),
		Confidence:  model.Round2(Confidence(candidate, scoringCtx, scores)),
		Reasoning:   Reasoning(scores, scoringCtx),
		ContextFactors: map[string]float64{
			FactorJobTypeInfluence:  JobTypeInfluence(scoringCtx.JobType),
			FactorMarketDemand:      scoringCtx.Market.DemandScore,
			FactorHistoricalSuccess: scoringCtx.Historical.SuccessRate,
			FactorSkillRarity:       fractionMatching(candidate.Skills, rareSkills),
			FactorHistorySampleSize: float64(scoringCtx.Historical.SampleSize),
		},
		SubScores:    roundScores(scores),
		Weights:      weights,
		ModelVersion: stats.ModelVersion,
		Timestamp:    s.now(),
	}

	log := logger.WithFields(s.logger, logger.StringFields(
		logger.StringField{Key: logger.FieldRequestID, Value: resp.RequestID},
		logger.StringField{Key: logger.FieldCandidateID, Value: resp.CandidateID},
		logger.StringField{Key: logger.FieldJobID, Value: resp.JobID},
		logger.StringField{Key: logger.FieldModelVersion, Value: resp.ModelVersion},
	)...)

	if scoringCtx.Historical.SampleSize < usableHistorySamples {
		log.Debug("scoring with little history",
			zap.Error(fmt.Errorf("%w: %d samples", model.ErrInsufficientHistory, scoringCtx.Historical.SampleSize)),
		)
	}

	log.Debug("contextual score computed",
		zap.Float64("score", resp.Score),
		zap.Float64("confidence", resp.Confidence),
		zap.Float64("weights_sum", weights.Sum()),
	)

	return resp
}

func (s *Scorer) snapshot() model.ModelStats {
	if s.state == nil {
		return model.ModelStats{ModelVersion: "1.0.0", Weights: model.DefaultContextWeights()}
	}
	return s.state.Snapshot()
}

// Weights applies the job type overrides and then the seniority overrides to the base weights.
// Later overrides win.
func (s *Scorer) Weights(base model.ContextWeights, scoringCtx model.ScoringContext) model.ContextWeights {
	if base.Sum() <= 0 {
		base = model.DefaultContextWeights()
	}
	w := base

	switch scoringCtx.JobType {
	case model.JobTypeTechnical:
		w.SkillsMatch = 0.5
		w.ExperienceRelevance = 0.3
	case model.JobTypeManagement:
		w.ExperienceRelevance = 0.4
		w.CulturalFit = 0.25
	}

	switch scoringCtx.Seniority {
	case model.SeniorityJunior:
		w.GrowthPotential = 0.25
		w.SkillsMatch = 0.35
	case model.SenioritySenior:
		w.ExperienceRelevance = 0.4
		w.SkillsMatch = 0.35
	}

	if s.cfg.RenormalizeOverrides {
		return w.Normalize()
	}
	return w
}

// ContextualScores computes the four context-aware sub-scores, each in [0,100].
func ContextualScores(candidate model.CandidateProfile, scoringCtx model.ScoringContext) model.ContextualScores {
	return model.ContextualScores{
		SkillsMatch:         skillsMatch(candidate.Skills, scoringCtx),
		ExperienceRelevance: experienceRelevance(candidate.ExperienceYears, scoringCtx.Seniority),
		CulturalFit:         culturalFit(candidate, scoringCtx.JobType),
		GrowthPotential:     growthPotential(candidate, scoringCtx.Seniority),
	}
}

func skillsMatch(candidateSkills []string, scoringCtx model.ScoringContext) float64 {
	required := model.NormalizeSkills(scoringCtx.RequiredSkills)
	if len(required) == 0 {
		return 100
	}

	owned := make(map[string]struct{}, len(candidateSkills))
	for _, skill := range model.NormalizeSkills(candidateSkills) {
		owned[skill] = struct{}{}
	}

	matched := 0
	for _, skill := range required {
		if _, ok := owned[skill]; ok {
			matched++
		}
	}

	base := float64(matched) / float64(len(required)) * 100
	return model.ClampScore(base + scoringCtx.Market.DemandScore*10)
}

func experienceRelevance(years int, seniority model.Seniority) float64 {
	expected, ok := expectedExperience[seniority]
	if !ok {
		expected = expectedExperience[model.SeniorityMid]
	}

	if years >= expected {
		bonus := math.Min(float64(years-expected)*3, 15)
		return math.Min(100, 100+bonus)
	}
	return model.ClampScore(float64(years) / float64(expected) * 100)
}

func culturalFit(candidate model.CandidateProfile, jobType model.JobType) float64 {
	score := 75.0

	education := strings.ToLower(candidate.EducationLevel)
	if jobType == model.JobTypeTechnical && (strings.Contains(education, "computer") || strings.Contains(education, "engineering")) {
		score += 10
	}

	if candidate.ExperienceYears >= 3 && candidate.ExperienceYears <= 15 {
		score += 5
	}

	return model.ClampScore(score)
}

func growthPotential(candidate model.CandidateProfile, seniority model.Seniority) float64 {
	score := 70.0
	years := candidate.ExperienceYears

	switch {
	case seniority == model.SeniorityJunior && years <= 3:
		score += 20
	case seniority == model.SeniorityMid && years >= 3 && years <= 7:
		score += 15
	case seniority == model.SenioritySenior && years >= 5:
		score += 10
	}

	score += candidate.EducationScore * 10

	return model.ClampScore(score)
}

// Confidence combines data completeness, history size, sub-score consistency and market data quality.
// It is non-decreasing in the history sample size.
func Confidence(candidate model.CandidateProfile, scoringCtx model.ScoringContext, scores model.ContextualScores) float64 {
	present := 0
	if len(candidate.Skills) > 0 {
		present++
	}
	if candidate.ExperienceYears > 0 {
		present++
	}
	if strings.TrimSpace(candidate.EducationLevel) != "" {
		present++
	}
	completeness := float64(present) / 3

	history := math.Min(float64(max(scoringCtx.Historical.SampleSize, 0))/fullHistorySamples, 1)
	consistency := math.Max(0, 1-variance(scores.Values())/varianceScale)

	return model.ClampScore(100 * (0.3*completeness + 0.3*history + 0.2*consistency + 0.2*fixedMarketConfidence))
}

// variance is the population variance.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// Reasoning lists the facts behind a score in a fixed order: skills, experience, market, history.
func Reasoning(scores model.ContextualScores, scoringCtx model.ScoringContext) []string {
	reasoning := []string{}

	switch {
	case scores.SkillsMatch >= 80:
		reasoning = append(reasoning, fmt.Sprintf("Strong skills alignment (%.1f%%) with %s requirements", scores.SkillsMatch, scoringCtx.JobType))
	case scores.SkillsMatch < 50:
		reasoning = append(reasoning, fmt.Sprintf("Skills gap identified (%.1f%%) - may require training", scores.SkillsMatch))
	}

	switch {
	case scores.ExperienceRelevance >= 90:
		reasoning = append(reasoning, fmt.Sprintf("Excellent experience match for %s level", scoringCtx.Seniority))
	case scores.ExperienceRelevance < 60:
		reasoning = append(reasoning, fmt.Sprintf("Experience below expectations for %s role", scoringCtx.Seniority))
	}

	if scoringCtx.Market.DemandScore > 0.7 {
		reasoning = append(reasoning, "High market demand for candidate's skill set")
	}

	if scoringCtx.Historical.SuccessRate > 0.8 {
		reasoning = append(reasoning, "Similar candidates have shown high success rate in this role")
	}

	return reasoning
}

// JobTypeInfluence reports how strongly the job type shapes the weights.
func JobTypeInfluence(jobType model.JobType) float64 {
	if v, ok := jobTypeInfluence[jobType]; ok {
		return v
	}
	return jobTypeInfluence[model.JobTypeGeneral]
}

func roundScores(s model.ContextualScores) model.ContextualScores {
	return model.ContextualScores{
		SkillsMatch:         model.Round2(s.SkillsMatch),
		ExperienceRelevance: model.Round2(s.ExperienceRelevance),
		CulturalFit:         model.Round2(s.CulturalFit),
		GrowthPotential:     model.Round2(s.GrowthPotential),
	}
}
