package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hire-ranker/internal/ai"
	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/model"
)

// defaultEducationRequirement is assumed for jobs that do not name one.
const defaultEducationRequirement = "bachelor"

// Config tunes the matcher.
type Config struct {
	// Parallelism bounds concurrent oracle calls and concurrently matched candidates.
	Parallelism int
}

// Matcher combines skills, experience, education and semantic similarity into a base match score.
type Matcher struct {
	oracle      ai.Oracle
	skills      *SkillMatcher
	weights     model.MatchWeights
	parallelism int
	logger      *zap.Logger
}

func NewMatcher(oracle ai.Oracle, cfg Config, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	return &Matcher{
		oracle:      oracle,
		skills:      NewSkillMatcher(oracle, parallelism, log),
		weights:     model.DefaultMatchWeights().Normalize(),
		parallelism: parallelism,
		logger:      log,
	}
}

// Weights returns the fixed weights of the base score.
func (m *Matcher) Weights() model.MatchWeights {
	return m.weights
}

// ComputeOverallMatch returns the match between one candidate and one job.
// It fails only when ctx is cancelled.
func (m *Matcher) ComputeOverallMatch(ctx context.Context, candidate model.CandidateProfile, job model.JobPosting) (model.MatchResult, error) {
	candidate = candidate.Normalized()
	job = job.Normalized()
	log := logger.WithPair(m.logger, candidate.ID, job.ID)

	skills, err := m.skills.Match(ctx, candidate.Skills, job.Skills)
	if err != nil {
		return model.MatchResult{}, err
	}

	educationRequirement := job.EducationRequirement
	if educationRequirement == "" {
		educationRequirement = defaultEducationRequirement
	}

	experience := MatchExperience(candidate.ExperienceYears, job.ExperienceYears)
	education := MatchEducation(candidate.EducationScore, educationRequirement)

	semantic, err := m.semanticSimilarity(ctx, candidate, job)
	if err != nil {
		return model.MatchResult{}, err
	}

	w := m.weights
	base := skills.Score*w.Skills +
		experience.Score*w.Experience +
		education.Score*w.Education +
		semantic*w.Semantic

	result := model.MatchResult{
		CandidateID:        candidate.ID,
		JobID:              job.ID,
		BaseScore:          model.Round2(model.ClampScore(base)),
		Skills:             skills,
		Experience:         experience,
		Education:          education,
		SemanticSimilarity: model.Round2(semantic),
		Weights:            w,
	}

	log.Debug("match computed",
		zap.Float64("base_score", result.BaseScore),
		zap.Float64("skills_score", skills.Score),
		zap.Float64("semantic_similarity", result.SemanticSimilarity),
	)

	return result, nil
}

func (m *Matcher) semanticSimilarity(ctx context.Context, candidate model.CandidateProfile, job model.JobPosting) (float64, error) {
	if m.oracle == nil {
		return 0, nil
	}

	candidateText := strings.TrimSpace(strings.Join(candidate.Skills, " ") + " " + candidate.EducationLevel)
	if candidateText == "" || strings.TrimSpace(job.Description) == "" {
		return 0, nil
	}

	score, err := m.oracle.Similarity(ctx, candidateText, job.Description)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("semantic similarity: %w", ctxErr)
		}
		m.logger.Warn("semantic similarity degraded to zero",
			zap.Error(fmt.Errorf("%w: %w", model.ErrOracleUnavailable, err)),
			zap.String(logger.FieldCandidateID, candidate.ID),
			zap.String(logger.FieldJobID, job.ID),
		)
		return 0, nil
	}

	return model.ClampScore(score), nil
}

// RankCandidates matches every candidate against the job and sorts the results by base score,
// highest first. Equal scores keep the input order.
func (m *Matcher) RankCandidates(ctx context.Context, candidates []model.CandidateProfile, job model.JobPosting) ([]model.MatchResult, error) {
	results := make([]model.MatchResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallelism)

	for i, candidate := range candidates {
		g.Go(func() error {
			result, err := m.ComputeOverallMatch(gctx, candidate, job)
			if err != nil {
				return fmt.Errorf("match candidate %s: %w", candidate.ID, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].BaseScore > results[j].BaseScore
	})

	m.logger.Info("candidates ranked",
		zap.String(logger.FieldJobID, job.ID),
		zap.Int("count", len(results)),
	)

	return results, nil
}

// Insights computes the match and classifies its strengths and weaknesses.
func (m *Matcher) Insights(ctx context.Context, candidate model.CandidateProfile, job model.JobPosting) (model.Insights, error) {
	result, err := m.ComputeOverallMatch(ctx, candidate, job)
	if err != nil {
		return model.Insights{}, err
	}
	return BuildInsights(result), nil
}
