// Package matching computes the context-free match between a candidate and a job.
package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hire-ranker/internal/ai"
	"github.com/spigell/hire-ranker/internal/model"
)

// SimilarityThreshold is the minimum oracle score (inclusive) for two different skills to match.
const SimilarityThreshold = 70.0

const defaultParallelism = 4

type skillPair struct {
	candidate int
	required  int
}

// SkillMatcher reconciles candidate skills with required skills using exact matches first
// and the similarity oracle for everything else.
type SkillMatcher struct {
	oracle      ai.Oracle
	parallelism int
	logger      *zap.Logger
}

func NewSkillMatcher(oracle ai.Oracle, parallelism int, log *zap.Logger) *SkillMatcher {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SkillMatcher{oracle: oracle, parallelism: parallelism, logger: log}
}

// Match returns the skills breakdown. Both inputs are normalized first, so order of first
// occurrence defines the tie-break order. The only error is a cancelled context.
func (m *SkillMatcher) Match(ctx context.Context, candidateSkills, requiredSkills []string) (model.SkillsBreakdown, error) {
	candidates := model.NormalizeSkills(candidateSkills)
	required := model.NormalizeSkills(requiredSkills)

	result := model.SkillsBreakdown{
		Matched: []string{},
		Missing: []string{},
		Extra:   []string{},
	}

	if len(required) == 0 {
		result.Score = 100
		result.Extra = append(result.Extra, candidates...)
		return result, nil
	}

	candidateSet := toSet(candidates)
	requiredSet := toSet(required)

	similarity, err := m.similarities(ctx, candidates, required, candidateSet, requiredSet)
	if err != nil {
		return model.SkillsBreakdown{}, err
	}

	for r, skill := range required {
		if _, ok := candidateSet[skill]; ok {
			result.Matched = append(result.Matched, skill)
			continue
		}

		best := -1
		bestScore := 0.0
		for c := range candidates {
			score := similarity[skillPair{candidate: c, required: r}]
			if score >= SimilarityThreshold && (best < 0 || score > bestScore) {
				best, bestScore = c, score
			}
		}

		if best >= 0 {
			m.logger.Debug("skill matched by similarity",
				zap.String("required", skill),
				zap.String("candidate", candidates[best]),
				zap.Float64("similarity", bestScore),
			)
			result.Matched = append(result.Matched, skill)
		} else {
			result.Missing = append(result.Missing, skill)
		}
	}

	for c, skill := range candidates {
		if _, ok := requiredSet[skill]; ok {
			continue
		}

		similar := false
		for r := range required {
			if similarity[skillPair{candidate: c, required: r}] >= SimilarityThreshold {
				similar = true
				break
			}
		}
		if !similar {
			result.Extra = append(result.Extra, skill)
		}
	}

	result.Score = model.Round2(model.ClampScore(float64(len(result.Matched)) / float64(len(required)) * 100))

	return result, nil
}

// similarities queries the oracle for every pair that can influence the result: any candidate
// skill against a required skill the candidate lacks, and any extra candidate skill against every
// required skill. Failed calls count as zero similarity.
func (m *SkillMatcher) similarities(
	ctx context.Context,
	candidates, required []string,
	candidateSet, requiredSet map[string]struct{},
) (map[skillPair]float64, error) {
	pairs := make([]skillPair, 0, len(candidates)*len(required))
	for c, cs := range candidates {
		_, isRequired := requiredSet[cs]
		for r, rs := range required {
			_, isOwned := candidateSet[rs]
			if cs == rs || (isRequired && isOwned) {
				continue
			}
			pairs = append(pairs, skillPair{candidate: c, required: r})
		}
	}

	scores := make([]float64, len(pairs))
	if len(pairs) > 0 && m.oracle != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.parallelism)

		for i, p := range pairs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				score, err := m.oracle.Similarity(gctx, required[p.required], candidates[p.candidate])
				if err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return ctxErr
					}
					m.logger.Warn("similarity degraded to zero",
						zap.Error(fmt.Errorf("%w: %w", model.ErrOracleUnavailable, err)),
						zap.String("required", required[p.required]),
						zap.String("candidate", candidates[p.candidate]),
					)
					return nil
				}
				scores[i] = model.ClampScore(score)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("match skills: %w", err)
		}
	}

	out := make(map[skillPair]float64, len(pairs))
	for i, p := range pairs {
		out[p] = scores[i]
	}
	return out, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
