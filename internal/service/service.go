// Package service wires the store, matcher, scorer and feedback tracker into the
// operations exposed to the command line.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/ai"
	"github.com/spigell/hire-ranker/internal/feedback"
	"github.com/spigell/hire-ranker/internal/filtering"
	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/matching"
	"github.com/spigell/hire-ranker/internal/model"
	"github.com/spigell/hire-ranker/internal/scoring"
	"github.com/spigell/hire-ranker/internal/store"
)

// Config bundles the tunables of the pipeline stages.
type Config struct {
	Matching matching.Config
	Scoring  scoring.Config
	Filters  filtering.Config
}

// Service is the single entry point for matching, scoring and feedback.
type Service struct {
	store   store.Store
	matcher *matching.Matcher
	builder *scoring.Builder
	scorer  *scoring.Scorer
	tracker *feedback.Tracker

	filterCfg filtering.Config
	filters   []filtering.Filter

	logger *zap.Logger
}

// New builds a Service. A nil tracker is replaced with a fresh one.
func New(st store.Store, oracle ai.Oracle, tracker *feedback.Tracker, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if tracker == nil {
		tracker = feedback.NewTracker(log.Named("feedback"))
	}

	return &Service{
		store:     st,
		matcher:   matching.NewMatcher(oracle, cfg.Matching, log.Named("matching")),
		builder:   scoring.NewBuilder(st, log.Named("context")),
		scorer:    scoring.NewScorer(tracker, cfg.Scoring, log.Named("scoring")),
		tracker:   tracker,
		filterCfg: cfg.Filters,
		filters:   filtering.Default(&cfg.Filters),
		logger:    log,
	}
}

// Filters returns the post-ranking filter chain so callers can disable steps or describe them.
func (s *Service) Filters() []filtering.Filter {
	return s.filters
}

// ComputeOverallMatch matches a stored candidate against a stored job and persists the result.
func (s *Service) ComputeOverallMatch(ctx context.Context, candidateID, jobID string) (model.MatchResult, error) {
	candidate, job, err := s.pair(ctx, candidateID, jobID)
	if err != nil {
		return model.MatchResult{}, err
	}

	result, err := s.matcher.ComputeOverallMatch(ctx, candidate, job)
	if err != nil {
		return model.MatchResult{}, err
	}

	if err := s.store.SaveMatchResult(ctx, result); err != nil {
		return model.MatchResult{}, fmt.Errorf("save match result: %w", err)
	}

	return result, nil
}

// RankCandidates ranks the given candidates, or every stored candidate when ids is empty,
// against the job. Results are persisted and then passed through the filter chain.
func (s *Service) RankCandidates(ctx context.Context, jobID string, candidateIDs []string) ([]model.MatchResult, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	candidates, err := s.candidates(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	ranked, err := s.matcher.RankCandidates(ctx, candidates, job)
	if err != nil {
		return nil, err
	}

	for _, result := range ranked {
		if err := s.store.SaveMatchResult(ctx, result); err != nil {
			return nil, fmt.Errorf("save match result for %s: %w", result.CandidateID, err)
		}
	}

	filtered, err := filtering.Run(ctx, &s.filterCfg, filtering.Deps{Logger: s.logger.Named("filtering")}, s.filters, ranked)
	if err != nil {
		return nil, fmt.Errorf("filter ranking: %w", err)
	}

	return filtered, nil
}

// MatchInsights explains the match between a stored candidate and job.
func (s *Service) MatchInsights(ctx context.Context, candidateID, jobID string) (model.Insights, error) {
	candidate, job, err := s.pair(ctx, candidateID, jobID)
	if err != nil {
		return model.Insights{}, err
	}
	return s.matcher.Insights(ctx, candidate, job)
}

// InitializeContext builds a fresh scoring context for the job.
func (s *Service) InitializeContext(ctx context.Context, jobID string) (model.ScoringContext, error) {
	return s.builder.InitializeContext(ctx, jobID)
}

// ScoreCandidate scores a stored candidate in the context of a stored job.
func (s *Service) ScoreCandidate(ctx context.Context, candidateID, jobID string) (model.ScoreResponse, error) {
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return model.ScoreResponse{}, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}
	return s.ScoreProfile(ctx, candidate, jobID)
}

// ScoreProfile scores an ad-hoc candidate profile in the context of a stored job.
// The base match is computed first and reported among the context factors.
func (s *Service) ScoreProfile(ctx context.Context, candidate model.CandidateProfile, jobID string) (model.ScoreResponse, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return model.ScoreResponse{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	match, err := s.matcher.ComputeOverallMatch(ctx, candidate, job)
	if err != nil {
		return model.ScoreResponse{}, err
	}

	scoringCtx, err := s.builder.InitializeContext(ctx, jobID)
	if err != nil {
		return model.ScoreResponse{}, err
	}

	if err := s.store.SaveMatchResult(ctx, match); err != nil {
		return model.ScoreResponse{}, fmt.Errorf("save match result: %w", err)
	}

	resp := s.scorer.ProcessScoreRequest(candidate, scoringCtx)
	resp.ContextFactors[scoring.FactorBaseMatchScore] = match.BaseScore

	if err := s.store.SaveScoreResponse(ctx, resp); err != nil {
		return model.ScoreResponse{}, fmt.Errorf("save score response: %w", err)
	}

	logger.WithPair(s.logger, resp.CandidateID, resp.JobID).Info("candidate scored",
		zap.String(logger.FieldRequestID, resp.RequestID),
		zap.Float64("score", resp.Score),
		zap.Float64("confidence", resp.Confidence),
		zap.Float64("base_match_score", match.BaseScore),
	)

	return resp, nil
}

// RecordFeedback persists an outcome label and feeds it to the tracker.
// Labels for unknown request ids are accepted.
func (s *Service) RecordFeedback(ctx context.Context, requestID, outcome string, score float64) (model.FeedbackRecord, error) {
	log := s.logger.With(zap.String(logger.FieldRequestID, requestID))

	if _, err := s.store.GetScoreResponse(ctx, requestID); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return model.FeedbackRecord{}, fmt.Errorf("look up score response: %w", err)
		}
		log.Debug("feedback for unknown request")
	}

	// The model state only sees records that made it into the stored log.
	record := s.tracker.NewRecord(requestID, outcome, score)
	if err := s.store.SaveFeedback(ctx, record); err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("save feedback: %w", err)
	}
	s.tracker.Append(record)

	log.Info("feedback recorded",
		zap.String("outcome", record.ActualOutcome),
		zap.Float64("feedback_score", record.FeedbackScore),
	)

	return record, nil
}

// RestoreFeedback replays the stored feedback log into the tracker and returns its length.
func (s *Service) RestoreFeedback(ctx context.Context) (int, error) {
	records, err := s.store.ListFeedback(ctx)
	if err != nil {
		return 0, fmt.Errorf("list feedback: %w", err)
	}
	s.tracker.Restore(records)
	return len(records), nil
}

// UpdateWeights replaces the base context weights after normalizing them.
func (s *Service) UpdateWeights(weights model.ContextWeights) (model.ContextWeights, error) {
	return s.tracker.UpdateWeights(weights)
}

// ModelStats returns a snapshot of the model state.
func (s *Service) ModelStats() model.ModelStats {
	return s.tracker.Snapshot()
}

func (s *Service) pair(ctx context.Context, candidateID, jobID string) (model.CandidateProfile, model.JobPosting, error) {
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return model.CandidateProfile{}, model.JobPosting{}, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return model.CandidateProfile{}, model.JobPosting{}, fmt.Errorf("load job %s: %w", jobID, err)
	}
	return candidate, job, nil
}

func (s *Service) candidates(ctx context.Context, ids []string) ([]model.CandidateProfile, error) {
	if len(ids) == 0 {
		all, err := s.store.ListCandidates(ctx)
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		return all, nil
	}

	out := make([]model.CandidateProfile, 0, len(ids))
	for _, id := range ids {
		candidate, err := s.store.GetCandidate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load candidate %s: %w", id, err)
		}
		out = append(out, candidate)
	}
	return out, nil
}
