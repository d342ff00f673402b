// Package store persists candidates, jobs, match results, score responses and feedback.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/model"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Store is the persistence boundary of the ranking pipeline. Lookups of absent
// candidates, jobs or score responses return an error wrapping model.ErrNotFound.
type Store interface {
	GetJob(ctx context.Context, id string) (model.JobPosting, error)
	GetCandidate(ctx context.Context, id string) (model.CandidateProfile, error)
	// ListCandidates returns candidates in insertion order.
	ListCandidates(ctx context.Context) ([]model.CandidateProfile, error)
	// HistoricalOutcomes returns (score, interview status, experience) tuples of stored scores
	// whose job title mentions jobType, or whose job id equals jobID.
	HistoricalOutcomes(ctx context.Context, jobType model.JobType, jobID string) ([]model.HistoricalOutcome, error)

	SaveCandidate(ctx context.Context, candidate model.CandidateProfile) error
	SaveJob(ctx context.Context, job model.JobPosting) error
	SaveInterview(ctx context.Context, interview model.Interview) error
	// SaveMatchResult replaces the result stored for the same candidate and job.
	SaveMatchResult(ctx context.Context, result model.MatchResult) error
	GetMatchResult(ctx context.Context, candidateID, jobID string) (model.MatchResult, error)
	SaveScoreResponse(ctx context.Context, resp model.ScoreResponse) error
	GetScoreResponse(ctx context.Context, requestID string) (model.ScoreResponse, error)
	// SaveFeedback appends to the feedback log.
	SaveFeedback(ctx context.Context, record model.FeedbackRecord) error
	// ListFeedback returns the feedback log oldest first.
	ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error)

	Close() error
}

// Config selects and tunes the store implementation.
type Config struct {
	Driver      string
	DatabaseURL string
	Options     Options
	// Migrate applies the embedded migrations after connecting to Postgres.
	Migrate bool
}

// Options controls the database pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		log.Debug("using in-memory store")
		return NewMemory(), nil
	case DriverPostgres:
		db, err := Connect(ctx, cfg.DatabaseURL, cfg.Options, log)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := RunMigrations(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			log.Info("database migrations applied")
		}
		return NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, model.ErrNotFound)
}

func jobTitleMentions(title string, jobType model.JobType) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(string(jobType)))
}
