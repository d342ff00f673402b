// Package scoring derives a job context and re-scores matches with it.
package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/model"
)

// JobSource is the part of the store the context builder reads from.
type JobSource interface {
	GetJob(ctx context.Context, id string) (model.JobPosting, error)
	// HistoricalOutcomes returns outcomes of jobs whose title mentions the job type, or of the same job.
	HistoricalOutcomes(ctx context.Context, jobType model.JobType, jobID string) ([]model.HistoricalOutcome, error)
}

// Builder derives a ScoringContext from a job and the outcomes of similar jobs.
type Builder struct {
	jobs   JobSource
	logger *zap.Logger
}

func NewBuilder(jobs JobSource, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{jobs: jobs, logger: log}
}

// InitializeContext builds a fresh context for the job. A missing job is returned as model.ErrNotFound;
// a failing history query degrades to an empty history.
func (b *Builder) InitializeContext(ctx context.Context, jobID string) (model.ScoringContext, error) {
	job, err := b.jobs.GetJob(ctx, jobID)
	if err != nil {
		return model.ScoringContext{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	jobType := ClassifyJobType(job.Title, job.Description)
	log := b.logger.With(zap.String(logger.FieldJobID, job.ID))

	outcomes, err := b.jobs.HistoricalOutcomes(ctx, jobType, job.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.ScoringContext{}, ctxErr
		}
		log.Warn("historical outcomes unavailable, using empty history", zap.Error(err))
		outcomes = nil
	}

	scoringCtx := BuildContext(job, outcomes)

	log.Debug("scoring context initialized",
		zap.String("job_type", string(scoringCtx.JobType)),
		zap.String("seniority", string(scoringCtx.Seniority)),
		zap.String("industry", string(scoringCtx.Industry)),
		zap.Int("history_sample_size", scoringCtx.Historical.SampleSize),
		zap.Float64("demand_score", scoringCtx.Market.DemandScore),
	)

	return scoringCtx, nil
}

// BuildContext derives the context from an already loaded job and its history.
func BuildContext(job model.JobPosting, outcomes []model.HistoricalOutcome) model.ScoringContext {
	job = job.Normalized()

	return model.ScoringContext{
		JobID:          job.ID,
		JobType:        ClassifyJobType(job.Title, job.Description),
		Seniority:      ClassifySeniority(job.Title),
		Industry:       ClassifyIndustry(job.Description),
		RequiredSkills: job.Skills,
		Historical:     HistoricalPerformanceOf(outcomes),
		Market:         MarketConditionsFor(job.Skills),
	}
}

// HistoricalPerformanceOf summarizes outcomes. Every field is zero without history.
func HistoricalPerformanceOf(outcomes []model.HistoricalOutcome) model.HistoricalPerformance {
	if len(outcomes) == 0 {
		return model.HistoricalPerformance{}
	}

	var (
		completed int
		scored    int
		total     float64
	)
	for _, o := range outcomes {
		if o.Status == model.InterviewCompleted {
			completed++
		}
		if o.Score != nil {
			scored++
			total += *o.Score
		}
	}

	perf := model.HistoricalPerformance{
		SuccessRate: float64(completed) / float64(len(outcomes)),
		SampleSize:  len(outcomes),
	}
	if scored > 0 {
		perf.AvgScore = total / float64(scored)
	}
	return perf
}

// MarketConditionsFor rates demand as the share of required skills on the high-demand list.
func MarketConditionsFor(requiredSkills []string) model.MarketConditions {
	demand := fractionMatching(requiredSkills, highDemandSkills)

	market := model.MarketConditions{
		DemandScore:      demand,
		Trend:            model.TrendStable,
		CompetitionLevel: model.CompetitionMedium,
	}
	if demand > 0.5 {
		market.Trend = model.TrendGrowing
	}
	if demand > 0.7 {
		market.CompetitionLevel = model.CompetitionHigh
	}
	return market
}
