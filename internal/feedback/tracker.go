// Package feedback tracks outcome labels for past scores and maintains the model state.
package feedback

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/logger"
	"github.com/spigell/hire-ranker/internal/model"
)

const (
	// InitialVersion is the model version before any accuracy-driven advance.
	InitialVersion = "1.0.0"

	minFeedbackForAccuracy = 10
	accuracyWindow         = 50
	accurateFeedbackScore  = 0.8
	versionAdvanceAccuracy = 0.85
)

// Tracker owns the process-wide model state. All writes go through its mutex;
// readers get copies.
type Tracker struct {
	mu sync.RWMutex

	version     string
	accuracy    float64
	weights     model.ContextWeights
	history     []model.FeedbackRecord
	lastUpdated time.Time

	logger *zap.Logger
	now    func() time.Time
}

func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	now := func() time.Time { return time.Now().UTC() }
	return &Tracker{
		version:     InitialVersion,
		weights:     model.DefaultContextWeights(),
		logger:      log,
		now:         now,
		lastUpdated: now(),
	}
}

// NewRecord builds a timestamped feedback record without touching the model state.
// The feedback score is clamped to [0,1].
func (t *Tracker) NewRecord(requestID, outcome string, score float64) model.FeedbackRecord {
	return model.FeedbackRecord{
		RequestID:     requestID,
		ActualOutcome: outcome,
		FeedbackScore: clampUnit(score),
		Timestamp:     t.now(),
	}
}

// Append feeds a record into the model state.
func (t *Tracker) Append(record model.FeedbackRecord) {
	record.FeedbackScore = clampUnit(record.FeedbackScore)
	t.append(record)
}

// RecordFeedback appends an outcome label. The request id is not checked against stored scores.
func (t *Tracker) RecordFeedback(requestID, outcome string, score float64) model.FeedbackRecord {
	record := t.NewRecord(requestID, outcome, score)
	t.append(record)
	return record
}

// Restore replays a stored feedback log in order, rebuilding accuracy and version.
func (t *Tracker) Restore(records []model.FeedbackRecord) {
	for _, record := range records {
		t.Append(record)
	}
	t.logger.Info("feedback log restored",
		zap.Int("records", len(records)),
		zap.String(logger.FieldModelVersion, t.Snapshot().ModelVersion),
	)
}

func (t *Tracker) append(record model.FeedbackRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, record)
	t.lastUpdated = t.now()

	if len(t.history) < minFeedbackForAccuracy {
		return
	}

	recent := t.history[max(0, len(t.history)-accuracyWindow):]
	accurate := 0
	for _, r := range recent {
		if r.FeedbackScore >= accurateFeedbackScore {
			accurate++
		}
	}
	t.accuracy = float64(accurate) / float64(len(recent))

	if t.accuracy > versionAdvanceAccuracy {
		version := fmt.Sprintf("1.%d.0", len(t.history)/100)
		if version != t.version {
			t.logger.Info("model version advanced",
				zap.String("from", t.version),
				zap.String("to", version),
				zap.Float64("accuracy", t.accuracy),
			)
		}
		t.version = version
	}
}

// UpdateWeights replaces the base context weights. They are renormalized to sum to 1.0.
func (t *Tracker) UpdateWeights(weights model.ContextWeights) (model.ContextWeights, error) {
	if weights.SkillsMatch < 0 || weights.ExperienceRelevance < 0 || weights.CulturalFit < 0 || weights.GrowthPotential < 0 {
		return model.ContextWeights{}, fmt.Errorf("%w: context weights must not be negative", model.ErrInvalidInput)
	}
	if weights.Sum() <= 0 {
		return model.ContextWeights{}, fmt.Errorf("%w: context weights must not all be zero", model.ErrInvalidInput)
	}

	normalized := weights.Normalize()

	t.mu.Lock()
	t.weights = normalized
	t.lastUpdated = t.now()
	t.mu.Unlock()

	return normalized, nil
}

// Snapshot returns a copy of the current model state.
func (t *Tracker) Snapshot() model.ModelStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return model.ModelStats{
		ModelVersion:  t.version,
		Accuracy:      t.accuracy,
		FeedbackCount: len(t.history),
		Weights:       t.weights,
		LastUpdated:   t.lastUpdated,
	}
}

// History returns a copy of the feedback log.
func (t *Tracker) History() []model.FeedbackRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.FeedbackRecord, len(t.history))
	copy(out, t.history)
	return out
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
