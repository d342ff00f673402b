package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/hire-ranker/internal/matching"
	"github.com/spigell/hire-ranker/internal/model"
)

// Dataset is a file of candidates, jobs and past outcomes used to seed a store.
type Dataset struct {
	Candidates []model.CandidateProfile `mapstructure:"candidates"`
	Jobs       []model.JobPosting       `mapstructure:"jobs"`
	History    []HistoryRecord          `mapstructure:"history"`
}

// HistoryRecord is a past score and interview status of a candidate for a job.
type HistoryRecord struct {
	CandidateID string   `mapstructure:"candidate_id"`
	JobID       string   `mapstructure:"job_id"`
	Score       *float64 `mapstructure:"score"`
	Status      string   `mapstructure:"status"`
}

// LoadDataset reads a YAML, JSON or TOML dataset file. Values are decoded weakly,
// so "5" is accepted for a number and "go, sql" for a skill list.
func LoadDataset(path string) (Dataset, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Dataset{}, fmt.Errorf("read dataset %q: %w", path, err)
	}

	var ds Dataset
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           &ds,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return Dataset{}, fmt.Errorf("create dataset decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset %q: %w", path, err)
	}

	return ds.Normalized()
}

// Normalized validates ids and derives missing education scores from the education level.
func (ds Dataset) Normalized() (Dataset, error) {
	out := Dataset{
		Candidates: make([]model.CandidateProfile, 0, len(ds.Candidates)),
		Jobs:       make([]model.JobPosting, 0, len(ds.Jobs)),
		History:    ds.History,
	}

	for i, c := range ds.Candidates {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return Dataset{}, fmt.Errorf("%w: candidate #%d has no id", model.ErrInvalidInput, i+1)
		}
		if c.EducationScore == 0 && strings.TrimSpace(c.EducationLevel) != "" {
			c.EducationScore = matching.EducationRank(c.EducationLevel)
		}
		out.Candidates = append(out.Candidates, c.Normalized())
	}

	for i, j := range ds.Jobs {
		j.ID = strings.TrimSpace(j.ID)
		if j.ID == "" {
			return Dataset{}, fmt.Errorf("%w: job #%d has no id", model.ErrInvalidInput, i+1)
		}
		out.Jobs = append(out.Jobs, j.Normalized())
	}

	return out, nil
}

// Seed writes the dataset into the store. History records with a score become score
// responses so that they count as historical outcomes.
func Seed(ctx context.Context, s Store, ds Dataset) error {
	for _, c := range ds.Candidates {
		if err := s.SaveCandidate(ctx, c); err != nil {
			return err
		}
	}
	for _, j := range ds.Jobs {
		if err := s.SaveJob(ctx, j); err != nil {
			return err
		}
	}
	for _, h := range ds.History {
		if h.Status != "" {
			if err := s.SaveInterview(ctx, model.Interview{CandidateID: h.CandidateID, JobID: h.JobID, Status: h.Status}); err != nil {
				return err
			}
		}
		if h.Score != nil {
			resp := model.ScoreResponse{
				RequestID:   uuid.NewString(),
				CandidateID: h.CandidateID,
				JobID:       h.JobID,
				Score:       model.ClampScore(*h.Score),
				Reasoning:   []string{},
				Timestamp:   time.Now().UTC(),
			}
			if err := s.SaveScoreResponse(ctx, resp); err != nil {
				return err
			}
		}
	}
	return nil
}
