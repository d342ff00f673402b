package filtering

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spigell/hire-ranker/internal/model"
)

// ExcludedCandidates is the on-disk list of candidates already shown for a job.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate
}

type ExcludedCandidate struct {
	ID         string
	JobID      string
	Score      float64
	ExcludedAt time.Time
}

// ToExcluded converts ranked results into exclude-file entries stamped with now.
func ToExcluded(results []model.MatchResult, now time.Time) *ExcludedCandidates {
	excluded := &ExcludedCandidates{}
	for _, result := range results {
		excluded.Items = append(excluded.Items, &ExcludedCandidate{
			ID:         result.CandidateID,
			JobID:      result.JobID,
			Score:      result.BaseScore,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// ExcludedCandidatesFromFile reads the exclude file at path.
// A missing or empty file yields an empty list.
func ExcludedCandidatesFromFile(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedCandidates{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedCandidates) Append(s *ExcludedCandidates) {
	e.Items = append(e.Items, s.Items...)
}

// CandidateIDs lists the ids in file order. Duplicates are kept.
func (e *ExcludedCandidates) CandidateIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedCandidates) Len() int {
	return len(e.Items)
}

// ToFile overwrites path with the list as indented JSON.
func (e *ExcludedCandidates) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendToFile adds the results to the exclude file at path, creating it if needed.
func AppendToFile(path string, results []model.MatchResult, now time.Time) error {
	existing, err := ExcludedCandidatesFromFile(path)
	if err != nil {
		return fmt.Errorf("read exclude file: %w", err)
	}
	existing.Append(ToExcluded(results, now))
	if err := existing.ToFile(path); err != nil {
		return fmt.Errorf("write exclude file: %w", err)
	}
	return nil
}
