package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/spigell/hire-ranker/internal/model"
)

type pairKey struct {
	candidateID string
	jobID       string
}

// Memory keeps records in append-only arenas indexed by id. Replaced records are
// overwritten in place so indexes stay valid.
type Memory struct {
	mu sync.RWMutex

	candidates   []model.CandidateProfile
	candidateIdx map[string]int
	jobs         []model.JobPosting
	jobIdx       map[string]int
	matches      []model.MatchResult
	matchIdx     map[pairKey]int
	scores       []model.ScoreResponse
	scoreIdx     map[string]int
	interviews   map[pairKey]string
	feedback     []model.FeedbackRecord
}

func NewMemory() *Memory {
	return &Memory{
		candidateIdx: make(map[string]int),
		jobIdx:       make(map[string]int),
		matchIdx:     make(map[pairKey]int),
		scoreIdx:     make(map[string]int),
		interviews:   make(map[pairKey]string),
	}
}

func (m *Memory) GetJob(_ context.Context, id string) (model.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.jobIdx[id]
	if !ok {
		return model.JobPosting{}, notFound("job", id)
	}
	return cloneJob(m.jobs[i]), nil
}

func (m *Memory) GetCandidate(_ context.Context, id string) (model.CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.candidateIdx[id]
	if !ok {
		return model.CandidateProfile{}, notFound("candidate", id)
	}
	return cloneCandidate(m.candidates[i]), nil
}

func (m *Memory) ListCandidates(_ context.Context) ([]model.CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.CandidateProfile, 0, len(m.candidates))
	for _, c := range m.candidates {
		out = append(out, cloneCandidate(c))
	}
	return out, nil
}

func (m *Memory) HistoricalOutcomes(_ context.Context, jobType model.JobType, jobID string) ([]model.HistoricalOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.HistoricalOutcome
	for _, resp := range m.scores {
		ji, ok := m.jobIdx[resp.JobID]
		if !ok {
			continue
		}
		ci, ok := m.candidateIdx[resp.CandidateID]
		if !ok {
			continue
		}
		if resp.JobID != jobID && !jobTitleMentions(m.jobs[ji].Title, jobType) {
			continue
		}

		score := resp.Score
		out = append(out, model.HistoricalOutcome{
			Score:           &score,
			Status:          m.interviews[pairKey{candidateID: resp.CandidateID, jobID: resp.JobID}],
			ExperienceYears: m.candidates[ci].ExperienceYears,
		})
	}
	return out, nil
}

func (m *Memory) SaveCandidate(_ context.Context, candidate model.CandidateProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate = cloneCandidate(candidate)
	if i, ok := m.candidateIdx[candidate.ID]; ok {
		m.candidates[i] = candidate
		return nil
	}
	m.candidateIdx[candidate.ID] = len(m.candidates)
	m.candidates = append(m.candidates, candidate)
	return nil
}

func (m *Memory) SaveJob(_ context.Context, job model.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job = cloneJob(job)
	if i, ok := m.jobIdx[job.ID]; ok {
		m.jobs[i] = job
		return nil
	}
	m.jobIdx[job.ID] = len(m.jobs)
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *Memory) SaveInterview(_ context.Context, interview model.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interviews[pairKey{candidateID: interview.CandidateID, jobID: interview.JobID}] = interview.Status
	return nil
}

func (m *Memory) SaveMatchResult(_ context.Context, result model.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result = cloneMatch(result)
	key := pairKey{candidateID: result.CandidateID, jobID: result.JobID}
	if i, ok := m.matchIdx[key]; ok {
		m.matches[i] = result
		return nil
	}
	m.matchIdx[key] = len(m.matches)
	m.matches = append(m.matches, result)
	return nil
}

func (m *Memory) GetMatchResult(_ context.Context, candidateID, jobID string) (model.MatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.matchIdx[pairKey{candidateID: candidateID, jobID: jobID}]
	if !ok {
		return model.MatchResult{}, notFound("match result", candidateID+"/"+jobID)
	}
	return cloneMatch(m.matches[i]), nil
}

func (m *Memory) SaveScoreResponse(_ context.Context, resp model.ScoreResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp = cloneScore(resp)
	if i, ok := m.scoreIdx[resp.RequestID]; ok {
		m.scores[i] = resp
		return nil
	}
	m.scoreIdx[resp.RequestID] = len(m.scores)
	m.scores = append(m.scores, resp)
	return nil
}

func (m *Memory) GetScoreResponse(_ context.Context, requestID string) (model.ScoreResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.scoreIdx[requestID]
	if !ok {
		return model.ScoreResponse{}, notFound("score response", requestID)
	}
	return cloneScore(m.scores[i]), nil
}

func (m *Memory) SaveFeedback(_ context.Context, record model.FeedbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.feedback = append(m.feedback, record)
	return nil
}

func (m *Memory) ListFeedback(_ context.Context) ([]model.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.feedback), nil
}

func (m *Memory) Close() error { return nil }

func cloneCandidate(c model.CandidateProfile) model.CandidateProfile {
	c.Skills = slices.Clone(c.Skills)
	return c
}

func cloneJob(j model.JobPosting) model.JobPosting {
	j.Skills = slices.Clone(j.Skills)
	return j
}

func cloneMatch(r model.MatchResult) model.MatchResult {
	r.Skills.Matched = slices.Clone(r.Skills.Matched)
	r.Skills.Missing = slices.Clone(r.Skills.Missing)
	r.Skills.Extra = slices.Clone(r.Skills.Extra)
	return r
}

func cloneScore(s model.ScoreResponse) model.ScoreResponse {
	s.Reasoning = slices.Clone(s.Reasoning)
	s.ContextFactors = maps.Clone(s.ContextFactors)
	return s
}
