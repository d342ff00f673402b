package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"go.uber.org/zap"

	"github.com/spigell/hire-ranker/internal/model"
)

var openDB = sql.Open

// Connect opens a pooled *sql.DB for the database URL and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, opts Options, log *zap.Logger) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("database url is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := db.Stats()
	log.Debug("database connected",
		zap.Int("open", stats.OpenConnections),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConnections),
	)

	return db, nil
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

// Postgres is a Store backed by database/sql with the pgx driver.
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) Close() error {
	if p.DB == nil {
		return nil
	}
	return p.DB.Close()
}

func (p *Postgres) GetJob(ctx context.Context, id string) (model.JobPosting, error) {
	const query = `
SELECT id, title, description, skills, experience_years, education_requirement
FROM jobs
WHERE id = $1`

	var (
		job    model.JobPosting
		skills []byte
	)
	err := p.DB.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&skills,
		&job.ExperienceYears,
		&job.EducationRequirement,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.JobPosting{}, notFound("job", id)
		}
		return model.JobPosting{}, fmt.Errorf("get job %q: %w", id, err)
	}
	if job.Skills, err = decodeSkills(skills); err != nil {
		return model.JobPosting{}, fmt.Errorf("decode skills of job %q: %w", id, err)
	}
	return job, nil
}

const candidateColumns = `id, name, email, skills, experience_years, education_level, education_score`

func (p *Postgres) GetCandidate(ctx context.Context, id string) (model.CandidateProfile, error) {
	row := p.DB.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	candidate, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CandidateProfile{}, notFound("candidate", id)
		}
		return model.CandidateProfile{}, fmt.Errorf("get candidate %q: %w", id, err)
	}
	return candidate, nil
}

func (p *Postgres) ListCandidates(ctx context.Context) ([]model.CandidateProfile, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []model.CandidateProfile
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (model.CandidateProfile, error) {
	var (
		c      model.CandidateProfile
		skills []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &skills, &c.ExperienceYears, &c.EducationLevel, &c.EducationScore); err != nil {
		return model.CandidateProfile{}, err
	}
	var err error
	if c.Skills, err = decodeSkills(skills); err != nil {
		return model.CandidateProfile{}, err
	}
	return c, nil
}

func (p *Postgres) HistoricalOutcomes(ctx context.Context, jobType model.JobType, jobID string) ([]model.HistoricalOutcome, error) {
	const query = `
SELECT s.score, i.status, c.experience_years
FROM score_responses s
JOIN candidates c ON c.id = s.candidate_id
JOIN jobs j ON j.id = s.job_id
LEFT JOIN interviews i ON i.candidate_id = s.candidate_id AND i.job_id = s.job_id
WHERE j.title ILIKE $1 OR j.id = $2
ORDER BY s.created_at`

	rows, err := p.DB.QueryContext(ctx, query, "%"+string(jobType)+"%", jobID)
	if err != nil {
		return nil, fmt.Errorf("query historical outcomes: %w", err)
	}
	defer rows.Close()

	var out []model.HistoricalOutcome
	for rows.Next() {
		var (
			score  sql.NullFloat64
			status sql.NullString
			o      model.HistoricalOutcome
		)
		if err := rows.Scan(&score, &status, &o.ExperienceYears); err != nil {
			return nil, fmt.Errorf("scan historical outcome: %w", err)
		}
		if score.Valid {
			v := score.Float64
			o.Score = &v
		}
		o.Status = status.String
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query historical outcomes: %w", err)
	}
	return out, nil
}

func (p *Postgres) SaveCandidate(ctx context.Context, c model.CandidateProfile) error {
	skills, err := encodeSkills(c.Skills)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO candidates (id, name, email, skills, experience_years, education_level, education_score)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  email = EXCLUDED.email,
  skills = EXCLUDED.skills,
  experience_years = EXCLUDED.experience_years,
  education_level = EXCLUDED.education_level,
  education_score = EXCLUDED.education_score`

	if _, err := p.DB.ExecContext(ctx, query, c.ID, c.Name, c.Email, skills, c.ExperienceYears, c.EducationLevel, c.EducationScore); err != nil {
		return fmt.Errorf("save candidate %q: %w", c.ID, err)
	}
	return nil
}

func (p *Postgres) SaveJob(ctx context.Context, j model.JobPosting) error {
	skills, err := encodeSkills(j.Skills)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO jobs (id, title, description, skills, experience_years, education_requirement)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  description = EXCLUDED.description,
  skills = EXCLUDED.skills,
  experience_years = EXCLUDED.experience_years,
  education_requirement = EXCLUDED.education_requirement`

	if _, err := p.DB.ExecContext(ctx, query, j.ID, j.Title, j.Description, skills, j.ExperienceYears, j.EducationRequirement); err != nil {
		return fmt.Errorf("save job %q: %w", j.ID, err)
	}
	return nil
}

func (p *Postgres) SaveInterview(ctx context.Context, i model.Interview) error {
	const query = `
INSERT INTO interviews (candidate_id, job_id, status)
VALUES ($1, $2, $3)
ON CONFLICT (candidate_id, job_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()`

	if _, err := p.DB.ExecContext(ctx, query, i.CandidateID, i.JobID, i.Status); err != nil {
		return fmt.Errorf("save interview %s/%s: %w", i.CandidateID, i.JobID, err)
	}
	return nil
}

func (p *Postgres) SaveMatchResult(ctx context.Context, r model.MatchResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode match result: %w", err)
	}

	const query = `
INSERT INTO match_results (candidate_id, job_id, base_score, result)
VALUES ($1, $2, $3, $4)
ON CONFLICT (candidate_id, job_id) DO UPDATE SET
  base_score = EXCLUDED.base_score,
  result = EXCLUDED.result,
  updated_at = now()`

	if _, err := p.DB.ExecContext(ctx, query, r.CandidateID, r.JobID, r.BaseScore, payload); err != nil {
		return fmt.Errorf("save match result %s/%s: %w", r.CandidateID, r.JobID, err)
	}
	return nil
}

func (p *Postgres) GetMatchResult(ctx context.Context, candidateID, jobID string) (model.MatchResult, error) {
	var payload []byte
	err := p.DB.QueryRowContext(ctx,
		`SELECT result FROM match_results WHERE candidate_id = $1 AND job_id = $2`,
		candidateID, jobID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MatchResult{}, notFound("match result", candidateID+"/"+jobID)
		}
		return model.MatchResult{}, fmt.Errorf("get match result %s/%s: %w", candidateID, jobID, err)
	}

	var r model.MatchResult
	if err := json.Unmarshal(payload, &r); err != nil {
		return model.MatchResult{}, fmt.Errorf("decode match result: %w", err)
	}
	return r, nil
}

func (p *Postgres) SaveScoreResponse(ctx context.Context, resp model.ScoreResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode score response: %w", err)
	}

	const query = `
INSERT INTO score_responses (request_id, candidate_id, job_id, score, confidence, model_version, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := p.DB.ExecContext(ctx, query,
		resp.RequestID,
		resp.CandidateID,
		resp.JobID,
		resp.Score,
		resp.Confidence,
		resp.ModelVersion,
		payload,
		resp.Timestamp,
	); err != nil {
		return fmt.Errorf("save score response %q: %w", resp.RequestID, err)
	}
	return nil
}

func (p *Postgres) GetScoreResponse(ctx context.Context, requestID string) (model.ScoreResponse, error) {
	var payload []byte
	err := p.DB.QueryRowContext(ctx, `SELECT payload FROM score_responses WHERE request_id = $1`, requestID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScoreResponse{}, notFound("score response", requestID)
		}
		return model.ScoreResponse{}, fmt.Errorf("get score response %q: %w", requestID, err)
	}

	var resp model.ScoreResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return model.ScoreResponse{}, fmt.Errorf("decode score response: %w", err)
	}
	return resp, nil
}

func (p *Postgres) SaveFeedback(ctx context.Context, r model.FeedbackRecord) error {
	const query = `
INSERT INTO feedback (request_id, actual_outcome, feedback_score, created_at)
VALUES ($1, $2, $3, $4)`

	if _, err := p.DB.ExecContext(ctx, query, r.RequestID, r.ActualOutcome, r.FeedbackScore, r.Timestamp); err != nil {
		return fmt.Errorf("save feedback for %q: %w", r.RequestID, err)
	}
	return nil
}

func (p *Postgres) ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT request_id, actual_outcome, feedback_score, created_at FROM feedback ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []model.FeedbackRecord
	for rows.Next() {
		var r model.FeedbackRecord
		if err := rows.Scan(&r.RequestID, &r.ActualOutcome, &r.FeedbackScore, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}

func encodeSkills(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}
	return data, nil
}

func decodeSkills(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var skills []string
	if err := json.Unmarshal(data, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}
