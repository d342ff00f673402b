package model

// JobType is the coarse role family of a job.
type JobType string

const (
	JobTypeTechnical  JobType = "technical"
	JobTypeManagement JobType = "management"
	JobTypeSales      JobType = "sales"
	JobTypeDesign     JobType = "design"
	JobTypeGeneral    JobType = "general"
)

// Seniority is the level inferred from a job title.
type Seniority string

const (
	SeniorityJunior     Seniority = "junior"
	SeniorityMid        Seniority = "mid"
	SenioritySenior     Seniority = "senior"
	SeniorityManagement Seniority = "management"
)

// Industry is the sector inferred from a job description.
type Industry string

const (
	IndustryFintech    Industry = "fintech"
	IndustryHealthcare Industry = "healthcare"
	IndustryEcommerce  Industry = "ecommerce"
	IndustryTechnology Industry = "technology"
)

// Market trend and competition labels.
const (
	TrendGrowing = "growing"
	TrendStable  = "stable"

	CompetitionHigh   = "high"
	CompetitionMedium = "medium"
)

// InterviewCompleted is the interview status counted as a historical success.
const InterviewCompleted = "completed"

// HistoricalOutcome is one past (score, interview status, experience) observation.
type HistoricalOutcome struct {
	Score           *float64 `json:"score,omitempty" mapstructure:"score"`
	Status          string   `json:"status" mapstructure:"status"`
	ExperienceYears int      `json:"experience_years" mapstructure:"experience_years"`
}

type HistoricalPerformance struct {
	SuccessRate float64 `json:"success_rate"`
	AvgScore    float64 `json:"avg_score"`
	SampleSize  int     `json:"sample_size"`
}

type MarketConditions struct {
	DemandScore      float64 `json:"demand_score"`
	Trend            string  `json:"trend"`
	CompetitionLevel string  `json:"competition_level"`
}

// ScoringContext is the job metadata used to re-weight a match. It is built per call.
type ScoringContext struct {
	JobID          string                `json:"job_id"`
	JobType        JobType               `json:"job_type"`
	Seniority      Seniority             `json:"seniority_level"`
	Industry       Industry              `json:"industry"`
	RequiredSkills []string              `json:"required_skills"`
	Historical     HistoricalPerformance `json:"historical_performance"`
	Market         MarketConditions      `json:"market_conditions"`
}

// Interview is the latest interview status of a candidate for a job.
type Interview struct {
	CandidateID string `json:"candidate_id" mapstructure:"candidate_id"`
	JobID       string `json:"job_id" mapstructure:"job_id"`
	Status      string `json:"status" mapstructure:"status"`
}
