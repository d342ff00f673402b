// Package model holds the records that flow through the matching and scoring pipeline.
package model

import (
	"math"
	"strings"
)

// CandidateProfile is a read-only snapshot of an ingested candidate.
type CandidateProfile struct {
	ID              string   `json:"id" mapstructure:"id"`
	Name            string   `json:"name,omitempty" mapstructure:"name"`
	Email           string   `json:"email,omitempty" mapstructure:"email"`
	Skills          []string `json:"skills" mapstructure:"skills"`
	ExperienceYears int      `json:"experience_years" mapstructure:"experience_years"`
	EducationLevel  string   `json:"education_level,omitempty" mapstructure:"education_level"`
	// EducationScore is in [0,1] and grows with the credential rank.
	EducationScore float64 `json:"education_score" mapstructure:"education_score"`
}

// JobPosting is a read-only snapshot of a job.
type JobPosting struct {
	ID                   string   `json:"id" mapstructure:"id"`
	Title                string   `json:"title" mapstructure:"title"`
	Description          string   `json:"description" mapstructure:"description"`
	Skills               []string `json:"skills" mapstructure:"skills"`
	ExperienceYears      int      `json:"experience_years" mapstructure:"experience_years"`
	EducationRequirement string   `json:"education_requirement,omitempty" mapstructure:"education_requirement"`
}

// NormalizeSkill lowercases the skill and collapses inner whitespace.
func NormalizeSkill(skill string) string {
	return strings.Join(strings.Fields(strings.ToLower(skill)), " ")
}

// NormalizeSkills normalizes every skill and drops empty values and duplicates.
// The first occurrence keeps its position, so the result has a stable order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// Normalized returns a copy of the candidate with normalized skills and non-negative numbers.
func (c CandidateProfile) Normalized() CandidateProfile {
	c.Skills = NormalizeSkills(c.Skills)
	c.EducationLevel = strings.TrimSpace(c.EducationLevel)
	if c.ExperienceYears < 0 {
		c.ExperienceYears = 0
	}
	switch {
	case math.IsNaN(c.EducationScore), c.EducationScore < 0:
		c.EducationScore = 0
	case c.EducationScore > 1:
		c.EducationScore = 1
	}
	return c
}

// Normalized returns a copy of the job with normalized skills and a non-negative experience requirement.
func (j JobPosting) Normalized() JobPosting {
	j.Skills = NormalizeSkills(j.Skills)
	j.EducationRequirement = strings.TrimSpace(j.EducationRequirement)
	if j.ExperienceYears < 0 {
		j.ExperienceYears = 0
	}
	return j
}
