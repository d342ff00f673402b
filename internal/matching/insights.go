package matching

import (
	"fmt"
	"strings"

	"github.com/spigell/hire-ranker/internal/model"
)

const (
	strongSkillsScore = 80.0
	weakSkillsScore   = 50.0
	maxSuggestedSkill = 3
)

type tier struct {
	min   float64
	label string
}

var recommendations = []tier{
	{min: 85, label: "Highly Recommended - Excellent match"},
	{min: 70, label: "Recommended - Good match with minor gaps"},
	{min: 55, label: "Consider - Moderate match, may need training"},
	{min: 40, label: "Weak Match - Significant gaps present"},
}

var grades = []tier{
	{min: 90, label: "A+"},
	{min: 85, label: "A"},
	{min: 80, label: "A-"},
	{min: 75, label: "B+"},
	{min: 70, label: "B"},
	{min: 65, label: "B-"},
	{min: 60, label: "C+"},
	{min: 55, label: "C"},
	{min: 50, label: "C-"},
}

// Recommendation maps a base score to a hiring recommendation.
func Recommendation(score float64) string {
	return lookupTier(recommendations, score, "Not Recommended - Poor match")
}

// Grade maps a base score to a letter grade.
func Grade(score float64) string {
	return lookupTier(grades, score, "D")
}

func lookupTier(tiers []tier, score float64, fallback string) string {
	for _, t := range tiers {
		if score >= t.min {
			return t.label
		}
	}
	return fallback
}

// BuildInsights classifies a match result with fixed thresholds.
func BuildInsights(result model.MatchResult) model.Insights {
	insights := model.Insights{
		OverallScore:   result.BaseScore,
		Grade:          Grade(result.BaseScore),
		Recommendation: Recommendation(result.BaseScore),
		Strengths:      []string{},
		Weaknesses:     []string{},
		Suggestions:    []string{},
	}

	skills := result.Skills
	switch {
	case skills.Score >= strongSkillsScore:
		insights.Strengths = append(insights.Strengths, fmt.Sprintf("Strong skills match (%.1f%%)", skills.Score))
	case skills.Score < weakSkillsScore:
		insights.Weaknesses = append(insights.Weaknesses, fmt.Sprintf("Skills gap (%.1f%% match)", skills.Score))
		if len(skills.Missing) > 0 {
			top := skills.Missing[:min(len(skills.Missing), maxSuggestedSkill)]
			insights.Suggestions = append(insights.Suggestions, "Consider developing: "+strings.Join(top, ", "))
		}
	}

	if result.Experience.MeetsRequirement {
		insights.Strengths = append(insights.Strengths, "Meets experience requirements")
	} else {
		insights.Weaknesses = append(insights.Weaknesses, fmt.Sprintf("Experience gap: %.0f years", result.Experience.Gap))
		insights.Suggestions = append(insights.Suggestions, "Consider candidates with relevant project experience")
	}

	if result.Education.MeetsRequirement {
		insights.Strengths = append(insights.Strengths, "Meets education requirements")
	} else {
		insights.Weaknesses = append(insights.Weaknesses, "Education level below requirement")
	}

	return insights
}
