package matching

import (
	"math"
	"strings"

	"github.com/spigell/hire-ranker/internal/model"
)

// DefaultEducationRank is used for credential labels that are not in the rank table.
const DefaultEducationRank = 0.6

var educationRanks = map[string]float64{
	"high school": 0.1,
	"secondary":   0.1,
	"certificate": 0.2,
	"diploma":     0.4,
	"bachelor":    0.6,
	"bachelors":   0.6,
	"bs":          0.6,
	"ba":          0.6,
	"btech":       0.6,
	"be":          0.6,
	"master":      0.8,
	"masters":     0.8,
	"mba":         0.8,
	"ms":          0.8,
	"ma":          0.8,
	"mtech":       0.8,
	"phd":         1.0,
	"ph.d":        1.0,
	"doctorate":   1.0,
	"doctoral":    1.0,
}

// EducationRank maps a credential label to its rank in [0.1,1.0].
// An exact label wins; otherwise the highest credential named inside the label is used,
// so "Master of Computer Science" ranks as a master. Unknown labels rank 0.6.
func EducationRank(label string) float64 {
	normalized := strings.Join(strings.Fields(strings.ToLower(label)), " ")
	if normalized == "" {
		return DefaultEducationRank
	}
	if rank, ok := educationRanks[normalized]; ok {
		return rank
	}

	best := 0.0
	if strings.Contains(normalized, "high school") {
		best = educationRanks["high school"]
	}
	for _, word := range strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ',' || r == '(' || r == ')' || r == '/' || r == '-' || r == '\''
	}) {
		word = strings.TrimSuffix(word, ".")
		if rank, ok := educationRanks[word]; ok && rank > best {
			best = rank
		}
	}

	if best == 0 {
		return DefaultEducationRank
	}
	return best
}

// MatchExperience scores candidate years against the required minimum.
// Extra years earn a bonus that is immediately capped, so meeting the minimum always scores 100.
func MatchExperience(candidateYears, requiredYears int) model.AttributeBreakdown {
	candidateYears = max(candidateYears, 0)
	if requiredYears <= 0 {
		return model.AttributeBreakdown{Score: 100, MeetsRequirement: true}
	}

	if candidateYears >= requiredYears {
		bonus := math.Min(float64(candidateYears-requiredYears)*5, 20)
		return model.AttributeBreakdown{Score: math.Min(100+bonus, 100), MeetsRequirement: true}
	}

	return model.AttributeBreakdown{
		Score: model.Round2(model.ClampScore(float64(candidateYears) / float64(requiredYears) * 100)),
		Gap:   float64(requiredYears - candidateYears),
	}
}

// MatchEducation compares the candidate education score in [0,1] with the rank of the required label.
func MatchEducation(candidateScore float64, requiredLevel string) model.AttributeBreakdown {
	required := EducationRank(requiredLevel)
	if math.IsNaN(candidateScore) {
		candidateScore = 0
	}
	candidateScore = math.Max(candidateScore, 0)

	if candidateScore >= required {
		return model.AttributeBreakdown{Score: 100, MeetsRequirement: true}
	}

	return model.AttributeBreakdown{
		Score: model.Round2(model.ClampScore(candidateScore / required * 100)),
		Gap:   model.Round2(required - candidateScore),
	}
}
