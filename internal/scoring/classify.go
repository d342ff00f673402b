package scoring

import (
	"regexp"
	"strings"

	"github.com/spigell/hire-ranker/internal/model"
)

// keywordSet matches any of its keywords at a word boundary.
type keywordSet struct {
	re *regexp.Regexp
}

// prefixKeywords matches words that start with a keyword, so "engineering" matches "engineer".
func prefixKeywords(words ...string) keywordSet {
	return keywordSet{re: regexp.MustCompile(`\b(?:` + quoteAll(words) + `)`)}
}

// wholeKeywords matches complete words with an optional plural "s",
// so "head" matches "heads" but not "ahead" or "headline".
func wholeKeywords(words ...string) keywordSet {
	return keywordSet{re: regexp.MustCompile(`\b(?:` + quoteAll(words) + `)s?\b`)}
}

func (k keywordSet) match(text string) bool {
	return k.re.MatchString(text)
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

type jobTypeRule struct {
	jobType  model.JobType
	keywords keywordSet
}

// Order matters: management wins over technical, technical over sales, sales over design.
var jobTypeRules = []jobTypeRule{
	{jobType: model.JobTypeManagement, keywords: wholeKeywords("manager", "lead", "director", "head", "chief")},
	{jobType: model.JobTypeTechnical, keywords: prefixKeywords("software", "developer", "engineer", "programmer", "technical")},
	{jobType: model.JobTypeSales, keywords: prefixKeywords("sales", "business development", "account", "revenue")},
	{jobType: model.JobTypeDesign, keywords: wholeKeywords("design", "designer", "ui", "ux", "creative", "visual")},
}

type seniorityRule struct {
	seniority model.Seniority
	keywords  keywordSet
}

var seniorityRules = []seniorityRule{
	{seniority: model.SenioritySenior, keywords: wholeKeywords("senior", "sr", "lead", "principal")},
	{seniority: model.SeniorityJunior, keywords: wholeKeywords("junior", "jr", "entry", "associate")},
	{seniority: model.SeniorityManagement, keywords: wholeKeywords("manager", "director", "head", "vp")},
}

type industryRule struct {
	industry model.Industry
	keywords keywordSet
}

var industryRules = []industryRule{
	{industry: model.IndustryFintech, keywords: prefixKeywords("fintech", "financial", "banking", "payment", "trading")},
	{industry: model.IndustryHealthcare, keywords: prefixKeywords("healthcare", "medical", "hospital", "patient", "clinical")},
	{industry: model.IndustryEcommerce, keywords: prefixKeywords("ecommerce", "retail", "marketplace", "shopping", "commerce")},
}

var (
	// Skill names often carry a suffix ("python3", "reactjs"), so these match on the left boundary only.
	highDemandSkills = prefixKeywords("python", "react", "aws", "kubernetes", "machine learning", "ai")
	rareSkills       = prefixKeywords("machine learning", "ai", "blockchain", "quantum computing")
)

// ClassifyJobType infers the job family from the title and description.
func ClassifyJobType(title, description string) model.JobType {
	text := strings.ToLower(title + " " + description)
	for _, rule := range jobTypeRules {
		if rule.keywords.match(text) {
			return rule.jobType
		}
	}
	return model.JobTypeGeneral
}

// ClassifySeniority infers the seniority level from the title.
func ClassifySeniority(title string) model.Seniority {
	text := strings.ToLower(title)
	for _, rule := range seniorityRules {
		if rule.keywords.match(text) {
			return rule.seniority
		}
	}
	return model.SeniorityMid
}

// ClassifyIndustry infers the industry from the description.
func ClassifyIndustry(description string) model.Industry {
	text := strings.ToLower(description)
	for _, rule := range industryRules {
		if rule.keywords.match(text) {
			return rule.industry
		}
	}
	return model.IndustryTechnology
}

// fractionMatching returns the share of skills matched by the keyword set; 0 for no skills.
func fractionMatching(skills []string, set keywordSet) float64 {
	if len(skills) == 0 {
		return 0
	}
	n := 0
	for _, skill := range skills {
		if set.match(strings.ToLower(skill)) {
			n++
		}
	}
	return float64(n) / float64(len(skills))
}
