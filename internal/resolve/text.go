package resolve

import (
	"strings"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// textRule binds a keyword tuple to a Tier-1 bank key. All keywords must
// appear in the normalized question text for the rule to fire.
type textRule struct {
	keywords []string
	key      string
}

// textRules is evaluated strictly in order; the first matching rule wins.
// Order encodes precedence between overlapping patterns ("years of
// experience" must beat bare "experience"), so entries must not be
// reordered.
var textRules = []textRule{
	// Numeric answers.
	{[]string{"year", "experience"}, "years_experience"},
	{[]string{"years", "experience"}, "years_experience"},
	{[]string{"work experience"}, "work_experience"},
	{[]string{"total experience"}, "total_experience"},
	{[]string{"notice period", "week"}, "notice_period_weeks"},
	{[]string{"notice"}, "notice_period"},
	{[]string{"gpa"}, "gpa"},

	// Identity and contact.
	{[]string{"full name"}, "applicant_full_name"},
	{[]string{"email"}, "applicant_email"},
	{[]string{"phone"}, "applicant_phone_number"},
	{[]string{"city"}, "applicant_city_location"},
	{[]string{"college"}, "applicant_college_university"},
	{[]string{"university"}, "applicant_college_university"},

	// Links.
	{[]string{"linkedin", "url"}, "linkedin_url"},
	{[]string{"linkedin", "profile"}, "linkedin_url"},
	{[]string{"portfolio", "url"}, "portfolio_url"},
	{[]string{"portfolio", "website"}, "portfolio_url"},
	{[]string{"github"}, "github_url"},
	{[]string{"website"}, "website"},

	// Short free-text answers.
	{[]string{"skills"}, "skills_summary"},
	{[]string{"why", "interested"}, "why_interested"},
	{[]string{"why", "want", "work"}, "why_interested"},
}

// startDateKey is the Tier-1 key consulted for date-classified fields.
const startDateKey = "start_date"

// Text resolves a text field from its normalized question text, its
// classification, and the injected configuration tables. It never guesses:
// any field without a configured, type-safe answer comes back unresolved
// with an auditable reason.
func Text(questionText string, class model.Classification, tables answers.Tables) model.ResolutionResult {
	if class == model.ClassUnknown {
		return model.Unresolved(model.ConfidenceNone, "unknown_classification")
	}

	normalized := Normalize(questionText)

	if class == model.ClassDate {
		if value, ok := tables.Tier1String(startDateKey); ok {
			return model.ResolutionResult{Value: value, Confidence: model.ConfidenceHigh, MatchedKey: startDateKey}
		}
		return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
	}

	for _, rule := range textRules {
		if !containsAll(normalized, rule.keywords) {
			continue
		}
		value, ok := tables.Tier1String(rule.key)
		if !ok {
			// Pattern matched but the bank has no entry: identical outcome
			// to no match, the field simply cannot be automated.
			return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
		}
		if class == model.ClassNumeric && !isNumeric(value) {
			return model.Unresolved(model.ConfidenceLow, model.KeyNonNumericAnswer)
		}
		return model.ResolutionResult{Value: value, Confidence: model.ConfidenceHigh, MatchedKey: rule.key}
	}

	return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
}

// isNumeric accepts digit strings with at most one decimal point.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return strings.Trim(s, ".") != ""
}
