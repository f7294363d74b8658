package resolve

import (
	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// maxSelectOptions caps how large a dropdown may be before it is rejected
// without pattern evaluation. Small dropdowns are enumerable and safe to
// match exactly; anything larger needs context the resolver does not have.
const maxSelectOptions = 5

// selectRule binds label keywords to the Tier-1 key holding the expected
// option text. Evaluated in order, first match wins.
var selectRules = []selectRule{
	{[]string{"currently", "enrolled"}, "education_enrollment_status"},
	{[]string{"currently", "pursuing", "degree"}, "education_enrollment_status"},
	{[]string{"current", "student"}, "education_enrollment_status"},
	{[]string{"language", "proficiency"}, "language_proficiency"},
	{[]string{"language", "level"}, "language_proficiency"},
	{[]string{"english", "proficiency"}, "language_proficiency"},
	{[]string{"english", "level"}, "language_proficiency"},
	{[]string{"how", "hear", "about"}, "referral_source"},
	{[]string{"referral", "source"}, "referral_source"},
	{[]string{"where", "learned", "opening"}, "referral_source"},
	{[]string{"highest", "education"}, "education_level"},
	{[]string{"degree", "level"}, "education_level"},
	{[]string{"when", "start"}, "start_availability"},
	{[]string{"how", "soon"}, "start_availability"},
}

type selectRule struct {
	keywords []string
	key      string
}

// Select resolves a dropdown from its label and option list. Dropdowns with
// more than maxSelectOptions options are rejected regardless of label. For
// eligible dropdowns the configured expected value must match an option
// label exactly after normalization; there is no fuzzy or partial matching.
// The resolved value is the option index.
func Select(labelText string, options []string, tables answers.Tables) model.ResolutionResult {
	if len(options) > maxSelectOptions {
		return model.Unresolved(model.ConfidenceLow, model.KeyTooManyOptions)
	}

	normalized := Normalize(labelText)

	var matchedKey string
	for _, rule := range selectRules {
		if containsAll(normalized, rule.keywords) {
			matchedKey = rule.key
			break
		}
	}
	if matchedKey == "" {
		return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
	}

	expected, ok := tables.Tier1String(matchedKey)
	if !ok {
		return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
	}

	want := NormalizeOption(expected)
	for i, opt := range options {
		if NormalizeOption(opt) == want {
			return model.ResolutionResult{Value: i, Confidence: model.ConfidenceHigh, MatchedKey: matchedKey}
		}
	}
	return model.Unresolved(model.ConfidenceLow, model.KeyNoMatchingOption)
}
