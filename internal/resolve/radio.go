package resolve

import (
	"strings"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// radioRule binds a keyword tuple to a boolean answer key. Tier-1 rules
// resolve from the static bank; Tier-2 rules additionally require the key to
// be present in the user-assertions table.
type radioRule struct {
	keywords []string
	key      string
}

// tier1RadioRules is evaluated first, strictly in order, most specific
// patterns before least specific. The order must not change: it encodes
// precedence between overlapping phrasings.
var tier1RadioRules = []radioRule{
	// Work authorization.
	{[]string{"authorized", "work"}, "authorized_to_work"},
	{[]string{"legally", "authorized"}, "authorized_to_work"},
	{[]string{"legal", "right", "work"}, "authorized_to_work"},
	{[]string{"work", "authorization"}, "authorized_to_work"},

	// Visa sponsorship.
	{[]string{"require", "sponsorship"}, "requires_sponsorship"},
	{[]string{"need", "sponsorship"}, "requires_sponsorship"},
	{[]string{"visa", "sponsorship"}, "requires_sponsorship"},
	{[]string{"sponsorship", "now", "future"}, "requires_sponsorship"},

	// Relocation.
	{[]string{"willing", "relocate"}, "willing_to_relocate"},
	{[]string{"open", "relocation"}, "willing_to_relocate"},
	{[]string{"willing", "move"}, "willing_to_relocate"},

	// Background check.
	{[]string{"background", "check"}, "background_check_consent"},
	{[]string{"criminal", "background"}, "background_check_consent"},
	{[]string{"background", "screening"}, "background_check_consent"},

	// Drug screening.
	{[]string{"drug", "test"}, "drug_test_consent"},
	{[]string{"drug", "screen"}, "drug_test_consent"},

	// Age and legal eligibility.
	{[]string{"over", "18"}, "over_18"},
	{[]string{"18", "years"}, "over_18"},
	{[]string{"legal", "age"}, "over_18"},
	{[]string{"legally", "eligible", "work"}, "legally_eligible"},
}

// tier2RadioRules cover questions whose safe answer is an assumption the
// user must opt into explicitly. A match with no corresponding assertion
// yields "<key>_not_in_user_assertions", distinguishable from a plain
// pattern miss for audit purposes.
var tier2RadioRules = []radioRule{
	{[]string{"completed the following level of education", "bachelor"}, "education_completed_bachelors"},
	{[]string{"comfortable commuting"}, "assume_commute_ok"},
	{[]string{"comfortable working", "onsite"}, "assume_onsite_ok"},
	{[]string{"comfortable working", "hybrid"}, "assume_hybrid_ok"},
}

// Radio resolves a binary radio group from its normalized question text.
// Groups with any option count other than two are rejected immediately with
// no pattern evaluation; multi-option self-identification groups are not a
// safe automation target.
func Radio(questionText string, optionCount int, tables answers.Tables) model.ResolutionResult {
	if optionCount != 2 {
		return model.Unresolved(model.ConfidenceLow, model.KeyMultiOptionRadio)
	}

	normalized := Normalize(questionText)

	for _, rule := range tier1RadioRules {
		if !containsAll(normalized, rule.keywords) {
			continue
		}
		if value, ok := tables.Tier1Bool(rule.key); ok {
			return model.ResolutionResult{Value: value, Confidence: model.ConfidenceHigh, MatchedKey: rule.key}
		}
		return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
	}

	for _, rule := range tier2RadioRules {
		if !containsAll(normalized, rule.keywords) {
			continue
		}
		if value, ok := tables.Assertion(rule.key); ok {
			return model.ResolutionResult{Value: value, Confidence: model.ConfidenceHigh, MatchedKey: rule.key}
		}
		return model.Unresolved(model.ConfidenceLow, rule.key+model.NotInAssertionsSuffix)
	}

	return model.Unresolved(model.ConfidenceNone, model.KeyUnmatched)
}

// RadioTier reports which table a matched key belongs to, for debug records.
// Audit-suffixed keys from Tier-2 misses are recognized by their base key.
func RadioTier(matchedKey string) model.Tier {
	matchedKey = strings.TrimSuffix(matchedKey, model.NotInAssertionsSuffix)
	for _, rule := range tier1RadioRules {
		if rule.key == matchedKey {
			return model.Tier1
		}
	}
	for _, rule := range tier2RadioRules {
		if rule.key == matchedKey {
			return model.Tier2
		}
	}
	return model.TierUnknown
}
