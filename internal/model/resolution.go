package model

// Confidence is the discrete resolution-certainty level. Only ConfidenceHigh
// permits a value to be used; everything below triggers the violation gate.
type Confidence string

// Confidence levels, ordered from strongest to weakest.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Audit keys used by resolvers when no answer can be produced. Each one is
// distinguishable in output so a skipped job can be explained from the record
// alone.
const (
	KeyUnmatched        = "unmatched"
	KeyMultiOptionRadio = "multi_option_radio"
	KeyTooManyOptions   = "too_many_options"
	KeyNoMatchingOption = "no_matching_option"
	KeyNonNumericAnswer = "non_numeric_answer"

	// NotInAssertionsSuffix is appended to a Tier-2 key when its pattern
	// matched but the user-assertions table lacks the key.
	NotInAssertionsSuffix = "_not_in_user_assertions"
)

// ResolutionResult is the outcome of a single resolver call.
//
// Value is nil unless Confidence is ConfidenceHigh; resolvers never guess.
// Value holds a string for text fields, a bool for binary radio groups, and
// an int option index for dropdowns. MatchedKey is always set, including the
// audit keys above, so every non-answer carries an auditable reason.
type ResolutionResult struct {
	Value      any        `json:"value"`
	Confidence Confidence `json:"confidence"`
	MatchedKey string     `json:"matched_key"`
}

// Resolved reports whether the result carries a usable value.
func (r ResolutionResult) Resolved() bool {
	return r.Value != nil && r.Confidence == ConfidenceHigh
}

// Unresolved builds the uniform no-answer result for the given audit key.
func Unresolved(confidence Confidence, matchedKey string) ResolutionResult {
	return ResolutionResult{Value: nil, Confidence: confidence, MatchedKey: matchedKey}
}
