package resolve

import "github.com/partypancake8/linkedin-is-lame/internal/model"

// dateKeywords mark a field as expecting a calendar date. Checked before
// numeric keywords because "start date availability" questions often contain
// both kinds of cue.
var dateKeywords = []string{
	"date", "when", "start date", "end date", "availability",
	"available", "begin", "commence",
}

// numericKeywords mark a field as expecting a number. A numeric field never
// receives a non-numeric answer; absence of a numeric answer is a violation,
// not a typed fallback.
var numericKeywords = []string{
	"year", "years", "yrs",
	"experience",
	"month", "months",
	"salary", "compensation",
	"notice period", "notice",
	"gpa",
}

// textInputTypes are HTML input types treated as free text.
var textInputTypes = map[string]bool{
	"text": true, "tel": true, "url": true, "email": true, "": true,
}

// Classify maps a text field's raw metadata to its semantic category using
// hard rules only: HTML5 input type first, then keyword inspection of the
// normalized label. ClassUnknown is a legitimate answer and forces a
// violation downstream rather than a best-effort fill.
func Classify(labelText, inputType string) model.Classification {
	switch inputType {
	case "number":
		return model.ClassNumeric
	case "date":
		return model.ClassDate
	}

	normalized := Normalize(labelText)
	for _, kw := range dateKeywords {
		if containsAll(normalized, []string{kw}) {
			return model.ClassDate
		}
	}
	for _, kw := range numericKeywords {
		if containsAll(normalized, []string{kw}) {
			return model.ClassNumeric
		}
	}

	if inputType == "textarea" || textInputTypes[inputType] {
		return model.ClassText
	}
	return model.ClassUnknown
}
