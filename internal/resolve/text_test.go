package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

func testTables() answers.Tables {
	return answers.New(map[string]any{
		"years_experience":       3,
		"applicant_full_name":    "Ada Lovelace",
		"applicant_email":        "ada@example.com",
		"applicant_phone_number": "5550100",
		"applicant_city_location": "Austin",
		"linkedin_url":           "https://linkedin.example/in/ada",
		"github_url":             "https://github.example/ada",
		"skills_summary":         "Go, SQL, distributed systems",
		"gpa":                    "3.8",
		"start_date":             "2026-10-01",
		"notice_period_weeks":    "two weeks", // deliberately non-numeric
		"authorized_to_work":     true,
		"requires_sponsorship":   false,
		"willing_to_relocate":    true,
		"over_18":                true,
		"education_level":        "Bachelor's Degree",
		"language_proficiency":   "Native or bilingual",
		"referral_source":        "Job board",
	}, map[string]bool{
		"assume_commute_ok": true,
	})
}

func TestTextResolvesConfiguredAnswer(t *testing.T) {
	tables := testTables()

	res := Text("How many years of experience do you have with Go?", model.ClassNumeric, tables)
	assert.True(t, res.Resolved())
	assert.Equal(t, "3", res.Value)
	assert.Equal(t, model.ConfidenceHigh, res.Confidence)
	assert.Equal(t, "years_experience", res.MatchedKey)
}

func TestTextMatchedPatternAbsentKey(t *testing.T) {
	// Pattern matches but the bank holds no answer: unresolved with no
	// confidence. No placeholder is ever substituted.
	tables := answers.New(nil, nil)

	res := Text("What is your email address?", model.ClassText, tables)
	assert.False(t, res.Resolved())
	assert.Nil(t, res.Value)
	assert.Equal(t, model.ConfidenceNone, res.Confidence)
	assert.Equal(t, model.KeyUnmatched, res.MatchedKey)
}

func TestTextNoPatternMatch(t *testing.T) {
	res := Text("Describe your favorite dinosaur", model.ClassText, testTables())
	assert.False(t, res.Resolved())
	assert.Equal(t, model.ConfidenceNone, res.Confidence)
	assert.Equal(t, model.KeyUnmatched, res.MatchedKey)
}

func TestTextNumericSafety(t *testing.T) {
	// The configured answer is non-numeric but the field is numeric: the
	// resolver must refuse rather than type a non-number.
	res := Text("Notice period in weeks", model.ClassNumeric, testTables())
	assert.False(t, res.Resolved())
	assert.Nil(t, res.Value)
	assert.Equal(t, model.ConfidenceLow, res.Confidence)
	assert.Equal(t, model.KeyNonNumericAnswer, res.MatchedKey)
}

func TestTextUnknownClassification(t *testing.T) {
	res := Text("Anything", model.ClassUnknown, testTables())
	assert.False(t, res.Resolved())
	assert.Equal(t, model.ConfidenceNone, res.Confidence)
	assert.Equal(t, "unknown_classification", res.MatchedKey)
}

func TestTextDateField(t *testing.T) {
	res := Text("When can you start?", model.ClassDate, testTables())
	assert.True(t, res.Resolved())
	assert.Equal(t, "2026-10-01", res.Value)
	assert.Equal(t, "start_date", res.MatchedKey)

	bare := answers.New(nil, nil)
	res = Text("When can you start?", model.ClassDate, bare)
	assert.False(t, res.Resolved())
	assert.Equal(t, model.KeyUnmatched, res.MatchedKey)
}

func TestTextRuleOrderPrecedence(t *testing.T) {
	// "years of experience" must resolve to the numeric experience key even
	// though later rules (e.g. bare "skills") could also be in the table.
	res := Text("Years of experience with SQL and skills", model.ClassNumeric, testTables())
	assert.Equal(t, "years_experience", res.MatchedKey)
}

func TestTextDeterministic(t *testing.T) {
	tables := testTables()
	first := Text("What is your GPA?", model.ClassNumeric, tables)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Text("What is your GPA?", model.ClassNumeric, tables))
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("3"))
	assert.True(t, isNumeric("3.8"))
	assert.False(t, isNumeric("two weeks"))
	assert.False(t, isNumeric("3.8.1"))
	assert.False(t, isNumeric(""))
	assert.False(t, isNumeric("."))
}
