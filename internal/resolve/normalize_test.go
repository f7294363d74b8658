package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase", "Are You Authorized To Work?", "are you authorized to work"},
		{"diacritics folded", "Attach your résumé", "attach your resume"},
		{"punctuation stripped", "G.P.A. (out of 4.0)?", "gpa out of 40"},
		{"whitespace collapsed", "  years \t of\n experience  ", "years of experience"},
		{"symbols stripped", "Salary ($USD) expected", "salary usd expected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Are you legally authorized to work?",
		"Résumé, attach below!",
		"  WHY   do you want to work here?  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeOption(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Please select an answer: Yes", "an answer yes"},
		{"Select one: Native or bilingual", "native or bilingual"},
		{"Yes", "yes"},
		{"No", "no"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOption(tt.in))
	}
}

func TestIsConsentLabel(t *testing.T) {
	assert.True(t, IsConsentLabel("I agree to the terms of service"))
	assert.True(t, IsConsentLabel("I acknowledge the privacy policy"))
	assert.True(t, IsConsentLabel("I consent to a background check"))
	assert.False(t, IsConsentLabel("Subscribe to the newsletter"))
	assert.False(t, IsConsentLabel("Follow this company"))
}
