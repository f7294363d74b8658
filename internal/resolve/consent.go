package resolve

// consentKeywords identify plain agreement checkboxes. Anything a checkbox
// label says beyond consent language leaves the box untouched.
var consentKeywords = []string{"agree", "consent", "terms", "acknowledge", "confirm"}

// IsConsentLabel reports whether a checkbox label is a simple
// consent/agreement box that may be ticked automatically.
func IsConsentLabel(labelText string) bool {
	normalized := Normalize(labelText)
	for _, kw := range consentKeywords {
		if containsAll(normalized, []string{kw}) {
			return true
		}
	}
	return false
}
