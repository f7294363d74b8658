package answers

import "github.com/partypancake8/linkedin-is-lame/internal/model"

// Eligible decides whether a matched key is permitted to auto-resolve given
// the tier of the table it matched in. This is a presence check, never an
// inference: Tier-1 keys are eligible if present in the static bank, Tier-2
// keys only if explicitly present in the user-assertions table. There is no
// promotion between tiers.
func (t Tables) Eligible(key string, tier model.Tier) bool {
	switch tier {
	case model.Tier1:
		_, ok := t.tier1[key]
		return ok
	case model.Tier2:
		_, ok := t.assertions[key]
		return ok
	default:
		return false
	}
}
