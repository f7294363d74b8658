package model

// Tier is the automation-permission level of a matched answer key. Tier-1
// keys come from the always-safe static bank; Tier-2 keys require an explicit
// entry in the separate user-assertions table. Presence, not inference, gates
// automation.
type Tier string

const (
	Tier1         Tier = "tier-1"
	Tier2         Tier = "tier-2"
	NeverAutomate Tier = "never-automate"
	TierUnknown   Tier = "unknown"
)

// Classification is the semantic category a text field's metadata maps to.
// ClassUnknown is a legitimate terminal classification: it forces a violation
// downstream rather than a best-effort fill.
type Classification string

const (
	ClassNumeric Classification = "NUMERIC_FIELD"
	ClassText    Classification = "TEXT_FIELD"
	ClassDate    Classification = "DATE_FIELD"
	ClassUnknown Classification = "UNKNOWN"
)
