package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

func TestRadioTier1Resolves(t *testing.T) {
	tables := testTables()

	res := Radio("Are you legally authorized to work in the United States?", 2, tables)
	assert.True(t, res.Resolved())
	assert.Equal(t, true, res.Value)
	assert.Equal(t, model.ConfidenceHigh, res.Confidence)
	assert.Equal(t, "authorized_to_work", res.MatchedKey)

	res = Radio("Will you now or in the future require sponsorship?", 2, tables)
	assert.True(t, res.Resolved())
	assert.Equal(t, false, res.Value)
	assert.Equal(t, "requires_sponsorship", res.MatchedKey)
}

func TestRadioBinaryOnly(t *testing.T) {
	tables := testTables()

	// Any option count other than two is rejected before pattern
	// evaluation, even for a question the rules would otherwise resolve.
	for _, count := range []int{0, 1, 3, 5} {
		res := Radio("Are you authorized to work?", count, tables)
		assert.False(t, res.Resolved())
		assert.Equal(t, model.ConfidenceLow, res.Confidence)
		assert.Equal(t, model.KeyMultiOptionRadio, res.MatchedKey)
	}
}

func TestRadioTier2RequiresAssertion(t *testing.T) {
	tables := testTables()

	// Present in user_assertions: resolves.
	res := Radio("Are you comfortable commuting to this job's location?", 2, tables)
	assert.True(t, res.Resolved())
	assert.Equal(t, true, res.Value)
	assert.Equal(t, "assume_commute_ok", res.MatchedKey)

	// Absent from user_assertions: no value, and the miss is reported
	// with the key suffixed for audit.
	stripped := tables.WithoutAssertion("assume_commute_ok")
	res = Radio("Are you comfortable commuting to this job's location?", 2, stripped)
	assert.False(t, res.Resolved())
	assert.Nil(t, res.Value)
	assert.Equal(t, model.ConfidenceLow, res.Confidence)
	assert.Equal(t, "assume_commute_ok"+model.NotInAssertionsSuffix, res.MatchedKey)
}

func TestRadioTier1AbsentKey(t *testing.T) {
	bare := answers.New(nil, nil)
	res := Radio("Are you authorized to work in the US?", 2, bare)
	assert.False(t, res.Resolved())
	assert.Equal(t, model.ConfidenceNone, res.Confidence)
	assert.Equal(t, model.KeyUnmatched, res.MatchedKey)
}

func TestRadioNoMatch(t *testing.T) {
	res := Radio("Do you enjoy long walks on the beach?", 2, testTables())
	assert.False(t, res.Resolved())
	assert.Equal(t, model.ConfidenceNone, res.Confidence)
	assert.Equal(t, model.KeyUnmatched, res.MatchedKey)
}

func TestRadioTier1BeforeTier2(t *testing.T) {
	// A question matching both tables must resolve from Tier-1: table order
	// is part of the contract.
	tables := answers.New(
		map[string]any{"authorized_to_work": true},
		map[string]bool{"assume_commute_ok": true},
	)
	res := Radio("Are you authorized to work and comfortable commuting?", 2, tables)
	assert.Equal(t, "authorized_to_work", res.MatchedKey)
	assert.Equal(t, model.Tier1, RadioTier(res.MatchedKey))
}

func TestRadioTier(t *testing.T) {
	assert.Equal(t, model.Tier1, RadioTier("over_18"))
	assert.Equal(t, model.Tier2, RadioTier("assume_commute_ok"))
	assert.Equal(t, model.TierUnknown, RadioTier("unmatched"))
}
