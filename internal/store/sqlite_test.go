package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "easyapply.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRecord(id, jobID string, result model.Outcome, ts time.Time) model.JobRecord {
	return model.JobRecord{
		ID:             id,
		Timestamp:      ts,
		JobID:          jobID,
		JobURL:         "https://example.com/jobs/view/" + jobID,
		Result:         result,
		StateAtExit:    model.StateSubmitted,
		ElapsedSeconds: 12.5,
		FieldsResolved: 4,
	}
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rec := sampleRecord("rec-1", "100", model.OutcomeSkipped, time.Now().UTC())
	rec.SkipReason = model.ViolationUnresolvedField
	rec.StateAtExit = model.StateTextField
	rec.FieldsUnresolved = 1
	rec.ConfidenceFloorHit = true

	require.NoError(t, s.SaveRecords(ctx, []model.JobRecord{rec}))

	got, err := s.GetRecord(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "100", got.JobID)
	assert.Equal(t, model.OutcomeSkipped, got.Result)
	assert.Equal(t, model.ViolationUnresolvedField, got.SkipReason)
	assert.Equal(t, model.StateTextField, got.StateAtExit)
	assert.Equal(t, 1, got.FieldsUnresolved)
	assert.True(t, got.ConfidenceFloorHit)
}

func TestSQLiteGetMissingRecord(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRecord(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLiteSaveEmptyBatchIsNoop(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.SaveRecords(context.Background(), nil))
}

func TestSQLiteListFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRecords(ctx, []model.JobRecord{
		sampleRecord("rec-1", "100", model.OutcomeSuccess, base),
		sampleRecord("rec-2", "200", model.OutcomeSkipped, base.Add(time.Minute)),
		sampleRecord("rec-3", "100", model.OutcomeSuccess, base.Add(2*time.Minute)),
	}))

	all, err := s.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "rec-3", all[0].ID)
	assert.Equal(t, "rec-1", all[2].ID)

	skipped, err := s.ListRecords(ctx, RecordFilter{Result: model.OutcomeSkipped})
	require.NoError(t, err)
	require.Len(t, skipped, 1)
	assert.Equal(t, "rec-2", skipped[0].ID)

	byJob, err := s.ListRecords(ctx, RecordFilter{JobID: "100"})
	require.NoError(t, err)
	assert.Len(t, byJob, 2)

	limited, err := s.ListRecords(ctx, RecordFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "rec-2", limited[0].ID)
}

func TestSQLiteAppendDebugRecords(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	records := []model.DebugRecord{
		{
			Timestamp:      time.Now().UTC(),
			JobID:          "100",
			JobURL:         "https://example.com/jobs/view/100",
			StateAtExit:    model.StateRadio,
			SkipReason:     model.ViolationLowConfidence,
			FieldType:      model.FieldRadio,
			QuestionText:   "Race/ethnicity",
			Options:        []string{"A", "B", "C"},
			Classification: model.ClassUnknown,
			Tier:           model.TierUnknown,
			Confidence:     model.ConfidenceLow,
			MatchedKey:     "multi_option_radio",
		},
	}
	require.NoError(t, s.AppendDebugRecords(ctx, records))
	assert.NoError(t, s.AppendDebugRecords(ctx, nil))
}
