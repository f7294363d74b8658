package apply

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// DebugSink receives flushed unresolved-field records. The store implements
// it; tests substitute an in-memory sink.
type DebugSink interface {
	AppendDebugRecords(ctx context.Context, records []model.DebugRecord) error
}

// DebugBuffer accumulates one record per unresolved field during a job. It
// is append-only while the job runs and flushed exactly once, at a terminal
// state, so a job's debug output is complete or entirely absent.
type DebugBuffer struct {
	enabled bool
	records []model.DebugRecord
	flushed bool
}

// NewDebugBuffer builds a buffer. A disabled buffer accepts and drops
// everything, so call sites never branch.
func NewDebugBuffer(enabled bool) *DebugBuffer {
	return &DebugBuffer{enabled: enabled}
}

// Add appends a record. SkipReason and StateAtExit are not known yet; Flush
// fills them in.
func (b *DebugBuffer) Add(rec model.DebugRecord) {
	if !b.enabled || b.flushed {
		return
	}
	b.records = append(b.records, rec)
}

// Len reports buffered records.
func (b *DebugBuffer) Len() int {
	return len(b.records)
}

// Flush stamps every buffered record with the job's terminal state and skip
// reason, then writes them to the sink. A second flush is a no-op.
func (b *DebugBuffer) Flush(ctx context.Context, sink DebugSink, state model.State, reason model.ViolationType) error {
	if !b.enabled || b.flushed || len(b.records) == 0 || sink == nil {
		b.flushed = true
		return nil
	}
	b.flushed = true

	for i := range b.records {
		b.records[i].StateAtExit = state
		b.records[i].SkipReason = reason
	}
	if err := sink.AppendDebugRecords(ctx, b.records); err != nil {
		return eris.Wrap(err, "flush debug records")
	}
	zap.L().Debug("apply: flushed debug records", zap.Int("count", len(b.records)))
	return nil
}
