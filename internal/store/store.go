// Package store persists job records and unresolved-field debug records
// behind a backend-neutral interface, with SQLite and Postgres
// implementations.
package store

import (
	"context"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// RecordFilter specifies criteria for listing job records.
type RecordFilter struct {
	Result model.Outcome `json:"result,omitempty"`
	JobID  string        `json:"job_id,omitempty"`
	Limit  int           `json:"limit,omitempty"`
	Offset int           `json:"offset,omitempty"`
}

// Store is the persistence interface for application runs.
//
// SaveRecords is the batch controller's single end-of-run write: every
// record in one transaction, all or none. AppendDebugRecords is the debug
// buffer's flush target and carries the same all-or-none contract per call.
type Store interface {
	SaveRecords(ctx context.Context, records []model.JobRecord) error
	AppendDebugRecords(ctx context.Context, records []model.DebugRecord) error
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.JobRecord, error)
	GetRecord(ctx context.Context, id string) (*model.JobRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
