package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS applications (
	id                   TEXT PRIMARY KEY,
	ts                   DATETIME NOT NULL,
	job_id               TEXT NOT NULL,
	job_url              TEXT NOT NULL,
	result               TEXT NOT NULL,
	skip_reason          TEXT,
	state_at_exit        TEXT NOT NULL,
	elapsed_seconds      REAL NOT NULL,
	fields_resolved      INTEGER NOT NULL DEFAULT 0,
	fields_unresolved    INTEGER NOT NULL DEFAULT 0,
	confidence_floor_hit INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS unresolved_fields (
	id            TEXT PRIMARY KEY,
	ts            DATETIME NOT NULL,
	job_id        TEXT NOT NULL,
	job_url       TEXT NOT NULL,
	state_at_exit TEXT NOT NULL,
	skip_reason   TEXT,
	field_type    TEXT NOT NULL,
	question_text TEXT NOT NULL,
	options       TEXT,
	classification TEXT,
	tier          TEXT,
	eligible      INTEGER NOT NULL DEFAULT 0,
	confidence    TEXT NOT NULL,
	matched_key   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
CREATE INDEX IF NOT EXISTS idx_applications_result ON applications(result);
CREATE INDEX IF NOT EXISTS idx_unresolved_fields_job_id ON unresolved_fields(job_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecords writes the whole batch in one transaction.
func (s *SQLiteStore) SaveRecords(ctx context.Context, records []model.JobRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO applications
			 (id, ts, job_id, job_url, result, skip_reason, state_at_exit,
			  elapsed_seconds, fields_resolved, fields_unresolved, confidence_floor_hit)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Timestamp, rec.JobID, rec.JobURL, string(rec.Result),
			string(rec.SkipReason), string(rec.StateAtExit), rec.ElapsedSeconds,
			rec.FieldsResolved, rec.FieldsUnresolved, rec.ConfidenceFloorHit,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert record %s", rec.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit records")
}

// AppendDebugRecords writes one flush of the debug buffer in one transaction.
func (s *SQLiteStore) AppendDebugRecords(ctx context.Context, records []model.DebugRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	for _, rec := range records {
		optionsJSON, err := json.Marshal(rec.Options)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal options")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO unresolved_fields
			 (id, ts, job_id, job_url, state_at_exit, skip_reason, field_type,
			  question_text, options, classification, tier, eligible, confidence, matched_key)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), rec.Timestamp, rec.JobID, rec.JobURL,
			string(rec.StateAtExit), string(rec.SkipReason), string(rec.FieldType),
			rec.QuestionText, string(optionsJSON), string(rec.Classification),
			string(rec.Tier), rec.Eligible, string(rec.Confidence), rec.MatchedKey,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert debug record")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit debug records")
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.JobRecord, error) {
	query := `SELECT id, ts, job_id, job_url, result, skip_reason, state_at_exit,
	          elapsed_seconds, fields_resolved, fields_unresolved, confidence_floor_hit
	          FROM applications WHERE 1=1`
	var args []any

	if filter.Result != "" {
		query += ` AND result = ?`
		args = append(args, string(filter.Result))
	}
	if filter.JobID != "" {
		query += ` AND job_id = ?`
		args = append(args, filter.JobID)
	}
	query += ` ORDER BY ts DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.JobRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ts, job_id, job_url, result, skip_reason, state_at_exit,
		 elapsed_seconds, fields_resolved, fields_unresolved, confidence_floor_hit
		 FROM applications WHERE id = ?`,
		id,
	)
	return scanRecord(row)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.JobRecord, error) {
	var rec model.JobRecord
	var skipReason sql.NullString

	err := row.Scan(&rec.ID, &rec.Timestamp, &rec.JobID, &rec.JobURL, &rec.Result,
		&skipReason, &rec.StateAtExit, &rec.ElapsedSeconds,
		&rec.FieldsResolved, &rec.FieldsUnresolved, &rec.ConfidenceFloorHit)
	if err == sql.ErrNoRows {
		return nil, eris.New("record not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan record")
	}
	if skipReason.Valid {
		rec.SkipReason = model.ViolationType(skipReason.String)
	}
	return &rec, nil
}
