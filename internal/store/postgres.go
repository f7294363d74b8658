package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS applications (
	id                   TEXT PRIMARY KEY,
	ts                   TIMESTAMPTZ NOT NULL,
	job_id               TEXT NOT NULL,
	job_url              TEXT NOT NULL,
	result               TEXT NOT NULL,
	skip_reason          TEXT,
	state_at_exit        TEXT NOT NULL,
	elapsed_seconds      DOUBLE PRECISION NOT NULL,
	fields_resolved      INTEGER NOT NULL DEFAULT 0,
	fields_unresolved    INTEGER NOT NULL DEFAULT 0,
	confidence_floor_hit BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS unresolved_fields (
	id             TEXT PRIMARY KEY,
	ts             TIMESTAMPTZ NOT NULL,
	job_id         TEXT NOT NULL,
	job_url        TEXT NOT NULL,
	state_at_exit  TEXT NOT NULL,
	skip_reason    TEXT,
	field_type     TEXT NOT NULL,
	question_text  TEXT NOT NULL,
	options        JSONB,
	classification TEXT,
	tier           TEXT,
	eligible       BOOLEAN NOT NULL DEFAULT FALSE,
	confidence     TEXT NOT NULL,
	matched_key    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
CREATE INDEX IF NOT EXISTS idx_applications_result ON applications(result);
CREATE INDEX IF NOT EXISTS idx_unresolved_fields_job_id ON unresolved_fields(job_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveRecords writes the whole batch in one transaction.
func (s *PostgresStore) SaveRecords(ctx context.Context, records []model.JobRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO applications
			 (id, ts, job_id, job_url, result, skip_reason, state_at_exit,
			  elapsed_seconds, fields_resolved, fields_unresolved, confidence_floor_hit)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.ID, rec.Timestamp, rec.JobID, rec.JobURL, string(rec.Result),
			string(rec.SkipReason), string(rec.StateAtExit), rec.ElapsedSeconds,
			rec.FieldsResolved, rec.FieldsUnresolved, rec.ConfidenceFloorHit,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert record %s", rec.ID)
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit records")
}

// AppendDebugRecords writes one flush of the debug buffer in one transaction.
func (s *PostgresStore) AppendDebugRecords(ctx context.Context, records []model.DebugRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		optionsJSON, err := json.Marshal(rec.Options)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal options")
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO unresolved_fields
			 (id, ts, job_id, job_url, state_at_exit, skip_reason, field_type,
			  question_text, options, classification, tier, eligible, confidence, matched_key)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			uuid.NewString(), rec.Timestamp, rec.JobID, rec.JobURL,
			string(rec.StateAtExit), string(rec.SkipReason), string(rec.FieldType),
			rec.QuestionText, string(optionsJSON), string(rec.Classification),
			string(rec.Tier), rec.Eligible, string(rec.Confidence), rec.MatchedKey,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert debug record")
		}
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit debug records")
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.JobRecord, error) {
	query := `SELECT id, ts, job_id, job_url, result, skip_reason, state_at_exit,
	          elapsed_seconds, fields_resolved, fields_unresolved, confidence_floor_hit
	          FROM applications WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.Result != "" {
		query += ` AND result = ` + arg(string(filter.Result))
	}
	if filter.JobID != "" {
		query += ` AND job_id = ` + arg(filter.JobID)
	}
	query += ` ORDER BY ts DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.JobRecord
	for rows.Next() {
		rec, err := scanPgRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.JobRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, ts, job_id, job_url, result, skip_reason, state_at_exit,
		 elapsed_seconds, fields_resolved, fields_unresolved, confidence_floor_hit
		 FROM applications WHERE id = $1`,
		id,
	)
	return scanPgRecord(row)
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func scanPgRecord(row pgx.Row) (*model.JobRecord, error) {
	var rec model.JobRecord
	var result, skipReason, state string

	err := row.Scan(&rec.ID, &rec.Timestamp, &rec.JobID, &rec.JobURL, &result,
		&skipReason, &state, &rec.ElapsedSeconds,
		&rec.FieldsResolved, &rec.FieldsUnresolved, &rec.ConfidenceFloorHit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("record not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan record")
	}
	rec.Result = model.Outcome(result)
	rec.SkipReason = model.ViolationType(skipReason)
	rec.StateAtExit = model.State(state)
	return &rec, nil
}
