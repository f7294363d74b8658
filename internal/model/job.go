package model

import (
	"regexp"
	"strings"
	"time"
)

// Outcome is the terminal result of one job attempt.
type Outcome string

const (
	OutcomeSuccess            Outcome = "SUCCESS"
	OutcomeTestSuccess        Outcome = "TEST_SUCCESS"
	OutcomeSkipped            Outcome = "SKIPPED"
	OutcomeSkippedAlreadyDone Outcome = "SKIPPED_ALREADY_APPLIED"
	OutcomeCancelled          Outcome = "CANCELLED"
	OutcomeFailed             Outcome = "FAILED"
)

// Job identifies one application target.
type Job struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

var jobIDPattern = regexp.MustCompile(`/jobs/view/(\d+)`)

// JobFromURL builds a Job, extracting the numeric job ID from the URL path
// when present. URLs without a recognizable ID keep the trimmed URL as ID so
// deduplication and records still work.
func JobFromURL(rawURL string) Job {
	url := strings.TrimSpace(rawURL)
	job := Job{ID: url, URL: url}
	if m := jobIDPattern.FindStringSubmatch(url); m != nil {
		job.ID = m[1]
	}
	return job
}

// JobRecord is the single result row for one job attempt. It is created at
// job start, mutated only by the orchestrator and violation gate for that
// job, and flushed to durable storage only at end of run.
type JobRecord struct {
	ID                 string        `json:"-"`
	Timestamp          time.Time     `json:"timestamp"`
	JobID              string        `json:"job_id"`
	JobURL             string        `json:"job_url"`
	Result             Outcome       `json:"result"`
	SkipReason         ViolationType `json:"skip_reason,omitempty"`
	StateAtExit        State         `json:"state_at_exit"`
	ElapsedSeconds     float64       `json:"elapsed_seconds"`
	FieldsResolved     int           `json:"fields_resolved_count"`
	FieldsUnresolved   int           `json:"fields_unresolved_count"`
	ConfidenceFloorHit bool          `json:"confidence_floor_hit"`
}

// DebugRecord captures one unresolved field for offline inspection. Emitted
// only when the debug-unresolved buffer is enabled, and flushed only on
// terminal states so a job's records are complete or entirely absent.
type DebugRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	JobID          string         `json:"job_id"`
	JobURL         string         `json:"job_url"`
	StateAtExit    State          `json:"state_at_exit"`
	SkipReason     ViolationType  `json:"skip_reason"`
	FieldType      FieldKind      `json:"field_type"`
	QuestionText   string         `json:"question_text"`
	Options        []string       `json:"options"`
	Classification Classification `json:"classification"`
	Tier           Tier           `json:"tier"`
	Eligible       bool           `json:"eligible"`
	Confidence     Confidence     `json:"confidence"`
	MatchedKey     string         `json:"matched_key"`
}
