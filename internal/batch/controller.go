// Package batch runs a list of jobs strictly serially through the
// orchestrator and writes the aggregate result exactly once, at the end of
// the run.
package batch

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
	"github.com/partypancake8/linkedin-is-lame/internal/store"
)

// Runner executes one job and always returns a terminal record. The
// orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, job model.Job) model.JobRecord
}

// Options tune the batch loop. JobsPerMinute <= 0 disables pacing; Limit <= 0
// means no cap.
type Options struct {
	JobsPerMinute float64
	Limit         int
}

// Summary is the in-memory aggregate of one run.
type Summary struct {
	Total    int                   `json:"total"`
	Outcomes map[model.Outcome]int `json:"outcomes"`
	Records  []model.JobRecord     `json:"records"`
}

// Controller owns the run loop. There is exactly one browser session and one
// job in flight at any time; concurrency is deliberately absent.
type Controller struct {
	runner Runner
	db     store.Store
	opts   Options
}

// New builds a controller. db may be nil for dry runs without persistence.
func New(runner Runner, db store.Store, opts Options) *Controller {
	return &Controller{runner: runner, db: db, opts: opts}
}

// Dedup returns jobs for the given URLs with duplicates removed, preserving
// first-occurrence order. Two URLs naming the same job ID are duplicates.
func Dedup(urls []string) []model.Job {
	seen := make(map[string]bool, len(urls))
	jobs := make([]model.Job, 0, len(urls))
	for _, url := range urls {
		job := model.JobFromURL(url)
		if job.URL == "" || seen[job.ID] {
			continue
		}
		seen[job.ID] = true
		jobs = append(jobs, job)
	}
	return jobs
}

// Run processes every unique job in order and persists all records in a
// single write at the end. An interrupted run persists nothing: a partial
// aggregate would be indistinguishable from a complete one.
func (c *Controller) Run(ctx context.Context, urls []string) (Summary, error) {
	jobs := Dedup(urls)
	if c.opts.Limit > 0 && len(jobs) > c.opts.Limit {
		jobs = jobs[:c.opts.Limit]
	}
	summary := Summary{Outcomes: make(map[model.Outcome]int)}

	var limiter *rate.Limiter
	if c.opts.JobsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.opts.JobsPerMinute/60.0), 1)
	}

	zap.L().Info("batch: run started",
		zap.Int("unique_jobs", len(jobs)),
		zap.Float64("jobs_per_minute", c.opts.JobsPerMinute))

	for i, job := range jobs {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				zap.L().Warn("batch: interrupted while pacing, discarding partial results",
					zap.Int("completed", i))
				return summary, eris.Wrap(err, "batch: interrupted")
			}
		} else if ctx.Err() != nil {
			zap.L().Warn("batch: interrupted, discarding partial results", zap.Int("completed", i))
			return summary, eris.Wrap(ctx.Err(), "batch: interrupted")
		}

		rec := c.runner.Run(ctx, job)
		summary.Records = append(summary.Records, rec)
		summary.Total++
		summary.Outcomes[rec.Result]++

		if ctx.Err() != nil {
			zap.L().Warn("batch: interrupted mid-job, discarding partial results",
				zap.Int("completed", i+1))
			return summary, eris.Wrap(ctx.Err(), "batch: interrupted")
		}
	}

	if c.db != nil {
		if err := c.db.SaveRecords(ctx, summary.Records); err != nil {
			return summary, eris.Wrap(err, "batch: save records")
		}
	}
	zap.L().Info("batch: run finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Outcomes[model.OutcomeSuccess]+summary.Outcomes[model.OutcomeTestSuccess]))
	return summary, nil
}
