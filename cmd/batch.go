package main

import (
	"bufio"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partypancake8/linkedin-is-lame/internal/batch"
)

var (
	batchJobsFile string
	batchLimit    int
	batchRate     float64
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Apply to a list of jobs serially",
	Long: `Reads job URLs from a file (one per line, # starts a comment),
deduplicates them, and runs each through the pipeline in order. One browser
session, one job at a time. Records are written once, at the end of the run;
an interrupted run writes nothing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		overrideApplyFlags(cmd)
		if cfg.Apply.Interactive && cfg.Apply.TestMode {
			return eris.New("--interactive and --test are mutually exclusive")
		}

		urls, err := readJobsFile(batchJobsFile)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			return eris.Errorf("no job URLs in %s", batchJobsFile)
		}

		db, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		if err := db.Migrate(ctx); err != nil {
			return err
		}

		surface, err := buildSurface()
		if err != nil {
			return err
		}
		defer surface.Close() //nolint:errcheck

		orch, err := buildOrchestrator(surface, db)
		if err != nil {
			return err
		}

		rate := cfg.Batch.JobsPerMinute
		if cmd.Flags().Changed("rate") {
			rate = batchRate
		}
		limit := cfg.Batch.Limit
		if cmd.Flags().Changed("limit") {
			limit = batchLimit
		}

		ctl := batch.New(orch, db, batch.Options{JobsPerMinute: rate, Limit: limit})
		summary, err := ctl.Run(ctx, urls)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

// readJobsFile parses the flat job list: one URL per line, blank lines and
// # comments ignored.
func readJobsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open jobs file %s", path)
	}
	defer f.Close() //nolint:errcheck

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read jobs file %s", path)
	}
	zap.L().Info("batch: jobs file parsed", zap.String("path", path), zap.Int("urls", len(urls)))
	return urls, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchJobsFile, "jobs", "", "path to job URL list (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max unique jobs to process (0 = all)")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "job starts per minute (0 = unpaced)")
	batchCmd.Flags().BoolVar(&applyTest, "test", false, "stop before final submission on every job")
	batchCmd.Flags().BoolVar(&applyInteractive, "interactive", false, "pause on violations and confirm submissions")
	batchCmd.Flags().BoolVar(&applyOffline, "offline", false, "replay a fixture instead of driving a browser")
	batchCmd.Flags().StringVar(&applyFixture, "fixture", "", "fixture script path for --offline")
	batchCmd.Flags().BoolVar(&applyDebug, "debug-unresolved", false, "record unresolved fields for rule authoring")
	batchCmd.MarkFlagRequired("jobs") //nolint:errcheck
	rootCmd.AddCommand(batchCmd)
}
