package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

var (
	applyURL         string
	applyTest        bool
	applyInteractive bool
	applyOffline     bool
	applyFixture     string
	applyDebug       bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply to a single job",
	Long: `Runs one job through the full pipeline: perceive, classify, resolve,
fill, progress, submit. Any field the answer bank cannot resolve skips the
job; nothing is ever guessed.

Examples:
  # Dry run, stop before the final submission
  easyapply apply --url https://example.com/jobs/view/123 --test

  # Pause on violations and confirm before submitting
  easyapply apply --url https://example.com/jobs/view/123 --interactive

  # Replay a recorded fixture without a browser
  easyapply apply --url https://example.com/jobs/view/123 --offline --fixture form.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		overrideApplyFlags(cmd)
		if cfg.Apply.Interactive && cfg.Apply.TestMode {
			return eris.New("--interactive and --test are mutually exclusive")
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

		rec := orch.Run(ctx, model.JobFromURL(applyURL))
		if ctx.Err() == nil {
			if err := db.SaveRecords(ctx, []model.JobRecord{rec}); err != nil {
				return err
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

// overrideApplyFlags folds explicitly set command flags over the loaded
// config, so flags win without erasing configured defaults.
func overrideApplyFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("test") {
		cfg.Apply.TestMode = applyTest
	}
	if cmd.Flags().Changed("interactive") {
		cfg.Apply.Interactive = applyInteractive
	}
	if cmd.Flags().Changed("offline") {
		cfg.Apply.Offline = applyOffline
	}
	if cmd.Flags().Changed("fixture") {
		cfg.Apply.FixturePath = applyFixture
	}
	if cmd.Flags().Changed("debug-unresolved") {
		cfg.Apply.DebugUnresolved = applyDebug
	}
}

func init() {
	applyCmd.Flags().StringVar(&applyURL, "url", "", "job page URL (required)")
	applyCmd.Flags().BoolVar(&applyTest, "test", false, "stop before final submission and report TEST_SUCCESS")
	applyCmd.Flags().BoolVar(&applyInteractive, "interactive", false, "pause on violations and confirm before submitting")
	applyCmd.Flags().BoolVar(&applyOffline, "offline", false, "replay a fixture instead of driving a browser")
	applyCmd.Flags().StringVar(&applyFixture, "fixture", "", "fixture script path for --offline")
	applyCmd.Flags().BoolVar(&applyDebug, "debug-unresolved", false, "record unresolved fields for rule authoring")
	applyCmd.MarkFlagRequired("url") //nolint:errcheck
	rootCmd.AddCommand(applyCmd)
}
