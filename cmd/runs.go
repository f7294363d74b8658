package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
	"github.com/partypancake8/linkedin-is-lame/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect application history",
	Long:  "Commands for listing and viewing past application attempts.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List application attempts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		db, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		if err := db.Migrate(ctx); err != nil {
			return err
		}

		result, _ := cmd.Flags().GetString("result")
		jobID, _ := cmd.Flags().GetString("job")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RecordFilter{
			Result: model.Outcome(result),
			JobID:  jobID,
			Limit:  limit,
		}

		records, err := db.ListRecords(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No records found.")
			return nil
		}

		formatRecordsList(os.Stdout, records)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show full details of one attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck
		if err := db.Migrate(ctx); err != nil {
			return err
		}

		rec, err := db.GetRecord(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

// formatRecordsList writes a tabular list of records to w.
func formatRecordsList(out io.Writer, records []model.JobRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tJOB\tRESULT\tREASON\tSTATE\tELAPSED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.1fs\n",
			rec.ID,
			rec.Timestamp.Format("2006-01-02 15:04"),
			rec.JobID,
			rec.Result,
			rec.SkipReason,
			rec.StateAtExit,
			rec.ElapsedSeconds,
		)
	}
	w.Flush() //nolint:errcheck
}

func init() {
	runsListCmd.Flags().String("result", "", "filter by result (SUCCESS, SKIPPED, ...)")
	runsListCmd.Flags().String("job", "", "filter by job ID")
	runsListCmd.Flags().Int("limit", 50, "max records to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
