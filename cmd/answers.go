package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Validate and print the loaded answer tables",
	Long: `Loads the answers file and prints the Tier-1 bank and the Tier-2
user assertions. A parse or type error exits non-zero, so this doubles as a
validation step after editing the file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, err := answers.Load(cfg.Answers.Path)
		if err != nil {
			return err
		}
		printAnswerTables(os.Stdout, tables)
		return nil
	},
}

func printAnswerTables(out io.Writer, tables answers.Tables) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "TIER-1 KEY\tVALUE")
	tier1 := tables.Tier1Keys()
	keys := make([]string, 0, len(tier1))
	for k := range tier1 {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%v\n", k, tier1[k])
	}

	fmt.Fprintln(w, "\nTIER-2 ASSERTION\tVALUE")
	asserts := tables.AssertionKeys()
	keys = keys[:0]
	for k := range asserts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%t\n", k, asserts[k])
	}

	w.Flush() //nolint:errcheck
}

func init() {
	rootCmd.AddCommand(answersCmd)
}
