package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partypancake8/linkedin-is-lame/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "easyapply",
	Short: "Deterministic job application automation",
	Long:  "Perceives application forms, classifies fields, resolves answers from a permissioned answer bank, and applies or skips, never guessing.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
