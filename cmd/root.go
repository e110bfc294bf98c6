package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pipeline-score",
	Short: "Contractor lead scoring and SEO intelligence",
	Long:  "Scores contractor questionnaires, forecasts 60/90-day pipeline, measures local search standing and hands leads to CRM and email systems.",
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
