package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/aggregator"
	"github.com/pable/go-football-eda/internal/report"
)

// summaryCmd is the cobra command for displaying a high-level dataset overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the dataset",
	Long: `Display aggregate statistics about the data file: row and team counts,
the season span, and count/mean/min/max for every metric. Missing cells are
left out of the per-metric figures.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	t, err := loadTable()
	if err != nil {
		return err
	}
	report.PrintDatasetSummary(cmd.OutOrStdout(), dataPath, aggregator.Describe(t))
	return nil
}
