package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/aggregator"
	"github.com/pable/go-football-eda/internal/chart"
	"github.com/pable/go-football-eda/internal/report"
	"github.com/pable/go-football-eda/internal/selection"
)

var overviewFlags filterFlags

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Per-season mean of a metric across the selected teams",
	Long: `Print the selected metric averaged by season across the selected teams and
season range. Missing values are skipped; a season whose values are all
missing shows "—". Use --png to also write the chart.`,
	Example: `  footballeda overview --teams Alabama,Georgia --from 2015 --to 2020 --metric yards
  footballeda overview --all-teams --chart bar --png overview.png`,
	Args: cobra.NoArgs,
	RunE: runOverview,
}

func init() {
	overviewFlags.register(overviewCmd)
	overviewFlags.registerChart(overviewCmd)
	overviewFlags.registerPNG(overviewCmd)
}

func runOverview(cmd *cobra.Command, args []string) error {
	t, err := loadTable()
	if err != nil {
		return err
	}
	in, err := overviewFlags.input(cmd, t)
	if err != nil {
		return err
	}
	sel, err := selection.Resolve(t, in)
	if err != nil {
		return err
	}

	points := aggregator.Overview(aggregator.Filter(t, sel.Filter), sel.Metric)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, sel.Describe())
	report.PrintSeriesHeading(out, sel.Metric.Label()+" by Season")
	report.PrintSeriesTable(out, sel.Metric, points)

	if overviewFlags.png != "" {
		return writePNG(overviewFlags.png, chart.Spec{
			Title:  chart.OverviewTitle(sel.Metric),
			Metric: sel.Metric,
			Kind:   sel.Chart,
			Points: points,
		})
	}
	return nil
}
