package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/aggregator"
	"github.com/pable/go-football-eda/internal/chart"
	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/report"
	"github.com/pable/go-football-eda/internal/selection"
)

var teamFlags filterFlags

var teamCmd = &cobra.Command{
	Use:   "team <name>",
	Short: "Chronological values of a metric for one team",
	Long: `Print the selected metric for one team, one row per season in the range.
Unless --teams or --all-teams is given the selection is just the named team.
The team chart is always a line chart.`,
	Example: `  footballeda team Alabama --metric tds --from 2010
  footballeda team Georgia --png georgia.png`,
	Args: cobra.ExactArgs(1),
	RunE: runTeam,
}

func init() {
	teamFlags.register(teamCmd)
	teamFlags.registerPNG(teamCmd)
}

func runTeam(cmd *cobra.Command, args []string) error {
	name := args[0]
	t, err := loadTable()
	if err != nil {
		return err
	}
	if !slices.Contains(t.Teams(), name) {
		return fmt.Errorf("unknown team %q (run 'teams' to list them)", name)
	}

	in, err := teamFlags.input(cmd, t)
	if err != nil {
		return err
	}
	if !in.TeamsSet {
		in.Teams, in.TeamsSet = []string{name}, true
	}
	in.Team = name
	sel, err := selection.Resolve(t, in)
	if err != nil {
		return err
	}
	if sel.Team != name {
		return fmt.Errorf("team %q is not in the selected teams", name)
	}

	points := aggregator.TeamSeries(aggregator.Filter(t, sel.Filter), name, sel.Metric)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, sel.Describe())
	report.PrintSeriesHeading(out, chart.TeamTitle(name, sel.Metric))
	report.PrintSeriesTable(out, sel.Metric, points)

	if teamFlags.png != "" {
		return writePNG(teamFlags.png, chart.Spec{
			Title:  chart.TeamTitle(name, sel.Metric),
			Metric: sel.Metric,
			Kind:   model.ChartLine,
			Points: points,
		})
	}
	return nil
}
