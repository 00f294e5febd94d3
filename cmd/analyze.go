package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/aggregator"
	"github.com/pable/go-football-eda/internal/analyst"
	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/selection"
)

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeTeam   string

	analyzeFlags filterFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
	Long: `Send the per-season mean series for the current selection, plus the series of
one team when --team is given, to an Anthropic model and stream its answer to
the question. The model is told to answer only from that data.`,
	Example: `  footballeda analyze --teams Alabama,Georgia --metric turnovers "Which seasons stand out?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", analyst.DefaultModel, "Anthropic model to use")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().StringVar(&analyzeTeam, "team", "", "also include this team's series (must be selected)")
	analyzeFlags.register(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	client, err := analyst.New(analyzeAPIKey, analyzeModel)
	if err != nil {
		return err
	}

	t, err := loadTable()
	if err != nil {
		return err
	}
	in, err := analyzeFlags.input(cmd, t)
	if err != nil {
		return err
	}
	in.Team = analyzeTeam
	sel, err := selection.Resolve(t, in)
	if err != nil {
		return err
	}
	if analyzeTeam == "" {
		sel.Team = ""
	} else if sel.Team != analyzeTeam {
		return fmt.Errorf("team %q is not in the selected teams", analyzeTeam)
	}

	subset := aggregator.Filter(t, sel.Filter)
	overview := aggregator.Overview(subset, sel.Metric)
	var teamSeries model.TeamSeries
	if sel.Team != "" {
		teamSeries = aggregator.TeamSeries(subset, sel.Team, sel.Metric)
	}

	contextJSON, err := analyst.BuildContext(sel, overview, teamSeries)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, sel.Describe())
	fmt.Fprintln(out, "\n─── AI Analysis ─────────────────────────────────────")
	err = client.Stream(cmd.Context(), out, contextJSON, question)
	fmt.Fprintln(out, "\n─────────────────────────────────────────────────────")
	return err
}
