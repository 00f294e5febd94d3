package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/report"
	"github.com/pable/go-football-eda/internal/selection"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List teams in file order and the observed season range",
	Long: `List every team in the order it first appears in the data file. Teams marked
with ">" make up the default selection.`,
	Args: cobra.NoArgs,
	RunE: runTeams,
}

func runTeams(cmd *cobra.Command, args []string) error {
	t, err := loadTable()
	if err != nil {
		return err
	}
	def := selection.Defaults(t)
	report.PrintTeams(cmd.OutOrStdout(), t.Teams(), def.Filter.Teams, def.Filter.Seasons)
	return nil
}
