package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/report"
	"github.com/pable/go-football-eda/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the loaded data",
	Long: `Mirror the data file into an in-memory SQLite database and run an arbitrary
SQL query against it, printing the result as a table.

Schema:
  seasons(row_index, team, season, off_plays, off_yards, total_tds, turnovers_lost)

row_index is the row's position in the file. Missing metric cells are NULL, so
AVG() matches the per-season means printed by 'overview'.`,
	Example: `  footballeda sql "SELECT season, AVG(off_yards) FROM seasons GROUP BY season"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	t, err := loadTable()
	if err != nil {
		return err
	}
	return queryTable(cmd.OutOrStdout(), t, strings.Join(args, " "))
}

// queryTable mirrors t into a fresh in-memory database and prints the result of query.
func queryTable(w io.Writer, t *model.Table, query string) error {
	db, err := storage.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := db.ImportTable(t); err != nil {
		return fmt.Errorf("import table: %w", err)
	}

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return nil
	}
	report.PrintRawTable(w, cols, rows)
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
	return nil
}
