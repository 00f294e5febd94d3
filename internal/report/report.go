package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-football-eda/internal/model"
)

// EmptyNotice is printed instead of a table when a series has no points.
const EmptyNotice = "(no rows match the current selection)"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// formatValue prints a metric value, using "—" for missing cells.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// PrintSeriesHeading prints the section heading above a series table.
func PrintSeriesHeading(w io.Writer, heading string) {
	fmt.Fprintf(w, "\n=== %s ===\n\n", heading)
}

// PrintSeriesTable prints a (season, value) table for one metric.
// An empty series prints EmptyNotice instead of an empty table.
func PrintSeriesTable(w io.Writer, metric model.Metric, points []model.Point) {
	if len(points) == 0 {
		fmt.Fprintln(w, EmptyNotice)
		return
	}
	table := newTable(w)
	table.Header("SEASON", metric.Column())
	for _, p := range points {
		table.Append(strconv.Itoa(p.Season), formatValue(p.Value))
	}
	table.Render()
}

// PrintTeams prints every team in file order, marking the selected ones with ">".
func PrintTeams(w io.Writer, teams []string, selected []string, seasons model.SeasonRange) {
	marked := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		marked[s] = struct{}{}
	}
	fmt.Fprintf(w, "%d teams, seasons %s\n\n", len(teams), seasons)
	table := newTable(w)
	table.Header(" ", "#", "TEAM")
	for i, team := range teams {
		marker := " "
		if _, ok := marked[team]; ok {
			marker = ">"
		}
		table.Append(marker, strconv.Itoa(i+1), team)
	}
	table.Render()
}

// PrintDatasetSummary prints row/team counts, the season span and per-metric statistics.
func PrintDatasetSummary(w io.Writer, path string, s model.DatasetSummary) {
	fmt.Fprintf(w, "\n=== Dataset Summary ===\n\n")
	fmt.Fprintf(w, "  Source        : %s\n", path)
	fmt.Fprintf(w, "  Rows          : %d\n", s.Rows)
	fmt.Fprintf(w, "  Teams         : %d\n", s.Teams)
	fmt.Fprintf(w, "  Seasons       : %s\n", s.Seasons)

	fmt.Fprintf(w, "\n--- Metrics ---\n\n")
	table := newTable(w)
	table.Header("METRIC", "COLUMN", "COUNT", "MEAN", "MIN", "MAX")
	for _, m := range s.Metrics {
		table.Append(
			m.Metric.Label(),
			m.Metric.Column(),
			strconv.Itoa(m.Count),
			formatValue(m.Mean),
			formatValue(m.Min),
			formatValue(m.Max),
		)
	}
	table.Render()
}

// PrintRawTable prints the result of an ad-hoc query.
func PrintRawTable(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
}
