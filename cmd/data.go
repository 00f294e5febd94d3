package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/chart"
	"github.com/pable/go-football-eda/internal/loader"
	"github.com/pable/go-football-eda/internal/logger"
	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/selection"
)

// loadError reports a load failure with the user-facing wording while keeping
// the underlying error for errors.Is.
type loadError struct{ err error }

func (e *loadError) Error() string { return loader.Message(e.err) }
func (e *loadError) Unwrap() error { return e.err }

// loadTable loads the configured data source through the shared cache.
func loadTable() (*model.Table, error) {
	t, err := cache.Load(dataPath)
	if err != nil {
		return nil, &loadError{err: err}
	}
	return t, nil
}

// filterFlags are the selection controls shared by overview, team and analyze.
type filterFlags struct {
	teams    string
	allTeams bool
	from     int
	to       int
	metric   string
	chart    string
	png      string
}

func (f *filterFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.teams, "teams", "", "comma-separated teams (default: first 5 in file order)")
	c.Flags().BoolVar(&f.allTeams, "all-teams", false, "select every team in the file")
	c.Flags().IntVar(&f.from, "from", 0, "first season (default: earliest observed)")
	c.Flags().IntVar(&f.to, "to", 0, "last season (default: latest observed)")
	c.Flags().StringVar(&f.metric, "metric", "", "metric: plays, yards, tds, turnovers (or its label/column)")
}

func (f *filterFlags) registerChart(c *cobra.Command) {
	c.Flags().StringVar(&f.chart, "chart", "", "chart type for --png: line or bar")
}

func (f *filterFlags) registerPNG(c *cobra.Command) {
	c.Flags().StringVar(&f.png, "png", "", "also write the chart to this PNG file")
}

// input converts the flags into a selection input; only flags the user set are applied.
func (f *filterFlags) input(c *cobra.Command, t *model.Table) (selection.Input, error) {
	if f.allTeams && c.Flags().Changed("teams") {
		return selection.Input{}, fmt.Errorf("--teams and --all-teams are mutually exclusive")
	}
	in := selection.Input{Metric: f.metric, Chart: f.chart}
	switch {
	case f.allTeams:
		in.Teams, in.TeamsSet = t.Teams(), true
	case c.Flags().Changed("teams"):
		in.Teams, in.TeamsSet = selection.SplitTeams(f.teams), true
	}
	if c.Flags().Changed("from") {
		from := f.from
		in.From = &from
	}
	if c.Flags().Changed("to") {
		to := f.to
		in.To = &to
	}
	return in, nil
}

// writePNG renders spec into path.
func writePNG(path string, spec chart.Spec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := chart.Render(f, spec); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	logger.Info("wrote chart", "path", path, "title", spec.Title)
	return nil
}
