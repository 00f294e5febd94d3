package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-football-eda/internal/aggregator"
	"github.com/pable/go-football-eda/internal/chart"
	"github.com/pable/go-football-eda/internal/loader"
	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/report"
	"github.com/pable/go-football-eda/internal/selection"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long: `Open a persistent session against the data file. The session keeps a team,
season, metric and chart selection between commands. Type 'help' for available
commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cache, dataPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cGreeting.Fprintln(s.out, "footballeda shell")
	cMuted.Fprintln(s.out, "type 'help' or 'exit'")
	fmt.Fprintln(s.out)
	return s.run(cmd.InOrStdin())
}

// session is the state of one shell: the loaded table and the current selection.
type session struct {
	cache  *loader.Cache
	path   string
	out    io.Writer
	errOut io.Writer

	table *model.Table
	sel   selection.Selection
}

func newSession(c *loader.Cache, path string, out, errOut io.Writer) (*session, error) {
	t, err := c.Load(path)
	if err != nil {
		return nil, &loadError{err: err}
	}
	return &session{
		cache:  c,
		path:   path,
		out:    out,
		errOut: errOut,
		table:  t,
		sel:    selection.Defaults(t),
	}, nil
}

func (s *session) run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for {
		cPrompt.Fprint(s.out, "footballeda")
		cMuted.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := s.handle(line); quit {
			return nil
		}
	}
	return scanner.Err()
}

// handle executes one command line and reports whether the session should end.
func (s *session) handle(line string) bool {
	tokens := strings.Fields(line)
	cmd, args := tokens[0], tokens[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		s.help()
	case "show":
		fmt.Fprintln(s.out, s.sel.Describe())
	case "teams":
		report.PrintTeams(s.out, s.table.Teams(), s.sel.Filter.Teams, s.bounds())
	case "summary":
		report.PrintDatasetSummary(s.out, s.path, aggregator.Describe(s.table))
	case "select":
		if rest == "" {
			s.usage("select <team>[,<team>...] | all | none")
			return false
		}
		var teams []string
		switch rest {
		case "all":
			teams = s.table.Teams()
		case "none":
		default:
			teams = selection.SplitTeams(rest)
		}
		s.apply(func(in *selection.Input) { in.Teams = teams })
	case "range":
		if len(args) != 2 {
			s.usage("range <from> <to>")
			return false
		}
		from, err1 := strconv.Atoi(args[0])
		to, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			s.usage("range <from> <to>")
			return false
		}
		s.apply(func(in *selection.Input) { in.From, in.To = &from, &to })
	case "metric":
		if rest == "" {
			s.usage("metric plays | yards | tds | turnovers")
			return false
		}
		s.apply(func(in *selection.Input) { in.Metric = rest })
	case "chart":
		if rest == "" {
			s.usage("chart line | bar")
			return false
		}
		s.apply(func(in *selection.Input) { in.Chart = rest })
	case "pick":
		if rest == "" {
			s.usage("pick <team>")
			return false
		}
		s.apply(func(in *selection.Input) { in.Team = rest })
		if s.sel.Team != rest {
			cWarn.Fprintf(s.errOut, "%q is not a selected team; showing %q\n", rest, s.sel.Team)
		}
	case "overview":
		s.overview(rest)
	case "team":
		s.team(rest)
	case "sql":
		if rest == "" {
			s.usage("sql <query>")
			return false
		}
		if err := queryTable(s.out, s.table, rest); err != nil {
			s.fail(err)
		}
	case "reload":
		s.reload()
	default:
		cWarn.Fprintf(s.errOut, "unknown command %q, type 'help'\n", cmd)
	}
	return false
}

func (s *session) help() {
	fmt.Fprintln(s.out)
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"show", "print the current selection"},
		{"teams", "list teams; selected ones are marked with >"},
		{"summary", "dataset overview and per-metric statistics"},
		{"select <a>,<b>... | all | none", "set the team selection"},
		{"range <from> <to>", "set the season range (clamped to the data)"},
		{"metric <name>", "plays, yards, tds or turnovers"},
		{"chart line | bar", "chart type for overview PNGs"},
		{"pick <team>", "team shown by 'team'"},
		{"overview [file.png]", "per-season mean across the selection"},
		{"team [file.png]", "the picked team over time"},
		{"sql <query>", "query the data as the 'seasons' table"},
		{"reload", "re-read the data file"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Fprint(s.out, "  ")
		cCmd.Fprintf(s.out, "%-34s", r.cmd)
		fmt.Fprintln(s.out, r.desc)
	}
	fmt.Fprintln(s.out)
}

// input rebuilds the raw control values behind the current selection.
func (s *session) input() selection.Input {
	from, to := s.sel.Filter.Seasons.Min, s.sel.Filter.Seasons.Max
	return selection.Input{
		Teams:    append([]string{}, s.sel.Filter.Teams...),
		TeamsSet: true,
		From:     &from,
		To:       &to,
		Metric:   s.sel.Metric.Key(),
		Chart:    s.sel.Chart.String(),
		Team:     s.sel.Team,
	}
}

// apply changes one control and re-resolves the selection against the table.
// An invalid value leaves the selection untouched.
func (s *session) apply(change func(*selection.Input)) {
	in := s.input()
	change(&in)
	sel, err := selection.Resolve(s.table, in)
	if err != nil {
		s.fail(err)
		return
	}
	s.sel = sel
	cMuted.Fprintln(s.out, sel.Describe())
}

func (s *session) overview(pngPath string) {
	points := aggregator.Overview(aggregator.Filter(s.table, s.sel.Filter), s.sel.Metric)
	cHeader.Fprintf(s.out, "\n--- %s by Season ---\n\n", s.sel.Metric.Label())
	report.PrintSeriesTable(s.out, s.sel.Metric, points)
	if pngPath != "" {
		s.writeChart(pngPath, chart.Spec{
			Title:  chart.OverviewTitle(s.sel.Metric),
			Metric: s.sel.Metric,
			Kind:   s.sel.Chart,
			Points: points,
		})
	}
}

func (s *session) team(pngPath string) {
	if s.sel.Team == "" {
		cWarn.Fprintln(s.errOut, "no team selected; use 'select' first")
		return
	}
	points := aggregator.TeamSeries(aggregator.Filter(s.table, s.sel.Filter), s.sel.Team, s.sel.Metric)
	title := chart.TeamTitle(s.sel.Team, s.sel.Metric)
	cHeader.Fprintf(s.out, "\n--- %s ---\n\n", title)
	report.PrintSeriesTable(s.out, s.sel.Metric, points)
	if pngPath != "" {
		s.writeChart(pngPath, chart.Spec{
			Title:  title,
			Metric: s.sel.Metric,
			Kind:   model.ChartLine,
			Points: points,
		})
	}
}

func (s *session) writeChart(path string, spec chart.Spec) {
	if err := writePNG(path, spec); err != nil {
		s.fail(err)
		return
	}
	cMuted.Fprintf(s.out, "wrote %s\n", path)
}

// reload drops the cached table and reads the file again. On failure the
// previous table stays in use.
func (s *session) reload() {
	s.cache.Invalidate(s.path)
	t, err := s.cache.Load(s.path)
	if err != nil {
		cError.Fprintln(s.errOut, loader.Message(err))
		cMuted.Fprintln(s.errOut, "keeping the previously loaded data")
		return
	}
	s.table = t
	s.apply(func(*selection.Input) {})
}

func (s *session) bounds() model.SeasonRange {
	b, _ := s.table.SeasonBounds()
	return b
}

func (s *session) usage(u string) {
	cError.Fprintf(s.errOut, "usage: %s\n", u)
}

func (s *session) fail(err error) {
	cError.Fprintf(s.errOut, "error: %v\n", err)
}
