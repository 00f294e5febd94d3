// Package selection turns raw user input into a validated query selection,
// filling in the dashboard defaults for anything the user left unset.
package selection

import (
	"fmt"
	"strings"

	"github.com/pable/go-football-eda/internal/model"
)

// Defaults applied when a control has not been touched.
const (
	DefaultTeamCount = 5
	DefaultMetric    = model.MetricOffensivePlays
	DefaultChart     = model.ChartLine
)

// Selection is the full set of control values for one render.
type Selection struct {
	Filter model.FilterSpec
	Metric model.Metric
	Chart  model.ChartKind
	// Team is the single team shown in the team view; empty when nothing is selected.
	Team string
}

// Input carries raw control values. Nil pointers and empty strings mean "unset".
// TeamsSet distinguishes an explicitly empty team list from an untouched control.
type Input struct {
	Teams    []string
	TeamsSet bool
	From, To *int
	Metric   string
	Chart    string
	Team     string
}

// Defaults returns the initial selection for t: the first DefaultTeamCount teams
// in file order, the full observed season range, the first metric and a line chart.
func Defaults(t *model.Table) Selection {
	teams := t.Teams()
	if len(teams) > DefaultTeamCount {
		teams = teams[:DefaultTeamCount]
	}
	bounds, _ := t.SeasonBounds()
	return Selection{
		Filter: model.FilterSpec{Teams: teams, Seasons: bounds},
		Metric: DefaultMetric,
		Chart:  DefaultChart,
		Team:   PickTeam(teams, ""),
	}
}

// Resolve validates in against t. Season bounds are clamped to the observed
// range; unknown teams are kept and simply match nothing.
func Resolve(t *model.Table, in Input) (Selection, error) {
	sel := Defaults(t)

	if in.TeamsSet || len(in.Teams) > 0 {
		sel.Filter.Teams = dedupe(in.Teams)
	}

	bounds, _ := t.SeasonBounds()
	rng := bounds
	if in.From != nil {
		rng.Min = *in.From
	}
	if in.To != nil {
		rng.Max = *in.To
	}
	sel.Filter.Seasons = rng.Clamp(bounds.Min, bounds.Max)

	if in.Metric != "" {
		m, err := model.ParseMetric(in.Metric)
		if err != nil {
			return Selection{}, err
		}
		sel.Metric = m
	}
	if in.Chart != "" {
		k, err := model.ParseChartKind(in.Chart)
		if err != nil {
			return Selection{}, err
		}
		sel.Chart = k
	}

	sel.Team = PickTeam(sel.Filter.Teams, in.Team)
	return sel, nil
}

// PickTeam constrains the single-team picker to the selected teams: want when it
// is selected, otherwise the first selected team, otherwise "".
func PickTeam(selected []string, want string) string {
	for _, s := range selected {
		if s == want {
			return want
		}
	}
	if len(selected) > 0 {
		return selected[0]
	}
	return ""
}

// SplitTeams parses a comma-separated team list, dropping blanks.
func SplitTeams(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Describe renders the selection as a one-line human summary.
func (s Selection) Describe() string {
	teams := "none"
	if len(s.Filter.Teams) > 0 {
		teams = strings.Join(s.Filter.Teams, ", ")
	}
	return fmt.Sprintf("teams: %s | seasons: %s | metric: %s | chart: %s",
		teams, s.Filter.Seasons, s.Metric.Label(), s.Chart)
}

func dedupe(teams []string) []string {
	seen := make(map[string]struct{}, len(teams))
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
