package model

import (
	"fmt"
	"slices"
	"strings"
)

// ---- Metrics ----

// Metric selects one numeric column of a team-season row.
type Metric int

const (
	MetricOffensivePlays Metric = iota
	MetricOffensiveYards
	MetricTotalTouchdowns
	MetricTurnoversLost
)

// Metrics lists every metric in display order.
var Metrics = []Metric{
	MetricOffensivePlays,
	MetricOffensiveYards,
	MetricTotalTouchdowns,
	MetricTurnoversLost,
}

// Source column names.
const (
	ColumnTeam            = "Team"
	ColumnSeason          = "Season"
	ColumnOffensivePlays  = "Off.Plays"
	ColumnOffensiveYards  = "Off.Yards"
	ColumnTotalTouchdowns = "Total.TDs"
	ColumnTurnoversLost   = "Turnovers Lost"
)

// Label returns the human-readable name shown in selectors and chart titles.
func (m Metric) Label() string {
	switch m {
	case MetricOffensivePlays:
		return "Offensive Plays"
	case MetricOffensiveYards:
		return "Offensive Yards"
	case MetricTotalTouchdowns:
		return "Total Touchdowns"
	case MetricTurnoversLost:
		return "Turnovers Lost"
	default:
		return "?"
	}
}

// Column returns the source column the metric reads from.
func (m Metric) Column() string {
	switch m {
	case MetricOffensivePlays:
		return ColumnOffensivePlays
	case MetricOffensiveYards:
		return ColumnOffensiveYards
	case MetricTotalTouchdowns:
		return ColumnTotalTouchdowns
	case MetricTurnoversLost:
		return ColumnTurnoversLost
	default:
		return ""
	}
}

// Key returns the short name accepted on the command line.
func (m Metric) Key() string {
	switch m {
	case MetricOffensivePlays:
		return "plays"
	case MetricOffensiveYards:
		return "yards"
	case MetricTotalTouchdowns:
		return "tds"
	case MetricTurnoversLost:
		return "turnovers"
	default:
		return ""
	}
}

func (m Metric) String() string { return m.Label() }

// Value reads the metric from a row.
func (m Metric) Value(r Row) float64 {
	switch m {
	case MetricOffensiveYards:
		return r.OffensiveYards
	case MetricTotalTouchdowns:
		return r.TotalTouchdowns
	case MetricTurnoversLost:
		return r.TurnoversLost
	default:
		return r.OffensivePlays
	}
}

// ParseMetric resolves a display label, column name or short key (case-insensitive).
func ParseMetric(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	for _, m := range Metrics {
		if strings.EqualFold(s, m.Label()) || strings.EqualFold(s, m.Column()) || strings.EqualFold(s, m.Key()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q (want one of: plays, yards, tds, turnovers)", s)
}

// ---- Chart kind ----

// ChartKind is the chart-type toggle. It only affects rendering.
type ChartKind int

const (
	ChartLine ChartKind = iota
	ChartBar
)

func (k ChartKind) String() string {
	if k == ChartBar {
		return "bar"
	}
	return "line"
}

// ParseChartKind accepts "line", "bar", "Line Chart" or "Bar Chart".
func ParseChartKind(s string) (ChartKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "line chart":
		return ChartLine, nil
	case "bar", "bar chart":
		return ChartBar, nil
	}
	return 0, fmt.Errorf("unknown chart type %q (want line or bar)", s)
}

// ---- Rows and tables ----

// Row is one team-season observation. Missing metric cells are NaN.
type Row struct {
	Team            string
	Season          int
	OffensivePlays  float64
	OffensiveYards  float64
	TotalTouchdowns float64
	TurnoversLost   float64
}

// Table is an ordered, immutable collection of rows.
type Table struct {
	rows []Row
}

// NewTable copies rows into a new Table.
func NewTable(rows []Row) *Table {
	return &Table{rows: slices.Clone(rows)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns a copy of all rows in table order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// Teams returns the distinct team names in order of first appearance.
func (t *Table) Teams() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var teams []string
	for _, r := range t.rows {
		if _, ok := seen[r.Team]; ok {
			continue
		}
		seen[r.Team] = struct{}{}
		teams = append(teams, r.Team)
	}
	return teams
}

// SeasonBounds returns the observed season range. ok is false for an empty table.
func (t *Table) SeasonBounds() (r SeasonRange, ok bool) {
	if t.Len() == 0 {
		return SeasonRange{}, false
	}
	r = SeasonRange{Min: t.rows[0].Season, Max: t.rows[0].Season}
	for _, row := range t.rows[1:] {
		r.Min = min(r.Min, row.Season)
		r.Max = max(r.Max, row.Season)
	}
	return r, true
}

// ---- Filters ----

// SeasonRange is an inclusive season interval.
type SeasonRange struct {
	Min, Max int
}

// Contains reports whether season lies within the range, bounds included.
func (r SeasonRange) Contains(season int) bool {
	return season >= r.Min && season <= r.Max
}

// Clamp swaps reversed bounds and restricts both to [lo, hi].
func (r SeasonRange) Clamp(lo, hi int) SeasonRange {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	r.Min = min(max(r.Min, lo), hi)
	r.Max = min(max(r.Max, lo), hi)
	return r
}

func (r SeasonRange) String() string {
	return fmt.Sprintf("%d–%d", r.Min, r.Max)
}

// FilterSpec selects rows by team membership and season interval.
// An empty Teams list selects nothing.
type FilterSpec struct {
	Teams   []string
	Seasons SeasonRange
}

// ---- Derived series ----

// Point is one (season, value) pair of a chart series.
type Point struct {
	Season int     `json:"season"`
	Value  float64 `json:"value"`
}

// AggregatedSeries holds the per-season mean of a metric, ascending by season.
type AggregatedSeries []Point

// TeamSeries holds one point per observation of a single team, ascending by season.
type TeamSeries []Point

// ---- Summaries ----

// MetricSummary describes one metric column over a whole table.
// Count excludes NaN cells; Mean, Min and Max are NaN when Count is zero.
type MetricSummary struct {
	Metric Metric
	Count  int
	Mean   float64
	Min    float64
	Max    float64
}

// DatasetSummary is the high-level overview printed by the summary command.
type DatasetSummary struct {
	Rows    int
	Teams   int
	Seasons SeasonRange
	Metrics []MetricSummary
}
