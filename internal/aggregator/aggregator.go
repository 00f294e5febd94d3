package aggregator

import (
	"math"
	"sort"

	"github.com/pable/go-football-eda/internal/model"
)

// Filter returns the rows of t whose team is in spec.Teams and whose season lies
// within spec.Seasons (inclusive), in their original order. An empty team set
// selects nothing. Unknown teams simply match no rows.
func Filter(t *model.Table, spec model.FilterSpec) *model.Table {
	if len(spec.Teams) == 0 || t.Len() == 0 {
		return model.NewTable(nil)
	}
	teams := make(map[string]struct{}, len(spec.Teams))
	for _, name := range spec.Teams {
		teams[name] = struct{}{}
	}

	var out []model.Row
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if _, ok := teams[r.Team]; !ok {
			continue
		}
		if !spec.Seasons.Contains(r.Season) {
			continue
		}
		out = append(out, r)
	}
	return model.NewTable(out)
}

// Overview groups subset by season and averages metric within each group.
// NaN cells are left out of both sum and count; a season whose cells are all
// NaN yields NaN. Seasons without rows do not appear.
func Overview(subset *model.Table, metric model.Metric) model.AggregatedSeries {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[int]*acc)
	for i := 0; i < subset.Len(); i++ {
		r := subset.Row(i)
		g, ok := groups[r.Season]
		if !ok {
			g = &acc{}
			groups[r.Season] = g
		}
		v := metric.Value(r)
		if math.IsNaN(v) {
			continue
		}
		g.sum += v
		g.count++
	}

	out := make(model.AggregatedSeries, 0, len(groups))
	for season, g := range groups {
		mean := math.NaN()
		if g.count > 0 {
			mean = g.sum / float64(g.count)
		}
		out = append(out, model.Point{Season: season, Value: mean})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

// TeamSeries returns one point per row of team in subset, ascending by season.
// Rows sharing a season keep their relative input order.
func TeamSeries(subset *model.Table, team string, metric model.Metric) model.TeamSeries {
	var rows []model.Row
	for i := 0; i < subset.Len(); i++ {
		if r := subset.Row(i); r.Team == team {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Season < rows[j].Season })

	out := make(model.TeamSeries, len(rows))
	for i, r := range rows {
		out[i] = model.Point{Season: r.Season, Value: metric.Value(r)}
	}
	return out
}

// Describe summarizes a whole table: row and team counts, season bounds and
// count/mean/min/max for every metric.
func Describe(t *model.Table) model.DatasetSummary {
	s := model.DatasetSummary{
		Rows:  t.Len(),
		Teams: len(t.Teams()),
	}
	s.Seasons, _ = t.SeasonBounds()

	for _, m := range model.Metrics {
		ms := model.MetricSummary{
			Metric: m,
			Mean:   math.NaN(),
			Min:    math.NaN(),
			Max:    math.NaN(),
		}
		var sum float64
		for i := 0; i < t.Len(); i++ {
			v := m.Value(t.Row(i))
			if math.IsNaN(v) {
				continue
			}
			if ms.Count == 0 {
				ms.Min, ms.Max = v, v
			}
			ms.Min = math.Min(ms.Min, v)
			ms.Max = math.Max(ms.Max, v)
			sum += v
			ms.Count++
		}
		if ms.Count > 0 {
			ms.Mean = sum / float64(ms.Count)
		}
		s.Metrics = append(s.Metrics, ms)
	}
	return s
}
