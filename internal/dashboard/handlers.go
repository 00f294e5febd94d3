package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pable/go-football-eda/internal/aggregator"
	"github.com/pable/go-football-eda/internal/chart"
	"github.com/pable/go-football-eda/internal/logger"
	"github.com/pable/go-football-eda/internal/model"
	"github.com/pable/go-football-eda/internal/selection"
)

// HelpSteps is the "how to use" text shown above the charts.
var HelpSteps = []string{
	"Filter teams, seasons, metric and chart type in the sidebar.",
	"Overview shows your selected metric averaged by season.",
	"Team Analysis shows that metric for one team over time.",
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Error     string
	Path      string
	Help      []string
	Teams     []option
	Bounds    model.SeasonRange
	From, To  int
	Metrics   []option
	Charts    []option
	TeamPicks []option
	Summary   string

	OverviewHeading string
	OverviewTitle   string
	Overview        model.AggregatedSeries
	OverviewChart   template.URL

	TeamHeading string
	TeamTitle   string
	Team        string
	TeamSeries  model.TeamSeries
	TeamChart   template.URL
}

type seasonsJSON struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type pointJSON struct {
	Season int      `json:"season"`
	Value  *float64 `json:"value"`
}

type seriesResponse struct {
	View    string      `json:"view"`
	Metric  string      `json:"metric"`
	Column  string      `json:"column"`
	Team    string      `json:"team,omitempty"`
	Teams   []string    `json:"teams"`
	Seasons seasonsJSON `json:"seasons"`
	Points  []pointJSON `json:"points"`
}

// ---- Request parsing ----

// parseInput reads control values from the query string. The form sends
// teams_set=1 so that unticking every team means "no teams", not "defaults".
func parseInput(q url.Values) (selection.Input, error) {
	in := selection.Input{
		Teams:    q["teams"],
		TeamsSet: q.Has("teams") || q.Get("teams_set") == "1",
		Metric:   q.Get("metric"),
		Chart:    q.Get("chart"),
		Team:     q.Get("team"),
	}
	var err error
	if in.From, err = optionalInt(q, "from"); err != nil {
		return in, err
	}
	if in.To, err = optionalInt(q, "to"); err != nil {
		return in, err
	}
	return in, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &v, nil
}

// encodeSelection is the canonical query string for sel.
func encodeSelection(sel selection.Selection) url.Values {
	q := url.Values{}
	q["teams"] = append([]string(nil), sel.Filter.Teams...)
	q.Set("teams_set", "1")
	q.Set("from", strconv.Itoa(sel.Filter.Seasons.Min))
	q.Set("to", strconv.Itoa(sel.Filter.Seasons.Max))
	q.Set("metric", sel.Metric.Key())
	q.Set("chart", sel.Chart.String())
	if sel.Team != "" {
		q.Set("team", sel.Team)
	}
	return q
}

// resolve loads the table and resolves the request's selection, writing an
// error response and returning ok=false on failure.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*model.Table, selection.Selection, bool) {
	t, msg, err := s.load()
	if err != nil {
		http.Error(w, msg, http.StatusServiceUnavailable)
		return nil, selection.Selection{}, false
	}
	in, err := parseInput(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, selection.Selection{}, false
	}
	sel, err := selection.Resolve(t, in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, selection.Selection{}, false
	}
	return t, sel, true
}

// ---- Page ----

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Path: s.path, Help: HelpSteps}

	t, msg, err := s.load()
	if err != nil {
		data.Error = msg
		s.renderPage(w, http.StatusServiceUnavailable, data)
		return
	}
	in, err := parseInput(r.URL.Query())
	if err != nil {
		data.Error = err.Error()
		s.renderPage(w, http.StatusBadRequest, data)
		return
	}
	sel, err := selection.Resolve(t, in)
	if err != nil {
		data.Error = err.Error()
		s.renderPage(w, http.StatusBadRequest, data)
		return
	}

	subset := aggregator.Filter(t, sel.Filter)
	query := encodeSelection(sel).Encode()

	data.Bounds, _ = t.SeasonBounds()
	data.From, data.To = sel.Filter.Seasons.Min, sel.Filter.Seasons.Max
	data.Teams = teamOptions(t.Teams(), sel.Filter.Teams)
	data.TeamPicks = teamOptions(sel.Filter.Teams, []string{sel.Team})
	data.Metrics = metricOptions(sel.Metric)
	data.Charts = chartOptions(sel.Chart)
	data.Summary = sel.Describe()

	data.OverviewHeading = sel.Metric.Label() + " by Season"
	data.OverviewTitle = chart.OverviewTitle(sel.Metric)
	data.Overview = aggregator.Overview(subset, sel.Metric)
	data.OverviewChart = template.URL("/chart/overview.png?" + query)

	data.TeamHeading = sel.Metric.Label() + " for a Single Team"
	data.Team = sel.Team
	if sel.Team != "" {
		data.TeamTitle = chart.TeamTitle(sel.Team, sel.Metric)
		data.TeamSeries = aggregator.TeamSeries(subset, sel.Team, sel.Metric)
	}
	data.TeamChart = template.URL("/chart/team.png?" + query)

	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		logger.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func teamOptions(all, selected []string) []option {
	marked := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		marked[s] = struct{}{}
	}
	out := make([]option, len(all))
	for i, team := range all {
		_, ok := marked[team]
		out[i] = option{Value: team, Label: team, Selected: ok}
	}
	return out
}

func metricOptions(current model.Metric) []option {
	out := make([]option, len(model.Metrics))
	for i, m := range model.Metrics {
		out[i] = option{Value: m.Key(), Label: m.Label(), Selected: m == current}
	}
	return out
}

func chartOptions(current model.ChartKind) []option {
	return []option{
		{Value: model.ChartLine.String(), Label: "Line Chart", Selected: current == model.ChartLine},
		{Value: model.ChartBar.String(), Label: "Bar Chart", Selected: current == model.ChartBar},
	}
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ---- Charts ----

func (s *Server) handleOverviewChart(w http.ResponseWriter, r *http.Request) {
	t, sel, ok := s.resolve(w, r)
	if !ok {
		return
	}
	points := aggregator.Overview(aggregator.Filter(t, sel.Filter), sel.Metric)
	s.writeChart(w, chart.Spec{
		Title:  chart.OverviewTitle(sel.Metric),
		Metric: sel.Metric,
		Kind:   sel.Chart,
		Points: points,
	})
}

// handleTeamChart always draws a line chart with markers. The chart toggle
// applies to the overview only.
func (s *Server) handleTeamChart(w http.ResponseWriter, r *http.Request) {
	t, sel, ok := s.resolve(w, r)
	if !ok {
		return
	}
	spec := chart.Spec{Metric: sel.Metric, Kind: model.ChartLine}
	if sel.Team != "" {
		spec.Title = chart.TeamTitle(sel.Team, sel.Metric)
		spec.Points = aggregator.TeamSeries(aggregator.Filter(t, sel.Filter), sel.Team, sel.Metric)
	}
	s.writeChart(w, spec)
}

func (s *Server) writeChart(w http.ResponseWriter, spec chart.Spec) {
	var buf bytes.Buffer
	if err := chart.Render(&buf, spec); err != nil {
		logger.Error("render chart", "title", spec.Title, "error", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// ---- JSON API ----

func (s *Server) handleOverviewAPI(w http.ResponseWriter, r *http.Request) {
	t, sel, ok := s.resolve(w, r)
	if !ok {
		return
	}
	points := aggregator.Overview(aggregator.Filter(t, sel.Filter), sel.Metric)
	writeJSON(w, http.StatusOK, newSeriesResponse("overview", sel, "", points))
}

func (s *Server) handleTeamAPI(w http.ResponseWriter, r *http.Request) {
	t, sel, ok := s.resolve(w, r)
	if !ok {
		return
	}
	var points model.TeamSeries
	if sel.Team != "" {
		points = aggregator.TeamSeries(aggregator.Filter(t, sel.Filter), sel.Team, sel.Metric)
	}
	writeJSON(w, http.StatusOK, newSeriesResponse("team", sel, sel.Team, points))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	t, msg, err := s.load()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": t.Len()})
}

func newSeriesResponse(view string, sel selection.Selection, team string, points []model.Point) seriesResponse {
	resp := seriesResponse{
		View:    view,
		Metric:  sel.Metric.Label(),
		Column:  sel.Metric.Column(),
		Team:    team,
		Teams:   append([]string{}, sel.Filter.Teams...),
		Seasons: seasonsJSON{Min: sel.Filter.Seasons.Min, Max: sel.Filter.Seasons.Max},
		Points:  make([]pointJSON, 0, len(points)),
	}
	for _, p := range points {
		pj := pointJSON{Season: p.Season}
		if !math.IsNaN(p.Value) {
			v := p.Value
			pj.Value = &v
		}
		resp.Points = append(resp.Points, pj)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response", "error", err)
	}
}
