// Package chart renders season series as PNG line or bar charts.
package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pable/go-football-eda/internal/model"
)

const (
	defaultWidth  = 1024
	defaultHeight = 480
)

// PlaceholderTitle is the title drawn when a series has no points.
const PlaceholderTitle = "No data for the current selection"

var seriesColor = drawing.ColorFromHex("1f77b4")

// Spec describes one chart.
type Spec struct {
	Title  string
	Metric model.Metric
	Kind   model.ChartKind
	Points []model.Point
	Width  int
	Height int
}

// OverviewTitle is the title of the per-season mean chart.
func OverviewTitle(m model.Metric) string {
	return fmt.Sprintf("%s Over Seasons", m.Label())
}

// TeamTitle is the title of the single-team chart.
func TeamTitle(team string, m model.Metric) string {
	return fmt.Sprintf("%s: %s Over Time", team, m.Label())
}

// Render writes spec as a PNG to w. NaN points are skipped; a series with no
// finite points renders a placeholder chart instead of failing.
func Render(w io.Writer, spec Spec) error {
	if spec.Width == 0 {
		spec.Width = defaultWidth
	}
	if spec.Height == 0 {
		spec.Height = defaultHeight
	}
	points := finite(spec.Points)
	if len(points) == 0 {
		return renderPlaceholder(w, spec)
	}
	if spec.Kind == model.ChartBar {
		return renderBar(w, spec, points)
	}
	return renderLine(w, spec, points)
}

func renderLine(w io.Writer, spec Spec, points []model.Point) error {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Season)
		ys[i] = p.Value
	}
	lo, hi := valueRange(points, false)
	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      spec.Width,
		Height:     spec.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  model.ColumnSeason,
			Range: seasonRange(points),
			Ticks: seasonTicks(points),
		},
		YAxis: gochart.YAxis{
			Name:           spec.Metric.Column(),
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: valueFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    spec.Metric.Label(),
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2,
					DotColor:    seriesColor,
					DotWidth:    4,
				},
			},
		},
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}

func renderBar(w io.Writer, spec Spec, points []model.Point) error {
	bars := make([]gochart.Value, len(points))
	for i, p := range points {
		bars[i] = gochart.Value{
			Label: strconv.Itoa(p.Season),
			Value: p.Value,
			Style: gochart.Style{FillColor: seriesColor, StrokeColor: seriesColor},
		}
	}
	lo, hi := valueRange(points, true)
	bc := gochart.BarChart{
		Title:      spec.Title,
		Width:      spec.Width,
		Height:     spec.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth(spec.Width, len(points)),
		YAxis: gochart.YAxis{
			Name:           spec.Metric.Column(),
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: valueFormatter,
		},
		Bars: bars,
	}
	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// renderPlaceholder draws an empty frame so the page layout stays intact.
func renderPlaceholder(w io.Writer, spec Spec) error {
	title := PlaceholderTitle
	if spec.Title != "" {
		title = spec.Title + " (" + PlaceholderTitle + ")"
	}
	ch := gochart.Chart{
		Title:      title,
		Width:      spec.Width,
		Height:     spec.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Range: &gochart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: 1}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
			},
		},
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render placeholder chart: %w", err)
	}
	return nil
}

func finite(points []model.Point) []model.Point {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// seasonRange pads a single-season series so the axis never has zero width.
func seasonRange(points []model.Point) *gochart.ContinuousRange {
	lo, hi := points[0].Season, points[0].Season
	for _, p := range points[1:] {
		lo = min(lo, p.Season)
		hi = max(hi, p.Season)
	}
	if lo == hi {
		lo--
		hi++
	}
	return &gochart.ContinuousRange{Min: float64(lo), Max: float64(hi)}
}

// seasonTicks labels every distinct season once.
func seasonTicks(points []model.Point) []gochart.Tick {
	var ticks []gochart.Tick
	seen := make(map[int]struct{})
	for _, p := range points {
		if _, ok := seen[p.Season]; ok {
			continue
		}
		seen[p.Season] = struct{}{}
		ticks = append(ticks, gochart.Tick{Value: float64(p.Season), Label: strconv.Itoa(p.Season)})
	}
	if len(ticks) == 1 {
		s := points[0].Season
		ticks = []gochart.Tick{
			{Value: float64(s - 1), Label: ""},
			ticks[0],
			{Value: float64(s + 1), Label: ""},
		}
	}
	return ticks
}

// valueRange returns padded y bounds. Bars always include zero.
func valueRange(points []model.Point, fromZero bool) (float64, float64) {
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if fromZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	if fromZero && lo == 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}

func barWidth(width, n int) int {
	bw := (width - 120) / (n * 2)
	return max(4, min(bw, 60))
}

func valueFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return ""
}
