package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pable/go-football-eda/internal/model"
)

func TestPrintSeriesTable(t *testing.T) {
	var buf bytes.Buffer
	PrintSeriesTable(&buf, model.MetricOffensivePlays, []model.Point{
		{Season: 2020, Value: 20},
		{Season: 2021, Value: math.NaN()},
	})
	out := buf.String()
	for _, want := range []string{"2020", "20.00", "2021", "—"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSeriesTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintSeriesTable(&buf, model.MetricOffensivePlays, nil)
	if strings.TrimSpace(buf.String()) != EmptyNotice {
		t.Errorf("expected empty notice, got %q", buf.String())
	}
}

func TestPrintTeamsMarksSelection(t *testing.T) {
	var buf bytes.Buffer
	PrintTeams(&buf, []string{"Army", "Navy", "Rice"}, []string{"Navy"}, model.SeasonRange{Min: 2015, Max: 2020})
	out := buf.String()
	if !strings.Contains(out, "3 teams, seasons 2015–2020") {
		t.Errorf("missing header line:\n%s", out)
	}
	var navyLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Navy") {
			navyLine = line
		}
		if strings.Contains(line, "Army") && strings.Contains(line, ">") {
			t.Errorf("Army should not be marked: %q", line)
		}
	}
	if !strings.Contains(navyLine, ">") {
		t.Errorf("Navy should be marked: %q", navyLine)
	}
}

func TestPrintDatasetSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintDatasetSummary(&buf, "data.csv", model.DatasetSummary{
		Rows:    10,
		Teams:   2,
		Seasons: model.SeasonRange{Min: 2010, Max: 2014},
		Metrics: []model.MetricSummary{
			{Metric: model.MetricTurnoversLost, Count: 10, Mean: 12.5, Min: 3, Max: 21},
		},
	})
	out := buf.String()
	for _, want := range []string{"data.csv", "Rows          : 10", "2010–2014", "Turnovers Lost", "12.50", "21.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRawTable(t *testing.T) {
	var buf bytes.Buffer
	PrintRawTable(&buf, []string{"team", "n"}, [][]string{{"Army", "4"}, {"Navy", "6"}})
	out := buf.String()
	if !strings.Contains(out, "Army") || !strings.Contains(out, "6") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
