package dashboard

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pable/go-football-eda/internal/loader"
)

const header = "Team,Season,Off.Plays,Off.Yards,Total.TDs,Turnovers Lost\n"

const sampleCSV = header +
	"TeamA,2020,10,100,1,2\n" +
	"TeamA,2021,20,200,3,4\n" +
	"TeamB,2020,30,300,5,6\n" +
	"TeamB,2021,,400,7,8\n"

func newTestServer(t *testing.T, body string) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return newServerForPath(t, path)
}

func newServerForPath(t *testing.T, path string) *Server {
	t.Helper()
	s, err := New(loader.NewCache(), path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexRendersDefaults(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Football Team Performance EDA",
		"Offensive Plays by Season",
		"Offensive Plays for a Single Team",
		`value="TeamA" checked`,
		`value="TeamB" checked`,
		"/chart/overview.png?",
		"20.00",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestIndexExplicitNoTeams(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	rec := get(t, s, "/?teams_set=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No data for the current selection.") {
		t.Error("expected empty overview notice")
	}
	if !strings.Contains(body, "Select at least one team") {
		t.Error("expected team view prompt")
	}
	if strings.Contains(body, `value="TeamA" checked`) {
		t.Error("TeamA should not be checked")
	}
}

// A missing file is reported on the page with the load error, not a crash.
func TestIndexMissingFile(t *testing.T) {
	s := newServerForPath(t, filepath.Join(t.TempDir(), "nonexistent.csv"))
	rec := get(t, s, "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Couldn&#39;t load data") {
		t.Errorf("expected load error message, got %s", body)
	}
	if strings.Contains(body, "<form") {
		t.Error("controls should not render without data")
	}
}

func TestIndexEmptyDataset(t *testing.T) {
	s := newTestServer(t, header)
	rec := get(t, s, "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No data available. Check your CSV path/name.") {
		t.Errorf("expected empty dataset message, got %s", rec.Body.String())
	}
}

func TestBadParams(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	for _, target := range []string{
		"/?from=abc",
		"/api/overview?metric=nope",
		"/chart/overview.png?chart=pie",
		"/api/team?to=x",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestOverviewAPI(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	rec := get(t, s, "/api/overview?teams=TeamA&teams=TeamB&from=2020&to=2021&metric=plays")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		View    string   `json:"view"`
		Metric  string   `json:"metric"`
		Column  string   `json:"column"`
		Teams   []string `json:"teams"`
		Seasons struct {
			Min int `json:"min"`
			Max int `json:"max"`
		} `json:"seasons"`
		Points []struct {
			Season int      `json:"season"`
			Value  *float64 `json:"value"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.View != "overview" || resp.Column != "Off.Plays" {
		t.Errorf("unexpected header fields: %+v", resp)
	}
	if resp.Seasons.Min != 2020 || resp.Seasons.Max != 2021 {
		t.Errorf("unexpected seasons %+v", resp.Seasons)
	}
	if len(resp.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(resp.Points))
	}
	// 2020: mean(10, 30); 2021: TeamB is blank so only TeamA counts.
	if resp.Points[0].Season != 2020 || resp.Points[0].Value == nil || *resp.Points[0].Value != 20 {
		t.Errorf("unexpected 2020 point %+v", resp.Points[0])
	}
	if resp.Points[1].Season != 2021 || resp.Points[1].Value == nil || *resp.Points[1].Value != 20 {
		t.Errorf("unexpected 2021 point %+v", resp.Points[1])
	}
}

func TestOverviewAPIAllMissingIsNull(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	rec := get(t, s, "/api/overview?teams=TeamB&from=2021&to=2021&metric=plays")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"value":null`) {
		t.Errorf("expected null value for all-missing season, got %s", rec.Body.String())
	}
}

func TestTeamAPIPickerFallback(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	rec := get(t, s, "/api/team?teams=TeamB&team=TeamA&metric=yards")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Team   string `json:"team"`
		Points []struct {
			Season int     `json:"season"`
			Value  float64 `json:"value"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Team != "TeamB" {
		t.Errorf("picker should fall back to a selected team, got %q", resp.Team)
	}
	if len(resp.Points) != 2 || resp.Points[0].Value != 300 || resp.Points[1].Value != 400 {
		t.Errorf("unexpected points %+v", resp.Points)
	}
}

func TestChartEndpoints(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	for _, target := range []string{
		"/chart/overview.png",
		"/chart/overview.png?chart=bar&metric=tds",
		"/chart/team.png?team=TeamB",
		"/chart/team.png?teams_set=1",
	} {
		rec := get(t, s, target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: unexpected content type %q", target, ct)
		}
		if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
			t.Errorf("%s: invalid png: %v", target, err)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"rows":4`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	missing := newServerForPath(t, filepath.Join(t.TempDir(), "gone.csv"))
	if rec := get(t, missing, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for missing data, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, sampleCSV)
	if rec := get(t, s, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
