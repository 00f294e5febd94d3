package loader

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

const header = "Team,Season,Off.Plays,Off.Yards,Total.TDs,Turnovers Lost\n"

const sampleCSV = header +
	"Alabama,2020,900,6500,80,12\n" +
	"Alabama,2021,880,6100,71,15\n" +
	"Georgia,2020,850,5800,60,10\n"

func writeCSV(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestReadParsesRows(t *testing.T) {
	inputs := map[string]string{
		"plain":     sampleCSV,
		"utf-8 bom": "\ufeff" + sampleCSV,
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(body))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if tbl.Len() != 3 {
				t.Fatalf("expected 3 rows, got %d", tbl.Len())
			}
			r := tbl.Row(1)
			if r.Team != "Alabama" || r.Season != 2021 || r.OffensivePlays != 880 ||
				r.OffensiveYards != 6100 || r.TotalTouchdowns != 71 || r.TurnoversLost != 15 {
				t.Errorf("row 1 mismatch: %+v", r)
			}
			if tbl.Row(2).Team != "Georgia" {
				t.Errorf("expected file order to be kept, got %q at row 2", tbl.Row(2).Team)
			}
		})
	}
}

func TestReadTrimsPaddedCells(t *testing.T) {
	body := header +
		" Navy , 2020, 812.5 ,6100, 33 ,7\n" +
		"Army,2021.0,800,NA,30, N/A \n"
	tbl, err := Read(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}
	r := tbl.Row(0)
	if r.Team != "Navy" || r.Season != 2020 || r.OffensivePlays != 812.5 || r.TotalTouchdowns != 33 {
		t.Errorf("padded row mismatch: %+v", r)
	}
	r = tbl.Row(1)
	if r.Season != 2021 {
		t.Errorf("float-formatted season should parse as 2021, got %d", r.Season)
	}
	if !math.IsNaN(r.OffensiveYards) || !math.IsNaN(r.TurnoversLost) {
		t.Errorf("NA cells should be NaN, got %+v", r)
	}
}

func TestReadNonNumericMetricIsMissing(t *testing.T) {
	tbl, err := Read(strings.NewReader(header + "Navy,2020,lots,6100,33,7\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if r := tbl.Row(0); !math.IsNaN(r.OffensivePlays) || r.OffensiveYards != 6100 {
		t.Errorf("expected only plays to be missing, got %+v", r)
	}
}

func TestReadKeepsFractionalAndMissingMetrics(t *testing.T) {
	tbl, err := Read(strings.NewReader(header + "Navy,2019,812.5,,33.25,7\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	r := tbl.Row(0)
	if r.OffensivePlays != 812.5 || r.TotalTouchdowns != 33.25 {
		t.Errorf("fractional metrics not preserved: %+v", r)
	}
	if !math.IsNaN(r.OffensiveYards) {
		t.Errorf("empty metric cell should be NaN, got %v", r.OffensiveYards)
	}
}

func TestReadSkipsRowsWithoutTeamOrSeason(t *testing.T) {
	body := header +
		",2020,1,1,1,1\n" +
		"Army,,1,1,1,1\n" +
		"Army,2020,2,2,2,2\n"
	tbl, err := Read(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 1 || tbl.Row(0).Team != "Army" || tbl.Row(0).Season != 2020 {
		t.Errorf("expected only the complete Army row, got %+v", tbl.Rows())
	}
}

func TestReadErrors(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantEmpty bool
	}{
		{"no header", "", false},
		{"blank lines only", "\n\n  \n", false},
		{"header only", header, true},
		{"missing column", "Team,Season,Off.Plays\nA,2020,1\n", false},
		{"all rows invalid", header + ",,1,1,1,1\n", true},
		{"ragged row", header + "A,2020,1,2\n", false},
		{"malformed season", header + "A,20x0,1,2,3,4\n", false},
		{"fractional season", header + "A,2020.5,1,2,3,4\n", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(c.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrDataUnavailable) {
				t.Errorf("expected ErrDataUnavailable, got %v", err)
			}
			if got := errors.Is(err, ErrEmptyDataset); got != c.wantEmpty {
				t.Errorf("errors.Is(err, ErrEmptyDataset) = %v, want %v (err=%v)", got, c.wantEmpty, err)
			}
		})
	}
}

func TestReadMalformedSeasonIsNotEmpty(t *testing.T) {
	_, malformed := Read(strings.NewReader(header + "Army,2020,1,1,1,1\nNavy,twenty,1,1,1,1\n"))
	if malformed == nil {
		t.Fatal("expected an error for an unparsable season")
	}
	if !strings.Contains(malformed.Error(), `malformed season "twenty" on line 3`) {
		t.Errorf("unexpected error %q", malformed)
	}
	_, empty := Read(strings.NewReader(header + "Navy,,1,1,1,1\n"))
	if !errors.Is(empty, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset for a blank season, got %v", empty)
	}
	if got := Message(malformed); !strings.HasPrefix(got, "Couldn't load data: ") {
		t.Errorf("malformed season message = %q", got)
	}
	if Message(malformed) == Message(empty) {
		t.Error("malformed and empty sources must be reported differently")
	}
}

func TestReadFileZstd(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := enc.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	path := writeCSV(t, "data.csv.zst", buf.String())

	tbl, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", tbl.Len())
	}
}

func TestCacheMissingFile(t *testing.T) {
	c := NewCache()
	_, err := c.Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if errors.Is(err, ErrEmptyDataset) {
		t.Error("a missing file must not look like an empty dataset")
	}
}

func TestCacheDirectory(t *testing.T) {
	_, err := NewCache().Load(t.TempDir())
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for a directory, got %v", err)
	}
}

func TestCacheLoadIsIdempotent(t *testing.T) {
	path := writeCSV(t, "data.csv", sampleCSV)
	c := NewCache()

	first, err := c.Load(path)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	second, err := c.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first != second {
		t.Error("unchanged source should return the cached table")
	}
	if s := c.Stats(); s.Misses != 1 || s.Hits != 1 {
		t.Errorf("expected 1 miss and 1 hit, got %+v", s)
	}
}

func TestCacheConcurrentLoadsParseOnce(t *testing.T) {
	path := writeCSV(t, "data.csv", sampleCSV)
	c := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(path); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()
	if s := c.Stats(); s.Misses != 1 || s.Hits != 7 {
		t.Errorf("expected one parse for concurrent loads, got %+v", s)
	}
}

func TestCacheReloadsChangedSource(t *testing.T) {
	path := writeCSV(t, "data.csv", sampleCSV)
	c := NewCache()
	if _, err := c.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(path, []byte(sampleCSV+"Georgia,2021,860,5900,66,9\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	tbl, err := c.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if tbl.Len() != 4 {
		t.Errorf("expected reloaded table with 4 rows, got %d", tbl.Len())
	}
	if s := c.Stats(); s.Misses != 2 {
		t.Errorf("expected 2 misses, got %+v", s)
	}
}

func TestCacheInvalidateAndReset(t *testing.T) {
	path := writeCSV(t, "data.csv", sampleCSV)
	c := NewCache()
	first, _ := c.Load(path)

	c.Invalidate(path)
	second, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load after Invalidate: %v", err)
	}
	if first == second {
		t.Error("Invalidate should force a re-read")
	}

	c.Reset()
	if _, err := c.Load(path); err != nil {
		t.Fatalf("Load after Reset: %v", err)
	}
	if s := c.Stats(); s.Misses != 3 || s.Hits != 0 {
		t.Errorf("expected 3 misses and no hits, got %+v", s)
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	path := writeCSV(t, "data.csv", header)
	c := NewCache()
	if _, err := c.Load(path); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}

	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	later := time.Now().Add(time.Minute)
	os.Chtimes(path, later, later)

	tbl, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load after fix: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", tbl.Len())
	}
}

func TestMessage(t *testing.T) {
	if got := Message(ErrEmptyDataset); got != "No data available. Check your CSV path/name." {
		t.Errorf("empty dataset message: %q", got)
	}
	_, err := ReadFile(filepath.Join(t.TempDir(), "nonexistent.csv"))
	if got := Message(err); !strings.HasPrefix(got, "Couldn't load data: ") || !strings.Contains(got, "nonexistent.csv") {
		t.Errorf("unavailable message: %q", got)
	}
}
