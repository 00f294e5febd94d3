// Package loader reads the team-season CSV into an immutable model.Table and
// memoizes it per source file.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-football-eda/internal/logger"
	"github.com/pable/go-football-eda/internal/model"
)

// ErrDataUnavailable is returned when the source is missing, unreadable or malformed.
var ErrDataUnavailable = errors.New("data unavailable")

// ErrEmptyDataset is returned when the source parses to zero rows. It wraps
// ErrDataUnavailable; check it first to tell "empty" apart from "broken".
var ErrEmptyDataset = fmt.Errorf("%w: dataset has no rows", ErrDataUnavailable)

// Message returns the text shown to the user for a load error. An empty
// dataset and a broken source get different wording.
func Message(err error) string {
	if errors.Is(err, ErrEmptyDataset) {
		return "No data available. Check your CSV path/name."
	}
	return "Couldn't load data: " + err.Error()
}

// RequiredColumns lists the header names every source must carry.
var RequiredColumns = []string{
	model.ColumnTeam,
	model.ColumnSeason,
	model.ColumnOffensivePlays,
	model.ColumnOffensiveYards,
	model.ColumnTotalTouchdowns,
	model.ColumnTurnoversLost,
}

// ---- Cache ----

// Key identifies one version of a source file.
type Key struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int
	Misses int
}

// Cache memoizes loaded tables by source identity. Cached tables are immutable
// and may be shared by concurrent readers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	stats   Stats
}

type cacheEntry struct {
	key   Key
	table *model.Table
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Load returns the table for path. An unchanged file is served from the cache
// without being re-read; a modified file replaces its cache entry. Failures
// are not cached.
func (c *Cache) Load(path string) (*model.Table, error) {
	key, err := keyFor(path)
	if err != nil {
		return nil, err
	}

	// The lock is held across ReadFile: concurrent loads of one file parse it
	// once, at the cost of serializing loads of different files.
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key.Path]; ok && e.key == key {
		c.stats.Hits++
		return e.table, nil
	}
	c.stats.Misses++

	t, err := ReadFile(key.Path)
	if err != nil {
		delete(c.entries, key.Path)
		return nil, err
	}
	c.entries[key.Path] = cacheEntry{key: key, table: t}
	logger.Debug("dataset loaded", "path", key.Path, "rows", t.Len(), "size", key.Size)
	return t, nil
}

// Invalidate drops the cached table for path, forcing the next Load to re-read it.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

// Reset drops every cached table.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Stats returns the hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func keyFor(path string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("%w: resolve %s: %v", ErrDataUnavailable, path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	if fi.IsDir() {
		return Key{}, fmt.Errorf("%w: %s is a directory", ErrDataUnavailable, path)
	}
	return Key{Path: abs, ModTime: fi.ModTime(), Size: fi.Size()}, nil
}

// ---- Parsing ----

// ReadFile parses the CSV at path. Paths ending in .zst are zstd-decompressed.
func ReadFile(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrDataUnavailable, err)
		}
		defer dec.Close()
		src = dec
	}

	t, err := Read(src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Read parses a comma-separated table with a header row.
func Read(r io.Reader) (*model.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrDataUnavailable, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	switch countLines(data) {
	case 0:
		return nil, fmt.Errorf("%w: missing header row", ErrDataUnavailable)
	case 1:
		return nil, ErrEmptyDataset
	}

	// Every column is read as text and converted here, so padded cells and
	// float-formatted seasons parse instead of turning into NaN.
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrDataUnavailable, df.Err)
	}
	if missing := missingColumns(df.Names()); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrDataUnavailable, strings.Join(missing, ", "))
	}

	teams := newTextColumn(df, model.ColumnTeam)
	seasons := newTextColumn(df, model.ColumnSeason)
	metrics := make([]textColumn, len(model.Metrics))
	for i, m := range model.Metrics {
		metrics[i] = newTextColumn(df, m.Column())
	}

	rows := make([]model.Row, 0, df.Nrow())
	skipped, unparsed := 0, 0
	for i := 0; i < df.Nrow(); i++ {
		team := teams.at(i)
		rawSeason := seasons.at(i)
		if team == "" || rawSeason == "" {
			skipped++
			continue
		}
		season, err := parseSeason(rawSeason)
		if err != nil {
			// Line numbers count the header as line 1.
			return nil, fmt.Errorf("%w: malformed season %q on line %d", ErrDataUnavailable, rawSeason, i+2)
		}
		row := model.Row{Team: team, Season: season}
		vals := make([]float64, len(metrics))
		for k, col := range metrics {
			v, ok := parseMetric(col.at(i))
			if !ok {
				unparsed++
			}
			vals[k] = v
		}
		row.OffensivePlays, row.OffensiveYards, row.TotalTouchdowns, row.TurnoversLost = vals[0], vals[1], vals[2], vals[3]
		rows = append(rows, row)
	}
	if unparsed > 0 {
		logger.Warn("non-numeric metric cells treated as missing", "cells", unparsed)
	}
	if skipped > 0 {
		logger.Warn("skipped rows without team or season", "skipped", skipped, "kept", len(rows))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return model.NewTable(rows), nil
}

var utf8BOM = []byte("\ufeff")

// missingValues are the cell texts read as missing, after the common CSV
// conventions for blank data.
var missingValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"}

// textColumn is one CSV column as trimmed text, with missing cells as "".
type textColumn struct {
	vals []string
	nan  []bool
}

func newTextColumn(df dataframe.DataFrame, name string) textColumn {
	col := df.Col(name)
	return textColumn{vals: col.Records(), nan: col.IsNaN()}
}

func (c textColumn) at(i int) string {
	if c.nan[i] {
		return ""
	}
	v := strings.TrimSpace(c.vals[i])
	if slices.Contains(missingValues, v) {
		return ""
	}
	return v
}

// parseSeason accepts whole numbers, including float spellings like "2020.0".
func parseSeason(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("season %q is not a whole number", s)
	}
	return int(f), nil
}

// parseMetric returns NaN for a missing cell. ok is false only for text that
// is present but not a number.
func parseMetric(s string) (float64, bool) {
	if s == "" {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return f, true
}

func missingColumns(names []string) []string {
	have := make(map[string]struct{}, len(names))
	for _, n := range names {
		have[n] = struct{}{}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// countLines counts non-blank lines, stopping at two.
func countLines(data []byte) int {
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		n++
		if n == 2 {
			break
		}
	}
	return n
}
