package storage

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/pable/go-football-eda/internal/model"
)

// ImportTable replaces the contents of the seasons table with t, in table order.
// NaN metric cells are stored as NULL.
func (db *DB) ImportTable(t *model.Table) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM seasons"); err != nil {
		return fmt.Errorf("clear seasons: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO seasons(row_index, team, season, off_plays, off_yards, total_tds, turnovers_lost)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		_, err = stmt.Exec(
			i, r.Team, r.Season,
			nullFloat(r.OffensivePlays), nullFloat(r.OffensiveYards),
			nullFloat(r.TotalTouchdowns), nullFloat(r.TurnoversLost),
		)
		if err != nil {
			return fmt.Errorf("insert row %d (%s %d): %w", i, r.Team, r.Season, err)
		}
	}
	return tx.Commit()
}

// CountRows returns the number of mirrored rows.
func (db *DB) CountRows() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM seasons").Scan(&n)
	return n, err
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
// NULL values are rendered as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
