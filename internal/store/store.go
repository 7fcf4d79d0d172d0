// Package store persists comparison runs to sqlite so repeated comparisons
// over the same region can be reviewed later without rereading the CSVs.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/density.report/internal/anomaly"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database at path and brings
// the schema up to date.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// Run describes one comparator invocation.
type Run struct {
	ID           string
	CreatedAt    time.Time
	BaselinePath string
	CurrentPath  string
	OutputPath   string
	Params       anomaly.Params
	TotalCells   int
	AnomalyCount int
}

// NewRun builds a Run with a fresh ID and timestamp.
func NewRun(baselinePath, currentPath, outputPath string, p anomaly.Params) Run {
	return Run{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		BaselinePath: baselinePath,
		CurrentPath:  currentPath,
		OutputPath:   outputPath,
		Params:       p,
	}
}

// RecordRun inserts the run row and its flagged cells in one transaction.
func (db *DB) RecordRun(run Run, flagged []anomaly.Comparison) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, created_at, baseline_path, current_path, output_path,
			ratio_thresh, min_current_density, eps, total_cells, anomaly_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339Nano),
		run.BaselinePath, run.CurrentPath, run.OutputPath,
		run.Params.RatioThresh, run.Params.MinCurrentDensity, run.Params.Eps,
		run.TotalCells, run.AnomalyCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cell_anomalies (
			run_id, grid_id, lon_centroid, lat_centroid,
			baseline_density, current_density, ratio, diff, score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare anomaly insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range flagged {
		var lon, lat interface{}
		if c.HasCentroid {
			lon, lat = c.LonCentroid, c.LatCentroid
		}
		if _, err := stmt.Exec(run.ID, c.GridID, lon, lat,
			c.Baseline, c.Current, c.Ratio, c.Diff, c.Score); err != nil {
			return fmt.Errorf("insert anomaly %s: %w", c.GridID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RunCount returns the number of recorded runs.
func (db *DB) RunCount() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// AnomaliesForRun returns the flagged cells recorded for a run, ordered by
// score descending.
func (db *DB) AnomaliesForRun(runID string) ([]anomaly.Comparison, error) {
	rows, err := db.Query(`
		SELECT grid_id, lon_centroid, lat_centroid, baseline_density, current_density, ratio, diff, score
		FROM cell_anomalies WHERE run_id = ? ORDER BY score DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query anomalies: %w", err)
	}
	defer rows.Close()

	var out []anomaly.Comparison
	for rows.Next() {
		var c anomaly.Comparison
		var lon, lat sql.NullFloat64
		if err := rows.Scan(&c.GridID, &lon, &lat, &c.Baseline, &c.Current, &c.Ratio, &c.Diff, &c.Score); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		if lon.Valid && lat.Valid {
			c.LonCentroid = lon.Float64
			c.LatCentroid = lat.Float64
			c.HasCentroid = true
		}
		c.IsAnomaly = true
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
