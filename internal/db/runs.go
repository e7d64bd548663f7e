package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/subpixel/internal/monitoring"
	"github.com/banshee-data/subpixel/internal/subpixel"
)

// Run modes.
const (
	ModeLocate = "locate"
	ModeTrack  = "track"
)

// ErrRunNotFound is returned by GetRun for unknown run IDs.
var ErrRunNotFound = errors.New("db: run not found")

// Run describes one invocation of the locator or the mean-shift tracker.
type Run struct {
	RunID       string `json:"run_id"`
	Mode        string `json:"mode"`
	Method      string `json:"method"`
	Polarity    string `json:"polarity"`
	Input       string `json:"input,omitempty"`
	Sizes       []int  `json:"sizes"`
	Steps       *int   `json:"steps,omitempty"` // mean-shift steps, track mode only
	CreatedAtNs int64  `json:"created_at_ns"`
	DurationNs  int64  `json:"duration_ns"`
}

// RecordRun stores run and its locations in one transaction. An empty
// RunID is replaced with a new UUID and a zero CreatedAtNs with the
// current time. Locations keep their slice order.
func (db *DB) RecordRun(run *Run, locations []subpixel.Location) error {
	if run.Mode != ModeLocate && run.Mode != ModeTrack {
		return fmt.Errorf("unknown run mode %q", run.Mode)
	}
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAtNs == 0 {
		run.CreatedAtNs = time.Now().UnixNano()
	}
	sizes, err := json.Marshal(run.Sizes)
	if err != nil {
		return fmt.Errorf("encode sizes: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO locate_runs (
			run_id, mode, method, polarity, input, sizes_json, steps,
			created_at_ns, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Mode, run.Method, run.Polarity, run.Input, string(sizes),
		nullInt(run.Steps), run.CreatedAtNs, run.DurationNs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO located_extrema (run_id, seq, coordinates_json, value)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare location insert: %w", err)
	}
	defer stmt.Close()

	for i, loc := range locations {
		coords, err := json.Marshal(loc.Coordinates)
		if err != nil {
			return fmt.Errorf("encode location %d: %w", i, err)
		}
		var value sql.NullFloat64
		if !math.IsNaN(loc.Value) && !math.IsInf(loc.Value, 0) {
			value = sql.NullFloat64{Float64: loc.Value, Valid: true}
		}
		if _, err := stmt.Exec(run.RunID, i, string(coords), value); err != nil {
			return fmt.Errorf("insert location %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	monitoring.Logf("recorded %s run %s with %d locations", run.Mode, run.RunID, len(locations))
	return nil
}

// RecordTrack stores a mean-shift result. The end point is kept as a
// location without a value.
func (db *DB) RecordTrack(run *Run, res subpixel.MeanShiftResult) error {
	run.Mode = ModeTrack
	steps := res.Steps
	run.Steps = &steps
	return db.RecordRun(run, []subpixel.Location{{Coordinates: res.Coordinates, Value: math.NaN()}})
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(runID string) (*Run, error) {
	var run Run
	var sizes string
	var steps sql.NullInt64
	err := db.QueryRow(`
		SELECT run_id, mode, method, polarity, input, sizes_json, steps,
		       created_at_ns, duration_ns
		FROM locate_runs
		WHERE run_id = ?`, runID,
	).Scan(&run.RunID, &run.Mode, &run.Method, &run.Polarity, &run.Input, &sizes, &steps,
		&run.CreatedAtNs, &run.DurationNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if err := json.Unmarshal([]byte(sizes), &run.Sizes); err != nil {
		return nil, fmt.Errorf("decode sizes of run %s: %w", runID, err)
	}
	if steps.Valid {
		v := int(steps.Int64)
		run.Steps = &v
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT run_id FROM locate_runs ORDER BY created_at_ns DESC, run_id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	// Fetched after the cursor is closed: the store uses one connection.
	runs := make([]Run, 0, len(ids))
	for _, id := range ids {
		run, err := db.GetRun(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

// ListLocations returns the locations of a run in recorded order. Stored
// NULL values come back as NaN.
func (db *DB) ListLocations(runID string) ([]subpixel.Location, error) {
	rows, err := db.Query(`
		SELECT coordinates_json, value
		FROM located_extrema
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []subpixel.Location
	for rows.Next() {
		var coords string
		var value sql.NullFloat64
		if err := rows.Scan(&coords, &value); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		loc := subpixel.Location{Value: math.NaN()}
		if err := json.Unmarshal([]byte(coords), &loc.Coordinates); err != nil {
			return nil, fmt.Errorf("decode coordinates: %w", err)
		}
		if value.Valid {
			loc.Value = value.Float64
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its locations.
func (db *DB) DeleteRun(runID string) error {
	res, err := db.Exec(`DELETE FROM locate_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
