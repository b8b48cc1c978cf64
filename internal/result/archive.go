package result

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/signalnine/shockbench/internal/sweep"
)

//go:embed schema.sql
var schemaSQL string

// Archive appends sweep records to a sqlite database so results stay
// queryable across runs. One row per sweep, one per point or verdict.
type Archive struct {
	db *sql.DB
}

// OpenArchive creates or opens the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to archive: %w", err)
	}

	// Single writer; sqlite serializes writes anyway and this avoids
	// SQLITE_BUSY on the append path.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma: %w", err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// BeginSweep registers a sweep and returns its id for the point rows.
func (a *Archive) BeginSweep(kind string) (string, error) {
	id := uuid.NewString()
	_, err := a.db.Exec(
		"INSERT INTO sweeps (id, kind, started_at) VALUES (?, ?, ?)",
		id, kind, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("recording sweep: %w", err)
	}
	return id, nil
}

// RecordScaling archives every point of a scaling sweep.
func (a *Archive) RecordScaling(sweepID string, res *sweep.ScalingResult) error {
	for _, p := range res.Points {
		_, err := a.db.Exec(
			`INSERT INTO points (sweep_id, value, elapsed_s, energy, fom, speedup, efficiency)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sweepID, p.Value, nullable(p.Elapsed), nullable(p.Energy), nullable(p.FOM),
			nullable(p.Speedup), nullable(p.Efficiency),
		)
		if err != nil {
			return fmt.Errorf("recording point %d: %w", p.Value, err)
		}
	}
	return nil
}

// RecordConvergence archives the energy progression of a convergence sweep.
func (a *Archive) RecordConvergence(sweepID string, res *sweep.ConvergenceResult) error {
	for _, p := range res.Points {
		_, err := a.db.Exec(
			"INSERT INTO points (sweep_id, value, energy) VALUES (?, ?, ?)",
			sweepID, p.Iterations, p.Energy,
		)
		if err != nil {
			return fmt.Errorf("recording point %d: %w", p.Iterations, err)
		}
	}
	return nil
}

// RecordMemory archives the per-size peak footprint of a memory sweep.
func (a *Archive) RecordMemory(sweepID string, res *sweep.MemoryResult) error {
	for _, p := range res.Points {
		_, err := a.db.Exec(
			`INSERT INTO points (sweep_id, value, elapsed_s, energy, peak_rss_bytes, peak_vms_bytes)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sweepID, p.Size, nullable(p.Elapsed), nullable(p.Energy), p.PeakRSS, p.PeakVMS,
		)
		if err != nil {
			return fmt.Errorf("recording point %d: %w", p.Size, err)
		}
	}
	return nil
}

// RecordSuite archives every verdict of a suite run.
func (a *Archive) RecordSuite(sweepID string, rec *SuiteRecord) error {
	for _, t := range rec.Trials {
		_, err := a.db.Exec(
			`INSERT INTO verdicts (sweep_id, trial, passed, failure, relative_diff, message)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sweepID, t.Name, t.Passed, t.Failure, t.RelativeDiff, t.Message,
		)
		if err != nil {
			return fmt.Errorf("recording verdict %s: %w", t.Name, err)
		}
	}
	return nil
}

// SweepCount returns how many sweeps of a kind the archive holds.
func (a *Archive) SweepCount(kind string) (int, error) {
	var n int
	err := a.db.QueryRow("SELECT COUNT(*) FROM sweeps WHERE kind = ?", kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sweeps: %w", err)
	}
	return n, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
