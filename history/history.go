// Package history records runs and their generation reports in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/they4kman/experimentation/machine-learning/pushgp/gp"
)

// ErrRunNotFound indicates the requested run doesn't exist
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	seed        INTEGER NOT NULL,
	config      TEXT NOT NULL,
	solved      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS reports (
	run_id             TEXT NOT NULL REFERENCES runs(id),
	generation         INTEGER NOT NULL,
	final              INTEGER NOT NULL,
	best_fitness       REAL NOT NULL,
	mean_fitness       REAL NOT NULL,
	mean_size          REAL NOT NULL,
	best               TEXT NOT NULL,
	simplified         TEXT NOT NULL,
	simplified_fitness REAL NOT NULL,
	PRIMARY KEY (run_id, generation, final)
);`

type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Seed       int64
	Config     string
	Solved     bool
}

// Recorder is a gp.ReportSink writing the reports of one run.
type Recorder struct {
	store *Store
	runID string
}

func (r *Recorder) RunID() string {
	return r.runID
}

// BeginRun registers a new run and returns the recorder for its reports.
// config is stored verbatim for later reference.
func (s *Store) BeginRun(ctx context.Context, seed int64, config string) (*Recorder, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, seed, config) VALUES (?, ?, ?, ?)",
		id, time.Now().UnixNano(), seed, config)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return &Recorder{store: s, runID: id}, nil
}

func (r *Recorder) WriteReport(_ *gp.Simulation, report *gp.Report) error {
	_, err := r.store.db.Exec(
		`INSERT INTO reports (run_id, generation, final, best_fitness, mean_fitness, mean_size,
			best, simplified, simplified_fitness)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, report.Generation, report.Final, report.BestFitness, report.MeanFitness,
		report.MeanSize, report.Best, report.Simplified, report.SimplifiedFitness)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	if report.Final {
		_, err = r.store.db.Exec("UPDATE runs SET finished_at = ?, solved = ? WHERE id = ?",
			time.Now().UnixNano(), report.Success, r.runID)
		if err != nil {
			return fmt.Errorf("finishing run: %w", err)
		}
	}
	return nil
}

func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	var run Run
	var startedAt int64
	var finishedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, seed, config, solved FROM runs WHERE id = ?", id,
	).Scan(&run.ID, &startedAt, &finishedAt, &run.Seed, &run.Config, &run.Solved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}

	run.StartedAt = time.Unix(0, startedAt)
	if finishedAt.Valid {
		run.FinishedAt = time.Unix(0, finishedAt.Int64)
	}
	return &run, nil
}

// Reports lists the reports of a run in the order they were written.
func (s *Store) Reports(ctx context.Context, runID string) ([]*gp.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT generation, final, best_fitness, mean_fitness, mean_size, best, simplified, simplified_fitness
		FROM reports WHERE run_id = ? ORDER BY generation, final`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []*gp.Report
	for rows.Next() {
		r := &gp.Report{}
		err := rows.Scan(&r.Generation, &r.Final, &r.BestFitness, &r.MeanFitness, &r.MeanSize,
			&r.Best, &r.Simplified, &r.SimplifiedFitness)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		r.Success = r.BestFitness == 0
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
