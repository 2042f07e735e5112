package db

import (
	"fmt"
	"time"
)

// Run is one finished investigation.
type Run struct {
	ID         string
	Service    string
	Phase      string
	Iterations int
	Summary    string
	PRURL      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun stores a finished run.
func (s *Store) RecordRun(r Run) error {
	_, err := s.conn.Exec(
		"INSERT INTO runs (id, service, phase, iterations, summary, pr_url, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.Service, r.Phase, r.Iterations, r.Summary, r.PRURL,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.Query(
		"SELECT id, service, phase, iterations, summary, pr_url, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Service, &r.Phase, &r.Iterations, &r.Summary, &r.PRURL, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
