package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// historyTimeLayout is RFC3339 with fixed-width nanoseconds. RFC3339Nano
// drops trailing fractional zeros, which breaks the lexicographic
// ORDER BY on the stored strings; a fixed width keeps string order and
// chronological order identical.
const historyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	trigger_kind  TEXT NOT NULL,
	status        TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	session_count INTEGER NOT NULL DEFAULT 0
)`

// History records regeneration runs in a local SQLite database so the
// UI can show what happened and when. All writes are best-effort; a
// broken history never blocks regeneration.
type History struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history database ping failed: %w", err)
	}
	if _, err := db.Exec(createRunsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	return &History{db: db}, nil
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// Record inserts one finished run.
func (h *History) Record(job JobState) error {
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO runs (id, trigger_kind, status, started_at, finished_at, error, session_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		string(job.Trigger),
		string(job.Status),
		job.StartedAt.UTC().Format(historyTimeLayout),
		job.FinishedAt.UTC().Format(historyTimeLayout),
		job.Error,
		job.SessionCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (h *History) Recent(limit int) ([]JobState, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(
		`SELECT id, trigger_kind, status, started_at, finished_at, error, session_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []JobState
	for rows.Next() {
		var (
			job                   JobState
			trigger, status       string
			startedAt, finishedAt string
		)
		if err := rows.Scan(&job.ID, &trigger, &status, &startedAt, &finishedAt, &job.Error, &job.SessionCount); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		job.Trigger = Trigger(trigger)
		job.Status = JobStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			job.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, finishedAt); err == nil {
			job.FinishedAt = t
		}
		runs = append(runs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return runs, nil
}
