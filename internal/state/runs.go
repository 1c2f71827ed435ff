package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/afishnamedqwerty/aime/pkg/models"
)

// Run is one archived workflow run.
type Run struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Completed bool      `json:"completed"`
	Rationale string    `json:"rationale"`
	Checklist string    `json:"checklist"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRun archives a terminal workflow report together with its history
// events under the given run ID.
func (db *DB) SaveRun(id string, report models.WorkflowReport, checklist string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO runs (id, goal, completed, rationale, checklist, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, report.Goal, report.Completed, report.Rationale, checklist, time.Now().UTC(),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	for seq, event := range report.History {
		_, err = tx.Exec(
			`INSERT INTO run_events (run_id, seq, task_id, task, status, notes) VALUES (?, ?, ?, ?, ?, ?)`,
			id, seq, event.TaskID, event.Task, string(event.Status), event.Notes,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert run event %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(
		`SELECT id, goal, completed, rationale, checklist, created_at FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Goal, &r.Completed, &r.Rationale, &r.Checklist, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one archived run, or nil when it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var r Run
	err := db.conn.QueryRow(
		`SELECT id, goal, completed, rationale, checklist, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Goal, &r.Completed, &r.Rationale, &r.Checklist, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}
	return &r, nil
}

// RunEvents returns the archived history events of a run in order.
func (db *DB) RunEvents(id string) ([]models.HistoryEvent, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(
		`SELECT task_id, task, status, notes FROM run_events WHERE run_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	defer rows.Close()

	var events []models.HistoryEvent
	for rows.Next() {
		var ev models.HistoryEvent
		var status string
		if err := rows.Scan(&ev.TaskID, &ev.Task, &status, &ev.Notes); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		ev.Status = models.TaskStatus(status)
		events = append(events, ev)
	}
	return events, rows.Err()
}
