package state

import (
	"path/filepath"
	"testing"

	"github.com/afishnamedqwerty/aime/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)

	report := models.WorkflowReport{
		Goal:      "Research the project",
		Completed: true,
		Rationale: "single task plan",
		History: []models.HistoryEvent{
			{TaskID: 1, Task: "Research the project", Status: models.TaskStatusComplete, Notes: "done"},
			{TaskID: 1, Task: "Research the project", Status: models.TaskStatusComplete, Notes: "verified"},
		},
	}
	if err := db.SaveRun("run-1", report, "- [x] Research the project"); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	run, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if run == nil {
		t.Fatal("expected run, got nil")
	}
	if run.Goal != "Research the project" {
		t.Errorf("expected goal 'Research the project', got %q", run.Goal)
	}
	if !run.Completed {
		t.Error("expected run to be completed")
	}
	if run.Checklist != "- [x] Research the project" {
		t.Errorf("unexpected checklist: %q", run.Checklist)
	}

	events, err := db.RunEvents("run-1")
	if err != nil {
		t.Fatalf("failed to load run events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Notes != "done" || events[1].Notes != "verified" {
		t.Errorf("events out of order: %+v", events)
	}
	if events[0].Status != models.TaskStatusComplete {
		t.Errorf("expected complete status, got %v", events[0].Status)
	}
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)

	run, err := db.GetRun("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for missing run, got %+v", run)
	}
}

func TestListRuns(t *testing.T) {
	db := openTestDB(t)

	for i, goal := range []string{"first goal", "second goal", "third goal"} {
		report := models.WorkflowReport{Goal: goal, Completed: i%2 == 0}
		if err := db.SaveRun(goal, report, ""); err != nil {
			t.Fatalf("failed to save run %q: %v", goal, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	all, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestDeleteRunCascade(t *testing.T) {
	db := openTestDB(t)

	report := models.WorkflowReport{
		Goal: "cascade",
		History: []models.HistoryEvent{
			{TaskID: 1, Task: "cascade", Status: models.TaskStatusFailed, Notes: "boom"},
		},
	}
	if err := db.SaveRun("run-cascade", report, ""); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if _, err := db.conn.Exec(`DELETE FROM runs WHERE id = ?`, "run-cascade"); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}

	events, err := db.RunEvents("run-cascade")
	if err != nil {
		t.Fatalf("failed to load run events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected cascade delete to remove events, got %d", len(events))
	}
}
