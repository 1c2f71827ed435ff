package main

import (
	"testing"

	"github.com/afishnamedqwerty/aime/pkg/models"
)

func TestEventLabelUsesDescription(t *testing.T) {
	ev := models.HistoryEvent{TaskID: 3, Task: "write tests", Notes: "done"}
	if got := eventLabel(ev); got != "write tests" {
		t.Errorf("expected task description, got %q", got)
	}
}

func TestEventLabelFallsBackToNotes(t *testing.T) {
	// Completion and failure events carry only the task ID and notes.
	ev := models.HistoryEvent{TaskID: 3, Status: models.TaskStatusComplete, Notes: "verified output"}
	if got := eventLabel(ev); got != "verified output" {
		t.Errorf("expected notes fallback, got %q", got)
	}
}
