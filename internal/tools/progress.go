package tools

import (
	"fmt"

	"github.com/afishnamedqwerty/aime/internal/tasktree"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// Progress records a structured progress update into the task tree's
// history log.
type Progress struct {
	Tree *tasktree.Tree
}

func (t *Progress) Name() string        { return "update_progress" }
func (t *Progress) Description() string { return "Persist a structured progress update." }

// Run appends a history event for the current task. The status defaults
// to complete and the notes default to the task description.
func (t *Progress) Run(ctx Context, args map[string]string) (Result, error) {
	status := models.TaskStatus(args["status"])
	if status == "" {
		status = models.TaskStatusComplete
	}
	notes := args["notes"]
	if notes == "" {
		notes = ctx.Task
	}
	t.Tree.RecordHistory(models.HistoryEvent{Task: ctx.Task, Status: status, Notes: notes})
	return Result{
		Content: fmt.Sprintf("Recorded status=%s for task", status),
		Metadata: map[string]string{
			"tool":   t.Name(),
			"task":   ctx.Task,
			"status": string(status),
			"notes":  notes,
		},
	}, nil
}
