package models

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusComplete indicates the task completed successfully.
	TaskStatusComplete TaskStatus = "complete"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusComplete, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Open returns true if the task still needs work: it has not been started,
// or a previous attempt failed and it is eligible for retry.
func (s TaskStatus) Open() bool {
	return s == TaskStatusPending || s == TaskStatusFailed
}

// TaskNode represents a unit of work in the task forest.
type TaskNode struct {
	// ID is the unique identifier for this task. IDs are assigned
	// monotonically and never reused.
	ID int `json:"id"`
	// Description is the free-text description of the task.
	Description string `json:"description"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// ParentID is the ID of the parent task, or 0 for root tasks.
	ParentID int `json:"parent_id,omitempty"`
	// Children lists child task IDs in insertion order.
	Children []int `json:"children,omitempty"`
	// Metadata holds free-form string attributes such as "path",
	// "content", "notes" or "failure".
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *TaskNode) Clone() TaskNode {
	c := *n
	c.Children = append([]int(nil), n.Children...)
	if n.Metadata != nil {
		c.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// HistoryEvent is one entry in the append-only task history log.
type HistoryEvent struct {
	// TaskID is the task the event refers to, or 0 when the event was
	// recorded against a task description rather than a tracked node.
	TaskID int `json:"task_id,omitempty"`
	// Task is the task description for events not tied to a node ID.
	Task string `json:"task,omitempty"`
	// Status the task transitioned to.
	Status TaskStatus `json:"status"`
	// Notes carries the completion or failure message.
	Notes string `json:"notes"`
}
