// Package tasktree tracks a forest of tasks with a small status machine,
// an append-only history log, and a text checklist codec.
//
// The tree is owned by a single control loop; exactly one mutation is in
// flight at a time by construction, so no internal locking is performed.
// Concurrent readers must work from value snapshots (see Describe).
package tasktree

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// ErrUnknownTask indicates a task ID that is not tracked by the tree.
var ErrUnknownTask = errors.New("unknown task")

// Tree owns the task forest, root ordering and history log.
// All status changes go through the Mark* mutators.
type Tree struct {
	tasks     map[int]*models.TaskNode
	rootOrder []int
	nextID    int
	history   []models.HistoryEvent
	logger    *logging.DebugLogger
}

// New creates an empty tree.
func New(logger *logging.DebugLogger) *Tree {
	return &Tree{
		tasks:  make(map[int]*models.TaskNode),
		nextID: 1,
		logger: logger,
	}
}

// CreateTask creates a task under the given parent (0 for a root task),
// or returns the existing sibling whose description matches
// case-insensitively. A reused task gets its description updated in place
// but its status is never reset, which makes repeated creation idempotent.
func (t *Tree) CreateTask(description string, parentID int, status models.TaskStatus) (*models.TaskNode, error) {
	if parentID != 0 {
		if _, ok := t.tasks[parentID]; !ok {
			return nil, fmt.Errorf("create task under parent %d: %w", parentID, ErrUnknownTask)
		}
	}

	if existing := t.Find(description, parentID); existing != nil {
		existing.Description = description
		return existing, nil
	}

	node := &models.TaskNode{
		ID:          t.nextID,
		Description: description,
		Status:      status,
		ParentID:    parentID,
		Metadata:    make(map[string]string),
	}
	t.nextID++
	t.tasks[node.ID] = node

	if parentID == 0 {
		t.rootOrder = append(t.rootOrder, node.ID)
	} else {
		parent := t.tasks[parentID]
		parent.Children = append(parent.Children, node.ID)
	}
	t.logger.Log("tasktree: created task %d %q under %d", node.ID, description, parentID)
	return node, nil
}

// Find returns the task with the given description (case-insensitive)
// under the given parent, or nil.
func (t *Tree) Find(description string, parentID int) *models.TaskNode {
	want := strings.ToLower(description)
	for _, node := range t.tasks {
		if node.ParentID == parentID && strings.ToLower(node.Description) == want {
			return node
		}
	}
	return nil
}

// FindRoot returns the first task with the given description under any
// parent level 0, or nil.
func (t *Tree) FindRoot(description string) *models.TaskNode {
	return t.Find(description, 0)
}

// Get returns the task with the given ID.
func (t *Tree) Get(id int) (*models.TaskNode, bool) {
	node, ok := t.tasks[id]
	return node, ok
}

// Len returns the number of tracked tasks, including any roots that were
// detached from the iteration order by UpdateRootOrder.
func (t *Tree) Len() int {
	return len(t.tasks)
}

// UpdateRootOrder creates-or-reuses a root task per description and
// replaces the entire root order with exactly these tasks in this order.
// Previously tracked roots that are not in the new list stay in the task
// map but become unreachable from iteration. An empty description list
// leaves the current order untouched.
func (t *Tree) UpdateRootOrder(descriptions []string) []*models.TaskNode {
	var nodes []*models.TaskNode
	var newOrder []int
	for _, description := range descriptions {
		node, err := t.CreateTask(description, 0, models.TaskStatusPending)
		if err != nil {
			// Root creation cannot reference a missing parent.
			continue
		}
		nodes = append(nodes, node)
		newOrder = append(newOrder, node.ID)
	}
	if len(newOrder) > 0 {
		t.rootOrder = newOrder
	}
	return nodes
}

// Iterate returns a lazy, restartable pre-order sequence over the forest:
// roots in root order, then each root's children recursively in child-list
// order.
func (t *Tree) Iterate() iter.Seq[*models.TaskNode] {
	return func(yield func(*models.TaskNode) bool) {
		for _, id := range t.rootOrder {
			if !t.walk(id, yield) {
				return
			}
		}
	}
}

func (t *Tree) walk(id int, yield func(*models.TaskNode) bool) bool {
	node, ok := t.tasks[id]
	if !ok {
		return true
	}
	if !yield(node) {
		return false
	}
	for _, childID := range node.Children {
		if !t.walk(childID, yield) {
			return false
		}
	}
	return true
}

// NextOpenTask returns the first task in iteration order whose status is
// Pending or Failed, or nil when every reachable task is InProgress or
// Complete, or the tree is empty.
func (t *Tree) NextOpenTask() *models.TaskNode {
	for node := range t.Iterate() {
		if node.Status.Open() {
			return node
		}
	}
	return nil
}

// MarkInProgress transitions a task to InProgress.
func (t *Tree) MarkInProgress(id int) error {
	node, ok := t.tasks[id]
	if !ok {
		return fmt.Errorf("mark task %d in progress: %w", id, ErrUnknownTask)
	}
	node.Status = models.TaskStatusInProgress
	return nil
}

// MarkComplete transitions a task to Complete, stores the notes in the
// task metadata and appends a history event.
func (t *Tree) MarkComplete(id int, notes string) error {
	node, ok := t.tasks[id]
	if !ok {
		return fmt.Errorf("mark task %d complete: %w", id, ErrUnknownTask)
	}
	node.Status = models.TaskStatusComplete
	if notes != "" {
		node.Metadata["notes"] = notes
	}
	t.RecordHistory(models.HistoryEvent{TaskID: id, Status: models.TaskStatusComplete, Notes: notes})
	return nil
}

// MarkFailed transitions a task to Failed, stores the failure notes in the
// task metadata and appends a history event.
func (t *Tree) MarkFailed(id int, notes string) error {
	node, ok := t.tasks[id]
	if !ok {
		return fmt.Errorf("mark task %d failed: %w", id, ErrUnknownTask)
	}
	node.Status = models.TaskStatusFailed
	if notes != "" {
		node.Metadata["failure"] = notes
	}
	t.RecordHistory(models.HistoryEvent{TaskID: id, Status: models.TaskStatusFailed, Notes: notes})
	return nil
}

// RecordHistory appends an event to the history log. The log is
// append-only; entries are never mutated or truncated.
func (t *Tree) RecordHistory(event models.HistoryEvent) {
	t.history = append(t.history, event)
}

// History returns a copy of the history log.
func (t *Tree) History() []models.HistoryEvent {
	return append([]models.HistoryEvent(nil), t.history...)
}

// IsGoalComplete returns true iff the tree is non-empty and every tracked
// task is Complete.
func (t *Tree) IsGoalComplete() bool {
	if len(t.tasks) == 0 {
		return false
	}
	for _, node := range t.tasks {
		if node.Status != models.TaskStatusComplete {
			return false
		}
	}
	return true
}

// Describe returns deep copies of all reachable tasks in iteration order.
func (t *Tree) Describe() []models.TaskNode {
	var out []models.TaskNode
	for node := range t.Iterate() {
		out = append(out, node.Clone())
	}
	return out
}
