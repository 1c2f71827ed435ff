// Package monitor exposes a read-only view of workflow progress. The
// orchestrator publishes an immutable snapshot after each step; readers
// always receive a deep copy and never share mutable state with the
// orchestrator thread.
package monitor

import (
	"sync"
	"time"

	"github.com/afishnamedqwerty/aime/internal/optimizer"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// Snapshot is one immutable view of workflow progress.
type Snapshot struct {
	Tasks     []models.TaskNode     `json:"tasks"`
	History   []models.HistoryEvent `json:"history"`
	Optimizer optimizer.Metrics     `json:"optimizer"`
	Checklist string                `json:"checklist"`
	Rationale string                `json:"rationale"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// clone deep-copies the snapshot so readers never alias published state.
func (s Snapshot) clone() Snapshot {
	c := s
	c.Tasks = make([]models.TaskNode, len(s.Tasks))
	for i := range s.Tasks {
		c.Tasks[i] = s.Tasks[i].Clone()
	}
	c.History = append([]models.HistoryEvent(nil), s.History...)
	return c
}

// State holds the latest snapshot under a mutex.
type State struct {
	mu       sync.Mutex
	snapshot Snapshot
}

// NewState creates an empty monitor state.
func NewState() *State {
	return &State{}
}

// Publish stores a deep copy of the snapshot, stamping it with the
// current time.
func (s *State) Publish(snapshot Snapshot) error {
	snapshot.UpdatedAt = time.Now()
	copied := snapshot.clone()

	s.mu.Lock()
	s.snapshot = copied
	s.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the latest published snapshot.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	current := s.snapshot
	s.mu.Unlock()
	return current.clone()
}
