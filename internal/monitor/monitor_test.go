package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

func TestPublishIsDeepCopy(t *testing.T) {
	state := NewState()

	tasks := []models.TaskNode{{
		ID:          1,
		Description: "a",
		Status:      models.TaskStatusPending,
		Metadata:    map[string]string{"path": "/tmp/x"},
	}}
	if err := state.Publish(Snapshot{Tasks: tasks, Checklist: "- [ ] a"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Mutating the publisher's slice must not leak into the snapshot.
	tasks[0].Metadata["path"] = "/changed"
	tasks[0].Status = models.TaskStatusFailed

	got := state.Snapshot()
	if got.Tasks[0].Metadata["path"] != "/tmp/x" {
		t.Error("expected snapshot isolated from publisher mutation")
	}
	if got.Tasks[0].Status != models.TaskStatusPending {
		t.Error("expected status isolated from publisher mutation")
	}

	// Mutating a reader's copy must not leak into subsequent reads.
	got.Tasks[0].Metadata["path"] = "/reader"
	if state.Snapshot().Tasks[0].Metadata["path"] != "/tmp/x" {
		t.Error("expected snapshot isolated from reader mutation")
	}

	if got.UpdatedAt.IsZero() {
		t.Error("expected snapshot to carry an update time")
	}
}

func TestConcurrentReaders(t *testing.T) {
	state := NewState()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			state.Publish(Snapshot{
				Tasks:     []models.TaskNode{{ID: i, Description: "t", Metadata: map[string]string{"i": "x"}}},
				Checklist: "- [ ] t",
			})
		}
	}()

	for i := 0; i < 200; i++ {
		snap := state.Snapshot()
		if len(snap.Tasks) == 1 && snap.Tasks[0].Description != "t" {
			t.Fatalf("observed half-updated snapshot: %+v", snap.Tasks[0])
		}
	}
	<-done
}

func TestServerServesState(t *testing.T) {
	state := NewState()
	state.Publish(Snapshot{Checklist: "- [x] done", Rationale: "all good"})

	srv := NewServer(state, "", logging.Nop())
	if err := srv.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	}()

	resp, err := http.Get("http://" + srv.Addr() + "/api/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected permissive CORS header, got %q", got)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Checklist != "- [x] done" || snap.Rationale != "all good" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
