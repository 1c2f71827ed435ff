package optimizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

func newOptimizer(t *testing.T, cfg Config) *Optimizer {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	o, err := New(cfg)
	if err != nil {
		t.Fatalf("new optimizer: %v", err)
	}
	return o
}

func TestCompositeScore(t *testing.T) {
	success := models.TraceExample{Score: 1.0}
	failure := models.TraceExample{Score: 0.0}

	tests := []struct {
		name   string
		window []models.TraceExample
		want   float64
	}{
		{"empty", nil, 0},
		{"all failed", []models.TraceExample{failure, failure, failure}, 0},
		{"all complete", []models.TraceExample{success, success}, 1},
		{"recent success", []models.TraceExample{failure, success}, 0.65},
		{"stale success", []models.TraceExample{success, failure}, 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CompositeScore(tc.window); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRecordMutatesOnFirstFailure(t *testing.T) {
	o := newOptimizer(t, Config{WindowSize: 5})

	// A failed outcome yields composite 0.0, under the threshold, so the
	// very first call must mutate the prompt.
	newPrompt, mutated, err := o.Record("base prompt", models.Outcome{
		Status: models.TaskStatusFailed,
		Result: "everything broke",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !mutated {
		t.Fatal("expected mutation on first failure")
	}
	if !strings.HasPrefix(newPrompt, "base prompt\nReminder: incorporate feedback -> ") {
		t.Errorf("unexpected mutated prompt %q", newPrompt)
	}
	if !strings.Contains(newPrompt, "everything broke") {
		t.Errorf("expected observation in mutated prompt %q", newPrompt)
	}

	// Two more failures keep mutating; each call stands alone.
	for i := 0; i < 2; i++ {
		if _, mutated, err := o.Record("base prompt", models.Outcome{Status: models.TaskStatusFailed}); err != nil || !mutated {
			t.Fatalf("expected mutation on consecutive failure, mutated=%v err=%v", mutated, err)
		}
	}

	if o.CurrentPrompt("fallback") == "fallback" {
		t.Error("expected best prompt retained after mutation")
	}
}

func TestRecordNoMutationWhenHealthy(t *testing.T) {
	o := newOptimizer(t, Config{WindowSize: 5})

	newPrompt, mutated, err := o.Record("p", models.Outcome{Status: models.TaskStatusComplete, Result: "ok"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if mutated || newPrompt != "" {
		t.Errorf("expected no mutation, got %q", newPrompt)
	}
	if got := o.CurrentPrompt("fallback"); got != "fallback" {
		t.Errorf("expected fallback prompt, got %q", got)
	}
}

func TestObservationTruncatedTo80(t *testing.T) {
	o := newOptimizer(t, Config{WindowSize: 5})
	long := strings.Repeat("x", 200)

	newPrompt, _, err := o.Record("p", models.Outcome{Status: models.TaskStatusFailed, Result: long})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	suffix := strings.TrimPrefix(newPrompt, "p"+reminderPrefix)
	if len(suffix) != 80 {
		t.Errorf("expected 80-character observation, got %d", len(suffix))
	}
}

func TestWindowEviction(t *testing.T) {
	o := newOptimizer(t, Config{WindowSize: 3})
	for i := 0; i < 10; i++ {
		if _, _, err := o.Record("p", models.Outcome{Status: models.TaskStatusComplete}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if got := len(o.Window()); got != 3 {
		t.Errorf("expected window capped at 3, got %d", got)
	}
	if o.Metrics().WindowSize != 3 {
		t.Errorf("expected metrics window size 3, got %d", o.Metrics().WindowSize)
	}
}

func TestTracePersistenceAndReplay(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "nested", "trace.jsonl")

	o := newOptimizer(t, Config{WindowSize: 4, TracePath: tracePath})
	if _, _, err := o.Record("good prompt", models.Outcome{Status: models.TaskStatusComplete, Result: "fine"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, _, err := o.Record("good prompt", models.Outcome{Status: models.TaskStatusComplete, Result: "fine"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Parent directory is created on demand.
	if _, err := os.Stat(tracePath); err != nil {
		t.Fatalf("expected trace file, got %v", err)
	}

	replayed := newOptimizer(t, Config{WindowSize: 4, TracePath: tracePath})
	if got := len(replayed.Window()); got != 2 {
		t.Fatalf("expected 2 replayed examples, got %d", got)
	}
	// No explicit mutation was logged, so the best prompt is the
	// highest-scoring replayed prompt.
	if got := replayed.CurrentPrompt("fallback"); got != "good prompt" {
		t.Errorf("expected highest-scoring prompt, got %q", got)
	}
}

func TestReplayPrefersLastMutatedPrompt(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "trace.jsonl")

	o := newOptimizer(t, Config{WindowSize: 4, TracePath: tracePath})
	o.Record("p1", models.Outcome{Status: models.TaskStatusComplete, Result: "ok"})
	mutatedPrompt, mutated, err := o.Record("p2", models.Outcome{Status: models.TaskStatusFailed, Result: "broken"})
	if err != nil || !mutated {
		t.Fatalf("expected mutation, err=%v", err)
	}

	replayed := newOptimizer(t, Config{WindowSize: 4, TracePath: tracePath})
	if got := replayed.CurrentPrompt("fallback"); got != mutatedPrompt {
		t.Errorf("expected last mutated prompt %q, got %q", mutatedPrompt, got)
	}
}

func TestReplaySkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "trace.jsonl")
	content := `{"prompt":"ok","response":"r","score":1}` + "\n" +
		"this is not json\n" +
		`{"prompt":"ok2","response":"r2","score":0}` + "\n"
	if err := os.WriteFile(tracePath, []byte(content), 0644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	o := newOptimizer(t, Config{WindowSize: 4, TracePath: tracePath})
	if got := len(o.Window()); got != 2 {
		t.Errorf("expected malformed line skipped, window %d", got)
	}
	if got := o.CurrentPrompt("fallback"); got != "ok" {
		t.Errorf("expected highest-scoring prompt ok, got %q", got)
	}
}

func TestReplayHandlesOversizedRecords(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "trace.jsonl")

	// A read_file outcome can put a whole file's contents into the
	// response, so a single line may run to megabytes.
	big := strings.Repeat("z", 2*1024*1024)
	content := `{"prompt":"old","response":"` + big + `","score":0,"new_prompt":"recovered prompt"}` + "\n" +
		`{"prompt":"tail","response":"r","score":1}`
	if err := os.WriteFile(tracePath, []byte(content), 0644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	o := newOptimizer(t, Config{WindowSize: 4, TracePath: tracePath})
	if got := len(o.Window()); got != 2 {
		t.Fatalf("expected both records replayed, window %d", got)
	}
	if got := o.Window()[0].Response; len(got) != len(big) {
		t.Errorf("expected full %d-byte response replayed, got %d bytes", len(big), len(got))
	}
	// The final line has no trailing newline and must still be read.
	if got := o.Window()[1].Prompt; got != "tail" {
		t.Errorf("expected final unterminated record replayed, got %q", got)
	}
	if got := o.CurrentPrompt("fallback"); got != "recovered prompt" {
		t.Errorf("expected mutated prompt recovered, got %q", got)
	}
}

func TestReplayRespectsEviction(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "trace.jsonl")

	writer := newOptimizer(t, Config{WindowSize: 50, TracePath: tracePath})
	for i := 0; i < 10; i++ {
		writer.Record("p", models.Outcome{Status: models.TaskStatusComplete})
	}

	small := newOptimizer(t, Config{WindowSize: 3, TracePath: tracePath})
	if got := len(small.Window()); got != 3 {
		t.Errorf("expected replay bounded by capacity, got %d", got)
	}
}
