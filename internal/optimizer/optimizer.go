// Package optimizer keeps a bounded window of (prompt, response, score)
// trace examples, scores planner health from them, and mutates the
// planner prompt when the composite score drops. Every recorded example
// is appended to a durable JSONL trace log that can be replayed on
// startup.
package optimizer

import (
	"math"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// DefaultWindowSize is the default trace window capacity.
const DefaultWindowSize = 20

// mutationThreshold is the composite score below which the prompt is
// mutated.
const mutationThreshold = 0.5

// successScore is the example score at or above which an example counts
// as a success for the composite metric.
const successScore = 0.9

// reminderPrefix starts the mutation suffix appended to the prompt.
const reminderPrefix = "\nReminder: incorporate feedback -> "

// observationLimit caps how much of the outcome result is quoted in a
// mutated prompt.
const observationLimit = 80

// Config configures an Optimizer.
type Config struct {
	// WindowSize caps the example window; defaults to DefaultWindowSize.
	WindowSize int
	// TracePath is the durable JSONL trace log. Empty disables
	// persistence and replay.
	TracePath string
	// Logger receives replay warnings and mutation notices.
	Logger *logging.DebugLogger
}

// Optimizer is the online feedback loop. It is single-writer: the
// orchestrator thread is the only caller of Record.
type Optimizer struct {
	window     []models.TraceExample
	capacity   int
	bestPrompt string
	hasBest    bool
	tracePath  string
	mutations  int
	composite  float64
	logger     *logging.DebugLogger
}

// New creates an optimizer. If a trace log already exists at the
// configured path it is replayed: the window is rebuilt under the same
// eviction policy and the best prompt is recovered.
func New(cfg Config) (*Optimizer, error) {
	capacity := cfg.WindowSize
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	o := &Optimizer{
		capacity: capacity,
		logger:   cfg.Logger,
	}

	if cfg.TracePath != "" {
		path, err := prepareTracePath(cfg.TracePath)
		if err != nil {
			return nil, err
		}
		o.tracePath = path
		if err := o.replay(); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Record scores an outcome, updates the window and the composite score,
// and mutates the prompt when the composite drops below the threshold.
// The example is always persisted to the trace log. Returns the mutated
// prompt when one was derived.
func (o *Optimizer) Record(prompt string, outcome models.Outcome) (string, bool, error) {
	score := 0.0
	if outcome.Status == models.TaskStatusComplete {
		score = 1.0
	}
	example := models.TraceExample{Prompt: prompt, Response: outcome.Result, Score: score}
	o.push(example)

	o.composite = CompositeScore(o.window)

	newPrompt := ""
	mutated := false
	if o.composite < mutationThreshold {
		newPrompt = prompt + reminderPrefix + firstRunes(outcome.Result, observationLimit)
		o.bestPrompt = newPrompt
		o.hasBest = true
		o.mutations++
		mutated = true
		o.logger.Log("optimizer: prompt mutated at composite score %.3f", o.composite)
	}

	if err := o.persist(example, newPrompt); err != nil {
		return "", false, err
	}
	return newPrompt, mutated, nil
}

// CurrentPrompt returns the best mutated prompt if one exists, else the
// caller-supplied fallback.
func (o *Optimizer) CurrentPrompt(fallback string) string {
	if o.hasBest {
		return o.bestPrompt
	}
	return fallback
}

// Window returns a copy of the current example window, oldest first.
func (o *Optimizer) Window() []models.TraceExample {
	return append([]models.TraceExample(nil), o.window...)
}

// Metrics is the read-only health view published to monitoring.
type Metrics struct {
	WindowSize     int     `json:"window_size"`
	Capacity       int     `json:"capacity"`
	CompositeScore float64 `json:"composite_score"`
	Mutations      int     `json:"mutations"`
	PromptMutated  bool    `json:"prompt_mutated"`
}

// Metrics returns the current optimizer health metrics.
func (o *Optimizer) Metrics() Metrics {
	return Metrics{
		WindowSize:     len(o.window),
		Capacity:       o.capacity,
		CompositeScore: o.composite,
		Mutations:      o.mutations,
		PromptMutated:  o.hasBest,
	}
}

// push appends an example, evicting the oldest when over capacity.
func (o *Optimizer) push(example models.TraceExample) {
	o.window = append(o.window, example)
	if len(o.window) > o.capacity {
		o.window = o.window[len(o.window)-o.capacity:]
	}
}

// CompositeScore blends the window completion rate (weight 0.7) with a
// recency bonus (weight 0.3) equal to 1/distance of the most recent
// success from the window tail. The result is rounded to three decimals
// and clamped to [0, 1]. An empty window scores 0.
func CompositeScore(window []models.TraceExample) float64 {
	if len(window) == 0 {
		return 0
	}
	successes := 0
	for _, ex := range window {
		if ex.Score >= successScore {
			successes++
		}
	}
	completionRate := float64(successes) / float64(len(window))

	recencyBonus := 0.0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Score >= successScore {
			recencyBonus = 1.0 / float64(len(window)-i)
			break
		}
	}

	score := completionRate*0.7 + recencyBonus*0.3
	if score > 1 {
		score = 1
	}
	return math.Round(score*1000) / 1000
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
