// Package planner turns a natural-language goal into ordered tasks in the
// task tree and keeps the plan fresh as tasks complete. The planner holds
// a mutable instruction prompt that the optimizer may replace between
// iterations.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/afishnamedqwerty/aime/internal/llm"
	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/internal/tasktree"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// ErrNotInitialized indicates RefreshPlan was called before Initialize.
var ErrNotInitialized = errors.New("planner must be initialized with a goal before refresh")

// DefaultPrompt is the initial planner instruction prompt.
const DefaultPrompt = "You are the dynamic planner for an adaptive multi-agent system. " +
	"Break goals into concrete, trackable tasks ordered by execution priority. " +
	"Return concise task descriptions suitable for progress tracking."

// failureReminder is appended to the prompt after a failed outcome.
const failureReminder = "\nReminder: emphasise feasibility and request clarification when required."

// DefaultMaxTasks caps how many tasks a goal is split into.
const DefaultMaxTasks = 6

// Planner decomposes a goal into tasks and regenerates plan rationale
// through the generation capability.
type Planner struct {
	gen      llm.Generator
	tree     *tasktree.Tree
	prompt   string
	goal     string
	maxTasks int
	logger   *logging.DebugLogger
}

// New creates a planner bound to the given tree. An empty initialPrompt
// selects DefaultPrompt. gen may be nil, in which case the rationale falls
// back to the formatted plan message.
func New(gen llm.Generator, tree *tasktree.Tree, initialPrompt string, logger *logging.DebugLogger) *Planner {
	if initialPrompt == "" {
		initialPrompt = DefaultPrompt
	}
	return &Planner{
		gen:      gen,
		tree:     tree,
		prompt:   initialPrompt,
		maxTasks: DefaultMaxTasks,
		logger:   logger,
	}
}

// Prompt returns the current instruction prompt.
func (p *Planner) Prompt() string {
	return p.prompt
}

// SetPrompt replaces the instruction prompt, typically with an
// optimizer-mutated variant.
func (p *Planner) SetPrompt(prompt string) {
	p.prompt = prompt
}

// SetMaxTasks overrides the decomposition cap.
func (p *Planner) SetMaxTasks(n int) {
	if n > 0 {
		p.maxTasks = n
	}
}

// Initialize splits the goal into tasks, installs them as the root order
// and produces the initial plan.
func (p *Planner) Initialize(ctx context.Context, goal string) (models.PlanResult, error) {
	p.goal = goal
	tasks := SplitGoal(goal, p.maxTasks)
	if len(tasks) == 0 {
		tasks = []string{goal}
	}
	nodes := p.tree.UpdateRootOrder(tasks)

	rationale, err := p.generate(ctx, tasks)
	if err != nil {
		return models.PlanResult{}, fmt.Errorf("generate plan rationale: %w", err)
	}

	result := models.PlanResult{Rationale: rationale}
	for _, node := range nodes {
		result.Tasks = append(result.Tasks, node.Clone())
	}
	if next := p.tree.NextOpenTask(); next != nil {
		clone := next.Clone()
		result.NextTask = &clone
	}
	p.logger.Log("planner: initialized goal %q into %d tasks", goal, len(tasks))
	return result, nil
}

// RefreshPlan re-derives the task list from the tree's current iteration
// order, regenerates the rationale and recomputes the next open task.
func (p *Planner) RefreshPlan(ctx context.Context) (models.PlanResult, error) {
	if p.goal == "" {
		return models.PlanResult{}, ErrNotInitialized
	}

	snapshot := p.tree.Describe()
	descriptions := make([]string, 0, len(snapshot))
	for _, node := range snapshot {
		descriptions = append(descriptions, node.Description)
	}

	rationale, err := p.generate(ctx, descriptions)
	if err != nil {
		return models.PlanResult{}, fmt.Errorf("generate plan rationale: %w", err)
	}

	result := models.PlanResult{Tasks: snapshot, Rationale: rationale}
	if next := p.tree.NextOpenTask(); next != nil {
		clone := next.Clone()
		result.NextTask = &clone
	}
	return result, nil
}

// RecordFeedback is a pure observation hook; it logs the outcome and
// mutates nothing.
func (p *Planner) RecordFeedback(taskID int, status models.TaskStatus, notes string) {
	p.logger.Log("planner: feedback task=%d status=%s notes=%q", taskID, status, notes)
}

// EvaluateAndIterate inspects an outcome and, on failure, appends a fixed
// reminder to the instruction prompt. Repeated failures grow the prompt
// monotonically.
func (p *Planner) EvaluateAndIterate(outcome models.Outcome) {
	if p.goal == "" {
		return
	}
	if outcome.Status == models.TaskStatusFailed {
		p.prompt += failureReminder
	}
}

// generate builds the plan message and normalizes the generator response
// to text. Without a generator the message itself becomes the rationale.
func (p *Planner) generate(ctx context.Context, tasks []string) (string, error) {
	message := fmt.Sprintf("Goal: %s. Tasks: %s.", p.goal, strings.Join(tasks, ", "))
	if p.gen == nil {
		return message, nil
	}
	res, err := p.gen.Generate(ctx, p.prompt+"\n"+message)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}
