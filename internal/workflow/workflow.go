// Package workflow runs the adaptive plan-dispatch-optimize loop for a
// single goal. Each iteration takes the next open task, executes it with
// a fresh worker, feeds the outcome back to the planner and optimizer,
// and republishes progress.
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/afishnamedqwerty/aime/internal/dispatch"
	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/internal/monitor"
	"github.com/afishnamedqwerty/aime/internal/optimizer"
	"github.com/afishnamedqwerty/aime/internal/planner"
	"github.com/afishnamedqwerty/aime/internal/state"
	"github.com/afishnamedqwerty/aime/internal/tasktree"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// DefaultMaxIterations bounds the orchestration loop so a plan that never
// converges still terminates.
const DefaultMaxIterations = 25

// Publisher receives progress snapshots. Publish failures are reported to
// the caller but never abort a run.
type Publisher interface {
	Publish(snapshot monitor.Snapshot) error
}

// Options configures an orchestrator run.
type Options struct {
	MaxIterations int
	// Monitor, Archive and Stop are all optional.
	Monitor Publisher
	Archive *state.DB
	Stop    *StopWatcher
	Logger  *logging.DebugLogger
}

// Orchestrator wires the planner, worker factory and optimizer around a
// shared task tree.
type Orchestrator struct {
	tree    *tasktree.Tree
	planner *planner.Planner
	factory *dispatch.Factory
	opt     *optimizer.Optimizer

	maxIterations int
	monitor       Publisher
	archive       *state.DB
	stop          *StopWatcher
	logger        *logging.DebugLogger

	runID string
}

// New creates an orchestrator over the given components.
func New(tree *tasktree.Tree, pl *planner.Planner, factory *dispatch.Factory, opt *optimizer.Optimizer, opts Options) *Orchestrator {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		tree:          tree,
		planner:       pl,
		factory:       factory,
		opt:           opt,
		maxIterations: maxIterations,
		monitor:       opts.Monitor,
		archive:       opts.Archive,
		stop:          opts.Stop,
		logger:        opts.Logger,
	}
}

// RunID returns the archive ID of the last completed run, or "" when
// archiving is disabled.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run decomposes the goal and drives it to completion or to the iteration
// cap. Hitting the cap or a stop signal is not an error; the report's
// Completed field says whether the goal finished.
func (o *Orchestrator) Run(ctx context.Context, goal string) (models.WorkflowReport, error) {
	// Seed the planner with the best known prompt before planning.
	o.planner.SetPrompt(o.opt.CurrentPrompt(o.planner.Prompt()))

	plan, err := o.planner.Initialize(ctx, goal)
	if err != nil {
		return models.WorkflowReport{}, fmt.Errorf("initialize plan: %w", err)
	}
	o.publish(plan.Rationale)

	for iteration := 0; iteration < o.maxIterations; iteration++ {
		if ctx.Err() != nil {
			o.logger.Log("workflow: context cancelled after %d iterations", iteration)
			break
		}
		if o.stop.ShouldStop() {
			o.logger.Log("workflow: stop signal received after %d iterations", iteration)
			break
		}

		next := o.tree.NextOpenTask()
		if next == nil {
			break
		}

		worker, err := o.factory.NewWorker(fmt.Sprintf("worker-%d", next.ID))
		if err != nil {
			return models.WorkflowReport{}, fmt.Errorf("build worker for task %d: %w", next.ID, err)
		}

		outcome := worker.Execute(*next, goal)

		o.planner.RecordFeedback(outcome.TaskID, outcome.Status, outcome.Result)
		o.planner.EvaluateAndIterate(outcome)

		newPrompt, mutated, err := o.opt.Record(o.planner.Prompt(), outcome)
		if err != nil {
			o.logger.Log("workflow: optimizer record failed: %v", err)
		}
		if mutated {
			o.planner.SetPrompt(newPrompt)
			o.logger.Log("workflow: adopted mutated prompt after task %d", outcome.TaskID)
		}

		plan, err = o.planner.RefreshPlan(ctx)
		if err != nil {
			return models.WorkflowReport{}, fmt.Errorf("refresh plan: %w", err)
		}
		o.publish(plan.Rationale)

		if o.tree.IsGoalComplete() {
			break
		}
	}

	report := models.WorkflowReport{
		Goal:      goal,
		Completed: o.tree.IsGoalComplete(),
		Tasks:     o.tree.Describe(),
		History:   o.tree.History(),
		Rationale: plan.Rationale,
	}

	if o.archive != nil {
		id := uuid.NewString()
		if err := o.archive.SaveRun(id, report, o.tree.ToText()); err != nil {
			o.logger.Log("workflow: archive run failed: %v", err)
		} else {
			o.runID = id
		}
	}

	return report, nil
}

// publish sends the current progress snapshot. Publish errors are logged
// and swallowed so monitoring never disturbs the run.
func (o *Orchestrator) publish(rationale string) {
	if o.monitor == nil {
		return
	}
	snapshot := monitor.Snapshot{
		Tasks:     o.tree.Describe(),
		History:   o.tree.History(),
		Optimizer: o.opt.Metrics(),
		Checklist: o.tree.ToText(),
		Rationale: rationale,
	}
	if err := o.monitor.Publish(snapshot); err != nil {
		o.logger.Log("workflow: publish snapshot failed: %v", err)
	}
}
