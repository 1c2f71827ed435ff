// Package dispatch executes exactly one task per worker. A worker selects
// at most one tool through an ordered chain of predicate-to-tool bindings
// evaluated in fixed priority, records a step trace, and drives the task
// to a terminal status.
package dispatch

import (
	"strings"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/internal/tasktree"
	"github.com/afishnamedqwerty/aime/internal/tools"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

// Worker executes a single task with a fixed tool set.
type Worker struct {
	name            string
	tools           map[string]tools.Tool
	tree            *tasktree.Tree
	failOnToolError bool
	logger          *logging.DebugLogger
}

// NewWorker creates a worker with an explicit tool set. Most callers go
// through a Factory instead.
func NewWorker(name string, toolset map[string]tools.Tool, tree *tasktree.Tree, logger *logging.DebugLogger) *Worker {
	return &Worker{name: name, tools: toolset, tree: tree, logger: logger}
}

// SetFailOnToolError switches the worker from the default "dispatch always
// succeeds" policy to surfacing tool errors as a Failed task status.
func (w *Worker) SetFailOnToolError(v bool) {
	w.failOnToolError = v
}

// Name returns the worker name.
func (w *Worker) Name() string {
	return w.name
}

// binding pairs a selection predicate with a tool name and its argument
// builder. Bindings are evaluated in order; the first match wins.
type binding struct {
	tool  string
	match func(desc string, meta map[string]string) bool
	args  func(desc string, meta map[string]string) map[string]string
}

var ruleChain = []binding{
	{
		tool: "write_file",
		match: func(desc string, meta map[string]string) bool {
			return containsAny(desc, "write", "draft", "document") &&
				hasKey(meta, "path") && hasKey(meta, "content")
		},
		args: func(_ string, meta map[string]string) map[string]string {
			return map[string]string{"path": meta["path"], "content": meta["content"]}
		},
	},
	{
		tool: "read_file",
		match: func(desc string, meta map[string]string) bool {
			return strings.Contains(desc, "read") && hasKey(meta, "path")
		},
		args: func(_ string, meta map[string]string) map[string]string {
			return map[string]string{"path": meta["path"]}
		},
	},
	{
		tool: "list_dir",
		match: func(desc string, meta map[string]string) bool {
			return containsAny(desc, "list", "directory", "files")
		},
		args: func(_ string, meta map[string]string) map[string]string {
			path := meta["path"]
			if path == "" {
				path = "."
			}
			return map[string]string{"path": path}
		},
	},
	{
		tool: "web_search",
		match: func(_ string, _ map[string]string) bool {
			return true
		},
		args: func(desc string, _ map[string]string) map[string]string {
			return map[string]string{"query": desc}
		},
	},
}

// Execute runs the task to a terminal status and returns the outcome with
// its ordered step trace. Tool errors are downgraded to observation text;
// under the default policy the task always ends Complete.
func (w *Worker) Execute(task models.TaskNode, goal string) models.Outcome {
	if err := w.tree.MarkInProgress(task.ID); err != nil {
		w.logger.Log("dispatch: %s: %v", w.name, err)
	}

	execCtx := tools.Context{
		Task:      task.Description,
		Goal:      goal,
		Checklist: w.tree.ToText(),
	}

	var steps []models.StepTrace
	var summary string
	var toolErr error

	if tool, args, ok := w.selectTool(task); ok {
		observation := ""
		result, err := tool.Run(execCtx, args)
		if err != nil {
			observation = "Tool " + tool.Name() + " failed: " + err.Error()
			toolErr = err
			w.logger.Log("dispatch: %s: tool %s failed: %v", w.name, tool.Name(), err)
		} else {
			observation = result.Content
		}
		summary = observation
		steps = append(steps, models.StepTrace{
			Thought:     "Use " + tool.Name() + " tool to progress the task.",
			Action:      tool.Name(),
			Observation: observation,
		})
	}

	finalResult := summary
	if finalResult == "" {
		finalResult = "Completed task '" + task.Description + "' without external tools."
	}
	steps = append(steps, models.StepTrace{
		Thought:     "Summarise the outcome and finalise the task.",
		Action:      "finish",
		Observation: finalResult,
	})

	status := models.TaskStatusComplete
	if w.failOnToolError && toolErr != nil {
		status = models.TaskStatusFailed
		if err := w.tree.MarkFailed(task.ID, finalResult); err != nil {
			w.logger.Log("dispatch: %s: %v", w.name, err)
		}
	} else {
		if err := w.tree.MarkComplete(task.ID, finalResult); err != nil {
			w.logger.Log("dispatch: %s: %v", w.name, err)
		}
	}

	return models.Outcome{
		TaskID: task.ID,
		Status: status,
		Result: finalResult,
		Steps:  steps,
	}
}

// selectTool walks the rule chain and returns the first binding whose
// predicate matches and whose tool is registered with this worker.
func (w *Worker) selectTool(task models.TaskNode) (tools.Tool, map[string]string, bool) {
	desc := strings.ToLower(task.Description)
	meta := task.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	for _, b := range ruleChain {
		tool, registered := w.tools[b.tool]
		if !registered {
			continue
		}
		if b.match(desc, meta) {
			return tool, b.args(task.Description, meta), true
		}
	}
	return nil, nil, false
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func hasKey(m map[string]string, key string) bool {
	_, ok := m[key]
	return ok
}
