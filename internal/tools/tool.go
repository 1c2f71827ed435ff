// Package tools defines the tool capability boundary and the built-in
// tool set: file read/write/list, an offline search stub, and a progress
// recorder. Tools are looked up by name through a registry of explicit
// constructors.
package tools

import (
	"errors"
	"fmt"

	"github.com/afishnamedqwerty/aime/internal/tasktree"
)

// ErrUnknownTool indicates a tool name with no registered constructor.
var ErrUnknownTool = errors.New("unknown tool")

// Context carries the execution context a tool runs under.
type Context struct {
	// Task is the description of the task being worked on.
	Task string
	// Goal is the top-level objective.
	Goal string
	// Checklist is the current checklist snapshot of the task tree.
	Checklist string
}

// Result is the outcome of a successful tool invocation.
type Result struct {
	Content  string
	Metadata map[string]string
}

// Tool is a named capability invoked by a dispatch worker. Run blocks
// until the tool finishes; errors are recoverable and reported to the
// caller rather than aborting the task.
type Tool interface {
	Name() string
	Description() string
	Run(ctx Context, args map[string]string) (Result, error)
}

// Deps carries shared dependencies a tool constructor may need.
type Deps struct {
	// Tree is the task tree, used by tools that record progress.
	Tree *tasktree.Tree
}

// Constructor builds a tool from its bundle configuration.
type Constructor func(cfg map[string]string, deps Deps) (Tool, error)

// builtins maps tool names to their constructors. Bundles reference tools
// by these names.
var builtins = map[string]Constructor{
	"read_file": func(cfg map[string]string, _ Deps) (Tool, error) {
		return &ReadFile{}, nil
	},
	"write_file": func(cfg map[string]string, _ Deps) (Tool, error) {
		return &WriteFile{Root: cfg["root"]}, nil
	},
	"list_dir": func(cfg map[string]string, _ Deps) (Tool, error) {
		return &ListDir{}, nil
	},
	"web_search": func(cfg map[string]string, _ Deps) (Tool, error) {
		return &Search{}, nil
	},
	"update_progress": func(cfg map[string]string, deps Deps) (Tool, error) {
		if deps.Tree == nil {
			return nil, fmt.Errorf("update_progress tool requires a task tree")
		}
		return &Progress{Tree: deps.Tree}, nil
	},
}

// Build constructs the named tool.
func Build(name string, cfg map[string]string, deps Deps) (Tool, error) {
	ctor, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("build tool %q: %w", name, ErrUnknownTool)
	}
	return ctor(cfg, deps)
}

// Known reports whether a tool name has a registered constructor.
func Known(name string) bool {
	_, ok := builtins[name]
	return ok
}
