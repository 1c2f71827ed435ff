package dispatch

import (
	"fmt"

	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/internal/tasktree"
	"github.com/afishnamedqwerty/aime/internal/tools"
)

// Factory builds ephemeral per-task workers from named tool bundles.
type Factory struct {
	bundles         map[string]tools.Bundle
	tree            *tasktree.Tree
	failOnToolError bool
	logger          *logging.DebugLogger
}

// NewFactory creates a worker factory. When bundles is nil the built-in
// default bundle is used.
func NewFactory(bundles map[string]tools.Bundle, tree *tasktree.Tree, logger *logging.DebugLogger) *Factory {
	if bundles == nil {
		def := tools.DefaultBundle()
		bundles = map[string]tools.Bundle{def.Name: def}
	}
	return &Factory{bundles: bundles, tree: tree, logger: logger}
}

// SetFailOnToolError switches workers built by this factory to surface
// tool errors as Failed task statuses.
func (f *Factory) SetFailOnToolError(v bool) {
	f.failOnToolError = v
}

// NewWorker instantiates a worker equipped with the "default" bundle plus
// any extra bundles named.
func (f *Factory) NewWorker(name string, extraBundles ...string) (*Worker, error) {
	bundleNames := append([]string{"default"}, extraBundles...)

	toolset := make(map[string]tools.Tool)
	for _, bundleName := range bundleNames {
		bundle, ok := f.bundles[bundleName]
		if !ok {
			continue
		}
		for _, spec := range bundle.Tools {
			tool, err := tools.Build(spec.Name, spec.Config, tools.Deps{Tree: f.tree})
			if err != nil {
				return nil, fmt.Errorf("bundle %s: %w", bundleName, err)
			}
			toolset[spec.Name] = tool
		}
	}

	w := NewWorker(name, toolset, f.tree, f.logger)
	w.failOnToolError = f.failOnToolError
	return w, nil
}
