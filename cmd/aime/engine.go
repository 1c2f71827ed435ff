package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/afishnamedqwerty/aime/internal/config"
	"github.com/afishnamedqwerty/aime/internal/dispatch"
	"github.com/afishnamedqwerty/aime/internal/llm"
	"github.com/afishnamedqwerty/aime/internal/logging"
	"github.com/afishnamedqwerty/aime/internal/monitor"
	"github.com/afishnamedqwerty/aime/internal/optimizer"
	"github.com/afishnamedqwerty/aime/internal/planner"
	"github.com/afishnamedqwerty/aime/internal/state"
	"github.com/afishnamedqwerty/aime/internal/tasktree"
	"github.com/afishnamedqwerty/aime/internal/tools"
	"github.com/afishnamedqwerty/aime/internal/workflow"
)

// engineOptions collects the flag-level overrides applied on top of the
// loaded configuration.
type engineOptions struct {
	local           bool
	model           string
	maxIterations   int
	tracePath       string
	stopFile        string
	failOnToolError bool
	bundlesFile     string
	noArchive       bool
	viz             bool
	vizAddr         string
}

// engine is one fully wired run environment.
type engine struct {
	cfg     *config.Config
	logger  *logging.DebugLogger
	tree    *tasktree.Tree
	orch    *workflow.Orchestrator
	monitor *monitor.State
	server  *monitor.Server
	stop    *workflow.StopWatcher
	archive *state.DB
}

// buildEngine assembles the task tree, planner, worker factory, optimizer
// and orchestrator from configuration plus flag overrides.
func buildEngine(opts engineOptions) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.DebugLog)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}

	gen, err := buildGenerator(cfg, opts)
	if err != nil {
		logger.Close()
		return nil, err
	}

	tree := tasktree.New(logger)

	pl := planner.New(gen, tree, cfg.Planner.Prompt, logger)
	pl.SetMaxTasks(cfg.Planner.MaxTasks)

	bundlesFile := cfg.Tools.BundlesFile
	if opts.bundlesFile != "" {
		bundlesFile = opts.bundlesFile
	}
	bundleList, err := config.LoadBundles(bundlesFile)
	if err != nil {
		logger.Close()
		return nil, err
	}
	bundles := make(map[string]tools.Bundle, len(bundleList))
	for _, b := range bundleList {
		bundles[b.Name] = b
	}

	factory := dispatch.NewFactory(bundles, tree, logger)
	if opts.failOnToolError || cfg.Workflow.FailOnToolError {
		factory.SetFailOnToolError(true)
	}

	tracePath := cfg.Optimizer.TracePath
	if opts.tracePath != "" {
		tracePath = opts.tracePath
	}
	opt, err := optimizer.New(optimizer.Config{
		WindowSize: cfg.Optimizer.WindowSize,
		TracePath:  tracePath,
		Logger:     logger,
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("create optimizer: %w", err)
	}

	eng := &engine{cfg: cfg, logger: logger, tree: tree}

	eng.monitor = monitor.NewState()
	if opts.viz {
		addr := cfg.Monitor.Addr
		if opts.vizAddr != "" {
			addr = opts.vizAddr
		}
		server := monitor.NewServer(eng.monitor, cfg.Monitor.StaticDir, logger)
		if err := server.Start(addr); err != nil {
			eng.Close()
			return nil, err
		}
		eng.server = server
		fmt.Printf("Dashboard: http://%s/api/state\n", server.Addr())
	}

	if !opts.noArchive {
		db, err := state.Open(state.DefaultDBPath())
		if err != nil {
			// Archiving is optional, keep running without it
			fmt.Fprintf(os.Stderr, "Warning: run archive unavailable: %v\n", err)
		} else {
			eng.archive = db
		}
	}

	stopFile := cfg.Workflow.StopFile
	if opts.stopFile != "" {
		stopFile = opts.stopFile
	}
	if stopFile != "" {
		sw, err := workflow.NewStopWatcher(stopFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: stop watcher unavailable: %v\n", err)
		} else {
			eng.stop = sw
		}
	}

	maxIterations := cfg.Workflow.MaxIterations
	if opts.maxIterations > 0 {
		maxIterations = opts.maxIterations
	}

	eng.orch = workflow.New(tree, pl, factory, opt, workflow.Options{
		MaxIterations: maxIterations,
		Monitor:       eng.monitor,
		Archive:       eng.archive,
		Stop:          eng.stop,
		Logger:        logger,
	})

	return eng, nil
}

// buildGenerator selects the generation backend. --local forces the echo
// model; otherwise the Anthropic API is used when a key or Bedrock is
// configured, falling back to the echo model when neither is available.
func buildGenerator(cfg *config.Config, opts engineOptions) (llm.Generator, error) {
	if opts.local {
		return llm.NewLocal(opts.model), nil
	}

	model := cfg.Anthropic.Model
	if opts.model != "" {
		model = opts.model
	}

	_, keyErr := config.GetAPIKey(cfg)
	if keyErr != nil && !cfg.Anthropic.UseAWSBedrock {
		fmt.Fprintln(os.Stderr, "Warning: no Anthropic API key configured, using the local echo model")
		return llm.NewLocal(model), nil
	}

	apiKey, _ := config.GetAPIKey(cfg)
	gen, err := llm.NewAnthropic(llm.AnthropicConfig{
		Model:         anthropic.Model(model),
		APIKey:        apiKey,
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create Anthropic client: %w", err)
	}
	return gen, nil
}

// Close releases every resource the engine holds.
func (e *engine) Close() {
	if e.server != nil {
		e.server.Stop(context.Background())
	}
	if e.stop != nil {
		e.stop.Close()
	}
	if e.archive != nil {
		e.archive.Close()
	}
	if e.logger != nil {
		e.logger.Close()
	}
}
