package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/afishnamedqwerty/aime/pkg/models"
)

var (
	runLocal           bool
	runModel           string
	runMaxIterations   int
	runTracePath       string
	runStopFile        string
	runBundlesFile     string
	runFailOnToolError bool
	runNoArchive       bool
)

var runCmd = &cobra.Command{
	Use:   "run <goal>",
	Short: "Decompose a goal and execute it to completion",
	Long: `Run a goal through the adaptive workflow.

The goal is split into ordered tasks, each executed by an ephemeral
worker that selects at most one tool. After every task the plan is
refreshed and the outcome feeds the online prompt optimizer; when the
recent success rate degrades, the planning prompt is mutated and the
mutation is recorded in the trace log for future runs.

Use --viz to serve a live JSON dashboard while the run progresses, and
'aime watch' from another terminal to follow it.

A stop file (--stop-file) interrupts the run between tasks without
killing the process; progress up to that point is still archived.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGoal,
}

func init() {
	runCmd.Flags().BoolVar(&runLocal, "local", false, "Use the offline echo model instead of the Anthropic API")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model to use (overrides config)")
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Iteration cap for the run (overrides config)")
	runCmd.Flags().StringVar(&runTracePath, "trace", "", "Optimizer trace log path (overrides config)")
	runCmd.Flags().StringVar(&runStopFile, "stop-file", "", "Stop file path; creating it winds the run down")
	runCmd.Flags().StringVar(&runBundlesFile, "bundles", "", "Tool bundles YAML file (overrides config)")
	runCmd.Flags().BoolVar(&runFailOnToolError, "fail-on-tool-error", false, "Mark tasks Failed when their tool errors")
	runCmd.Flags().BoolVar(&runNoArchive, "no-archive", false, "Skip archiving the finished run")
}

func runGoal(cmd *cobra.Command, args []string) error {
	goal := strings.Join(args, " ")

	eng, err := buildEngine(engineOptions{
		local:           runLocal,
		model:           runModel,
		maxIterations:   runMaxIterations,
		tracePath:       runTracePath,
		stopFile:        runStopFile,
		failOnToolError: runFailOnToolError,
		bundlesFile:     runBundlesFile,
		noArchive:       runNoArchive,
		viz:             rootViz,
		vizAddr:         rootVizAddr,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		cancel()
	}()

	fmt.Printf("Goal: %s\n\n", goal)

	report, err := eng.orch.Run(ctx, goal)
	if err != nil {
		return fmt.Errorf("workflow failed: %w", err)
	}

	printReport(report, eng.tree.ToText())

	if id := eng.orch.RunID(); id != "" {
		fmt.Printf("\nArchived as run %s\n", id)
	}
	return nil
}

// printReport renders the final checklist and outcome summary.
func printReport(report models.WorkflowReport, checklist string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Println(checklist)
	fmt.Println()

	for _, task := range report.Tasks {
		switch task.Status {
		case models.TaskStatusComplete:
			green.Printf("  ✓ %s\n", task.Description)
		case models.TaskStatusFailed:
			red.Printf("  ✗ %s\n", task.Description)
		default:
			yellow.Printf("  - %s (%s)\n", task.Description, task.Status)
		}
		if notes := task.Metadata["notes"]; notes != "" {
			fmt.Printf("      %s\n", notes)
		}
	}

	fmt.Println()
	if report.Completed {
		green.Println("Goal completed.")
	} else {
		yellow.Println("Goal incomplete; run again or raise --max-iterations.")
	}
}
