package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	rootViz     bool
	rootVizAddr string
)

var rootCmd = &cobra.Command{
	Use:   "aime",
	Short: "Adaptive goal decomposition and execution engine",
	Long: `aime decomposes a natural-language goal into a tracked task tree,
dispatches each task to an ephemeral tool-equipped worker, and tunes its
planning prompt online from execution feedback.

With no arguments, launches an interactive session where you can submit
goals and watch the checklist evolve.

Core capabilities:
- Splits goals into ordered, trackable tasks
- Routes tasks to tools through keyword dispatch
- Maintains a live markdown checklist of progress
- Mutates the planning prompt when recent outcomes degrade
- Archives finished runs for later inspection`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootViz, "viz", false, "Serve the progress dashboard while running")
	rootCmd.PersistentFlags().StringVar(&rootVizAddr, "viz-addr", "", "Dashboard listen address (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
