package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/afishnamedqwerty/aime/internal/state"
	"github.com/afishnamedqwerty/aime/pkg/models"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show archived workflow runs",
	Long: `Display archived workflow runs.

Without arguments, lists the most recent runs. With a run ID, shows that
run's checklist and full execution history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Maximum number of runs to list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	dbPath := state.DefaultDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No archived runs. Run 'aime run <goal>' to start.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open run archive: %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		return displayRun(db, args[0])
	}
	return displayRecentRuns(db)
}

func displayRecentRuns(db *state.DB) error {
	runs, err := db.ListRuns(statusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No archived runs. Run 'aime run <goal>' to start.")
		return nil
	}

	fmt.Println("Recent runs:")
	for _, run := range runs {
		marker := color.YellowString("…")
		if run.Completed {
			marker = color.GreenString("✓")
		}
		fmt.Printf("  %s %s  %s (%s ago)\n", marker, run.ID, run.Goal, formatDuration(time.Since(run.CreatedAt)))
	}
	return nil
}

func displayRun(db *state.DB, id string) error {
	run, err := db.GetRun(id)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no archived run with ID %s", id)
	}

	fmt.Printf("Run: %s\n", run.ID)
	fmt.Printf("  Goal: %s\n", run.Goal)
	fmt.Printf("  Started: %s ago\n", formatDuration(time.Since(run.CreatedAt)))
	if run.Completed {
		fmt.Printf("  Status: %s\n", color.GreenString("completed"))
	} else {
		fmt.Printf("  Status: %s\n", color.YellowString("incomplete"))
	}
	if run.Rationale != "" {
		fmt.Printf("  Rationale: %s\n", run.Rationale)
	}

	if run.Checklist != "" {
		fmt.Println()
		fmt.Println(run.Checklist)
	}

	events, err := db.RunEvents(id)
	if err != nil {
		return fmt.Errorf("load run events: %w", err)
	}
	if len(events) > 0 {
		fmt.Println("\nHistory:")
		for _, ev := range events {
			symbol := color.YellowString("-")
			switch ev.Status {
			case models.TaskStatusComplete:
				symbol = color.GreenString("✓")
			case models.TaskStatusFailed:
				symbol = color.RedString("✗")
			}
			fmt.Printf("  %s [%d] %s\n", symbol, ev.TaskID, eventLabel(ev))
			if ev.Task != "" && ev.Notes != "" {
				fmt.Printf("      %s\n", ev.Notes)
			}
		}
	}
	return nil
}

// eventLabel returns the text shown next to a history event. Events
// recorded at task completion carry only the task ID and notes, so the
// notes stand in when the description is missing.
func eventLabel(ev models.HistoryEvent) string {
	if ev.Task != "" {
		return ev.Task
	}
	return ev.Notes
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
