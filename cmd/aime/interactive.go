package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/afishnamedqwerty/aime/internal/config"
	"github.com/afishnamedqwerty/aime/internal/llm"
)

// runInteractive starts a read-eval loop. Plain lines chat with the
// generation model; /goal submits a goal to the full workflow.
func runInteractive() error {
	fmt.Println("aime interactive session")
	fmt.Println("Type to chat with the model.")
	fmt.Println("Commands: /goal <text>  /status  /local  /exit")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	local := false
	gen, err := buildGenerator(cfg, engineOptions{})
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/exit" || line == "/quit":
			return nil
		case line == "/local":
			local = !local
			fmt.Printf("Local echo model: %v\n", local)
			if local {
				gen = llm.NewLocal("")
			} else {
				gen, err = buildGenerator(cfg, engineOptions{})
				if err != nil {
					color.Red("Error: %v", err)
					gen = llm.NewLocal("")
				}
			}
			continue
		case line == "/status":
			if err := statusCmd.RunE(statusCmd, nil); err != nil {
				color.Red("Error: %v", err)
			}
			continue
		case strings.HasPrefix(line, "/goal "):
			goal := strings.TrimSpace(strings.TrimPrefix(line, "/goal "))
			if goal == "" {
				color.Yellow("Usage: /goal <text>")
				continue
			}
			if err := runInteractiveGoal(ctx, goal, local); err != nil {
				color.Red("Error: %v", err)
			}
			continue
		case strings.HasPrefix(line, "/"):
			color.Yellow("Unknown command %q", line)
			continue
		}

		res, err := gen.Generate(ctx, line)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		fmt.Println(res.Text())
	}

	return scanner.Err()
}

func runInteractiveGoal(ctx context.Context, goal string, local bool) error {
	eng, err := buildEngine(engineOptions{
		local:   local,
		viz:     rootViz,
		vizAddr: rootVizAddr,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	report, err := eng.orch.Run(ctx, goal)
	if err != nil {
		return err
	}

	printReport(report, eng.tree.ToText())
	return nil
}
