package main

import (
	"testing"

	"github.com/afishnamedqwerty/aime/internal/config"
)

func TestSetConfigValue(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "planner.max_tasks", "4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Planner.MaxTasks != 4 {
		t.Errorf("expected max_tasks 4, got %d", cfg.Planner.MaxTasks)
	}

	if err := setConfigValue(cfg, "workflow.fail_on_tool_error", "true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Workflow.FailOnToolError {
		t.Error("expected fail_on_tool_error to be true")
	}

	if err := setConfigValue(cfg, "anthropic.model", "claude-test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Anthropic.Model != "claude-test" {
		t.Errorf("expected model 'claude-test', got %q", cfg.Anthropic.Model)
	}
}

func TestSetConfigValueInvalid(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "planner.max_tasks", "many"); err == nil {
		t.Error("expected error for non-numeric max_tasks")
	}
	if err := setConfigValue(cfg, "unknown.key", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()

	value, err := getConfigValue(cfg, "workflow.max_iterations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "25" {
		t.Errorf("expected '25', got %q", value)
	}

	value, err = getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "(not set)" {
		t.Errorf("expected '(not set)', got %q", value)
	}

	if _, err := getConfigValue(cfg, "nope"); err == nil {
		t.Error("expected error for unknown key")
	}
}
