package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Anthropic.MaxTokens != 1024 {
		t.Errorf("expected default max_tokens 1024, got %d", cfg.Anthropic.MaxTokens)
	}

	if cfg.Planner.MaxTasks != 6 {
		t.Errorf("expected default max_tasks 6, got %d", cfg.Planner.MaxTasks)
	}

	if cfg.Optimizer.WindowSize != 20 {
		t.Errorf("expected default window_size 20, got %d", cfg.Optimizer.WindowSize)
	}

	if cfg.Workflow.MaxIterations != 25 {
		t.Errorf("expected default max_iterations 25, got %d", cfg.Workflow.MaxIterations)
	}

	if cfg.Monitor.Addr != "127.0.0.1:8787" {
		t.Errorf("expected default monitor addr '127.0.0.1:8787', got %q", cfg.Monitor.Addr)
	}

	if cfg.Tools.Workspace != "." {
		t.Errorf("expected default workspace '.', got %q", cfg.Tools.Workspace)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
  model: claude-test
  max_tokens: 2048
planner:
  max_tasks: 4
optimizer:
  window_size: 10
  trace_path: /tmp/trace.jsonl
workflow:
  max_iterations: 12
  fail_on_tool_error: true
monitor:
  addr: 127.0.0.1:9999
logging:
  debug_log: /tmp/aime.log
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}

	if cfg.Anthropic.Model != "claude-test" {
		t.Errorf("expected model 'claude-test', got %q", cfg.Anthropic.Model)
	}

	if cfg.Anthropic.MaxTokens != 2048 {
		t.Errorf("expected max_tokens 2048, got %d", cfg.Anthropic.MaxTokens)
	}

	if cfg.Planner.MaxTasks != 4 {
		t.Errorf("expected max_tasks 4, got %d", cfg.Planner.MaxTasks)
	}

	if cfg.Optimizer.WindowSize != 10 {
		t.Errorf("expected window_size 10, got %d", cfg.Optimizer.WindowSize)
	}

	if cfg.Workflow.MaxIterations != 12 {
		t.Errorf("expected max_iterations 12, got %d", cfg.Workflow.MaxIterations)
	}

	if !cfg.Workflow.FailOnToolError {
		t.Error("expected fail_on_tool_error to be true")
	}

	if cfg.Monitor.Addr != "127.0.0.1:9999" {
		t.Errorf("expected monitor addr '127.0.0.1:9999', got %q", cfg.Monitor.Addr)
	}

	// Unset keys keep their defaults.
	if cfg.Workflow.StopFile != "" {
		t.Errorf("expected empty stop_file, got %q", cfg.Workflow.StopFile)
	}
}

func TestExpandEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestLoadEnvBindings(t *testing.T) {
	// Isolate from any real user or project config.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	t.Setenv("AIME_MODEL", "env-model")
	t.Setenv("AIME_USE_BEDROCK", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Anthropic.Model != "env-model" {
		t.Errorf("expected model from environment, got %q", cfg.Anthropic.Model)
	}
	if !cfg.Anthropic.UseAWSBedrock {
		t.Error("expected AIME_USE_BEDROCK to enable Bedrock")
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/aime"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestLoadBundlesDefault(t *testing.T) {
	bundles, err := LoadBundles("")
	if err != nil {
		t.Fatalf("LoadBundles failed: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("expected 1 bundle, got %d", len(bundles))
	}
	if bundles[0].Name != "default" {
		t.Errorf("expected default bundle, got %q", bundles[0].Name)
	}
	if len(bundles[0].Tools) == 0 {
		t.Error("expected default bundle to contain tools")
	}
}

func TestLoadBundlesMissingFile(t *testing.T) {
	bundles, err := LoadBundles(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadBundles failed: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != "default" {
		t.Errorf("expected default bundle fallback, got %+v", bundles)
	}
}

func TestLoadBundlesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bundles.yaml")

	content := `
bundles:
  - name: research
    tools:
      - name: web_search
      - name: read_file
  - name: writing
    tools:
      - name: write_file
        config:
          root: ./out
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write bundles file: %v", err)
	}

	bundles, err := LoadBundles(path)
	if err != nil {
		t.Fatalf("LoadBundles failed: %v", err)
	}

	// Default bundle is prepended when the file does not define one.
	if len(bundles) != 3 {
		t.Fatalf("expected 3 bundles, got %d", len(bundles))
	}
	if bundles[0].Name != "default" {
		t.Errorf("expected first bundle 'default', got %q", bundles[0].Name)
	}
	if bundles[1].Name != "research" || len(bundles[1].Tools) != 2 {
		t.Errorf("unexpected research bundle: %+v", bundles[1])
	}
	if bundles[2].Tools[0].Config["root"] != "./out" {
		t.Errorf("expected write_file root './out', got %q", bundles[2].Tools[0].Config["root"])
	}
}

func TestLoadBundlesMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundles.yaml")
	if err := os.WriteFile(path, []byte("bundles: [not: valid"), 0644); err != nil {
		t.Fatalf("failed to write bundles file: %v", err)
	}

	if _, err := LoadBundles(path); err == nil {
		t.Error("expected error for malformed bundles file")
	}
}
