// Package config handles configuration loading and management for aime.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for aime.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tools     ToolsConfig     `mapstructure:"tools"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	MaxTokens     int    `mapstructure:"max_tokens"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// PlannerConfig holds planning settings.
type PlannerConfig struct {
	// Prompt overrides the built-in planning prompt when set.
	Prompt string `mapstructure:"prompt"`
	// MaxTasks caps how many root tasks a single goal decomposes into.
	MaxTasks int `mapstructure:"max_tasks"`
}

// OptimizerConfig holds prompt optimization settings.
type OptimizerConfig struct {
	WindowSize int    `mapstructure:"window_size"`
	TracePath  string `mapstructure:"trace_path"`
}

// WorkflowConfig holds orchestration loop settings.
type WorkflowConfig struct {
	MaxIterations   int    `mapstructure:"max_iterations"`
	FailOnToolError bool   `mapstructure:"fail_on_tool_error"`
	StopFile        string `mapstructure:"stop_file"`
}

// MonitorConfig holds the progress dashboard settings.
type MonitorConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// LoggingConfig holds debug logging settings.
type LoggingConfig struct {
	DebugLog string `mapstructure:"debug_log"`
}

// ToolsConfig holds tool bundle settings.
type ToolsConfig struct {
	// BundlesFile points at a YAML file of named tool bundles.
	BundlesFile string `mapstructure:"bundles_file"`
	// Workspace is the root directory file tools are confined to.
	Workspace string `mapstructure:"workspace"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, AIME_MODEL)
// 2. Project config (.aime.yaml in current directory or parent)
// 3. User config (~/.config/aime/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "AIME_MODEL")
	v.BindEnv("anthropic.use_aws_bedrock", "AIME_USE_BEDROCK")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("planner.max_tasks", cfg.Planner.MaxTasks)
	v.Set("optimizer.window_size", cfg.Optimizer.WindowSize)
	v.Set("optimizer.trace_path", cfg.Optimizer.TracePath)
	v.Set("workflow.max_iterations", cfg.Workflow.MaxIterations)
	v.Set("workflow.fail_on_tool_error", cfg.Workflow.FailOnToolError)
	v.Set("monitor.addr", cfg.Monitor.Addr)
	v.Set("logging.debug_log", cfg.Logging.DebugLog)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("planner.prompt", "")
	v.SetDefault("planner.max_tasks", 6)

	v.SetDefault("optimizer.window_size", 20)
	v.SetDefault("optimizer.trace_path", "")

	v.SetDefault("workflow.max_iterations", 25)
	v.SetDefault("workflow.fail_on_tool_error", false)
	v.SetDefault("workflow.stop_file", "")

	v.SetDefault("monitor.addr", "127.0.0.1:8787")
	v.SetDefault("monitor.static_dir", "")

	v.SetDefault("logging.debug_log", "")

	v.SetDefault("tools.bundles_file", "")
	v.SetDefault("tools.workspace", ".")
}

// getUserConfigDir returns the XDG config directory for aime.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "aime")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "aime")
	}
	return filepath.Join(home, ".config", "aime")
}

// findProjectConfig searches for .aime.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".aime.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		Planner: PlannerConfig{
			MaxTasks: 6,
		},
		Optimizer: OptimizerConfig{
			WindowSize: 20,
		},
		Workflow: WorkflowConfig{
			MaxIterations: 25,
		},
		Monitor: MonitorConfig{
			Addr: "127.0.0.1:8787",
		},
		Tools: ToolsConfig{
			Workspace: ".",
		},
	}
}
