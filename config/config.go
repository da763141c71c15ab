// Package config loads agent configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raspverry/manus-like-agent/agentloop"
)

// Config is the full agent configuration.
type Config struct {
	System SystemConfig `yaml:"system"`
	LLM    LLMConfig    `yaml:"llm"`
	Loop   LoopConfig   `yaml:"agent_loop"`
	Tools  ToolsConfig  `yaml:"tools"`
	Memory MemoryConfig `yaml:"memory"`
}

// SystemConfig holds process-wide settings.
type SystemConfig struct {
	Name         string `yaml:"name"`
	WorkspaceDir string `yaml:"workspace_dir"`
	LogLevel     string `yaml:"log_level"`
}

// LLMConfig holds model-backend settings.
type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"api_key"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	PlanTemperature float64 `yaml:"plan_temperature"`
	PlanMaxTokens   int     `yaml:"plan_max_tokens"`
}

// LoopConfig holds the controller budgets and cadences.
type LoopConfig struct {
	MaxIterations       int    `yaml:"max_iterations"`
	MaxTimeSeconds      int    `yaml:"max_time_seconds"`
	DispatchTimeoutSecs int    `yaml:"dispatch_timeout_seconds"`
	SummarizeEvery      int    `yaml:"summarize_every"`
	KeepTailEvents      int    `yaml:"keep_tail_events"`
	SummaryCharBudget   int    `yaml:"summary_char_budget"`
	LoopDetectionWindow int    `yaml:"loop_detection_window"`
	ChecklistFile       string `yaml:"checklist_file"`
	ChecklistTitle      string `yaml:"checklist_title"`
	WorkerPoolSize      int    `yaml:"worker_pool_size"`
}

// ToolsConfig holds capability settings.
type ToolsConfig struct {
	ShellMaxOutputChars int      `yaml:"shell_max_output_chars"`
	BlockedCommands     []string `yaml:"blocked_commands"`
	AllowedPorts        []int    `yaml:"allowed_ports"`
	SearchMaxResults    int      `yaml:"search_max_results"`
}

// MemoryConfig holds memory collaborator settings.
type MemoryConfig struct {
	JournalFile string `yaml:"journal_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		System: SystemConfig{
			Name:         "manus-like-agent",
			WorkspaceDir: "workspace",
			LogLevel:     "info",
		},
		LLM: LLMConfig{
			Provider:        "openai",
			Model:           "gpt-4o",
			Temperature:     0.7,
			MaxTokens:       4096,
			PlanTemperature: 0.3,
			PlanMaxTokens:   2048,
		},
		Loop: LoopConfig{
			MaxIterations:       40,
			MaxTimeSeconds:      1800,
			DispatchTimeoutSecs: 120,
			SummarizeEvery:      10,
			KeepTailEvents:      10,
			SummaryCharBudget:   2000,
			LoopDetectionWindow: 6,
			ChecklistFile:       "todo.md",
			ChecklistTitle:      "Task Checklist",
			WorkerPoolSize:      8,
		},
		Tools: ToolsConfig{
			ShellMaxOutputChars: 15000,
			BlockedCommands:     []string{"rm -rf /", "shutdown", "reboot", "passwd"},
			AllowedPorts:        []int{3000, 5000, 8000, 8080},
			SearchMaxResults:    5,
		},
		Memory: MemoryConfig{
			JournalFile: "journal.db",
		},
	}
}

// Load reads path and applies environment overrides on top of defaults. A
// missing file is not an error; defaults plus the environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env overrides
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("AGENT_WORKSPACE_DIR"); v != "" {
		c.System.WorkspaceDir = v
	}
	if v := os.Getenv("AGENT_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Loop.MaxIterations = n
		}
	}
	if v := os.Getenv("AGENT_LOG_LEVEL"); v != "" {
		c.System.LogLevel = v
	}
}

// ControllerConfig maps the loaded settings onto the loop controller's
// configuration. Run-scoped files live under the workspace directory.
func (c Config) ControllerConfig() agentloop.Config {
	return agentloop.Config{
		MaxIterations:       c.Loop.MaxIterations,
		MaxWallClock:        time.Duration(c.Loop.MaxTimeSeconds) * time.Second,
		DispatchTimeout:     time.Duration(c.Loop.DispatchTimeoutSecs) * time.Second,
		SummarizeEvery:      c.Loop.SummarizeEvery,
		KeepTailEvents:      c.Loop.KeepTailEvents,
		SummaryCharBudget:   c.Loop.SummaryCharBudget,
		SummaryMaxTokens:    1024,
		ChecklistPath:       filepath.Join(c.System.WorkspaceDir, c.Loop.ChecklistFile),
		ChecklistTitle:      c.Loop.ChecklistTitle,
		LoopDetectionWindow: c.Loop.LoopDetectionWindow,
		Temperature:         c.LLM.Temperature,
		MaxTokens:           c.LLM.MaxTokens,
		PlanTemperature:     c.LLM.PlanTemperature,
		PlanMaxTokens:       c.LLM.PlanMaxTokens,
	}
}

// JournalPath returns the absolute journal location under the workspace.
func (c Config) JournalPath() string {
	return filepath.Join(c.System.WorkspaceDir, c.Memory.JournalFile)
}
