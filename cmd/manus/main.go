// Command manus runs the autonomous agent loop from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/agentloop"
	"github.com/raspverry/manus-like-agent/config"
	"github.com/raspverry/manus-like-agent/llm"
	"github.com/raspverry/manus-like-agent/logging"
	"github.com/raspverry/manus-like-agent/memory"
	"github.com/raspverry/manus-like-agent/tools"
)

func main() {
	var (
		configPath    string
		workspaceDir  string
		maxIterations int
	)

	root := &cobra.Command{
		Use:   "manus \"<goal>\"",
		Short: "Run an autonomous agent toward a natural-language goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.Join(args, " ")
			return run(goal, configPath, workspaceDir, maxIterations)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	root.Flags().StringVarP(&workspaceDir, "workspace", "w", "", "override the workspace directory")
	root.Flags().IntVar(&maxIterations, "max-iterations", 0, "override the iteration budget")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(goal, configPath, workspaceDir string, maxIterations int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if workspaceDir != "" {
		cfg.System.WorkspaceDir = workspaceDir
	}
	if maxIterations > 0 {
		cfg.Loop.MaxIterations = maxIterations
	}

	logger, err := logging.New(cfg.System.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.System.WorkspaceDir, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	backend, err := llm.NewGollmBackend(cfg.LLM.Provider,
		llm.WithAPIKey(cfg.LLM.APIKey),
		llm.WithModel(cfg.LLM.Model),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
	)
	if err != nil {
		return fmt.Errorf("create model backend: %w", err)
	}

	registry, deploy := tools.NewDefaultRegistry(tools.DefaultSet{
		WorkspaceDir:     cfg.System.WorkspaceDir,
		ShellOutputChars: cfg.Tools.ShellMaxOutputChars,
		BlockedCommands:  cfg.Tools.BlockedCommands,
		AllowedPorts:     cfg.Tools.AllowedPorts,
		SearchMaxResults: cfg.Tools.SearchMaxResults,
		Out:              os.Stdout,
		In:               os.Stdin,
	}, logger)
	defer deploy.Close()

	journal, err := memory.OpenJournal(cfg.JournalPath())
	if err != nil {
		logger.Warn("journal unavailable, continuing without it", zap.Error(err))
		journal = nil
	} else {
		defer journal.Close()
	}

	pool := agentloop.NewWorkerPool(cfg.Loop.WorkerPoolSize)
	mem := memory.NewWorkspaceMemory(journal, logger)
	ctrl := agentloop.NewController(cfg.ControllerConfig(), backend, registry, mem, pool, logger)
	mem.BindRun(ctrl.RunID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("interrupt received, stopping run")
		ctrl.Stop()
	}()

	report, err := ctrl.Start(ctx, goal)
	if err != nil {
		return err
	}
	logger.Info("final state", zap.String("phase", string(report.Phase)))
	return nil
}
