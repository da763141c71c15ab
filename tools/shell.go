package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/agentloop"
)

// ShellExec runs a command line through /bin/sh inside the workspace.
// Output is truncated to a character budget before being returned as an
// observation. The dispatcher's timeout context kills the process on expiry.
type ShellExec struct {
	workDir         string
	maxOutputChars  int
	blockedCommands []string
	log             *zap.Logger
}

// NewShellExec creates the shell_exec capability.
func NewShellExec(workDir string, maxOutputChars int, blockedCommands []string, log *zap.Logger) *ShellExec {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShellExec{
		workDir:         workDir,
		maxOutputChars:  maxOutputChars,
		blockedCommands: blockedCommands,
		log:             log,
	}
}

func (s *ShellExec) Invoke(ctx context.Context, arguments map[string]any) (string, error) {
	command, _ := arguments["command"].(string)
	if command == "" {
		return "", fmt.Errorf("shell_exec: missing command argument")
	}
	for _, blocked := range s.blockedCommands {
		if strings.Contains(command, blocked) {
			return "", fmt.Errorf("shell_exec: command contains blocked pattern %q", blocked)
		}
	}

	s.log.Debug("executing shell command", zap.String("command", command))

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = s.workDir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()
	output := agentloop.TruncateText(buf.String(), s.maxOutputChars, agentloop.TruncateMiddle)

	if runErr != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("shell_exec: %w", ctx.Err())
		}
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return "", fmt.Errorf("shell_exec: exit code %d\n%s", exitErr.ExitCode(), output)
		}
		return "", fmt.Errorf("shell_exec: %w", runErr)
	}

	if output == "" {
		return "(no output)", nil
	}
	return output, nil
}
