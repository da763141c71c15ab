package tools

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/agentloop"
)

// DefaultSet holds the knobs for the built-in capability set.
type DefaultSet struct {
	WorkspaceDir     string
	ShellOutputChars int
	BlockedCommands  []string
	AllowedPorts     []int
	SearchMaxResults int
	Out              io.Writer
	In               io.Reader
}

// NewDefaultRegistry builds a registry with every built-in capability
// wired. The returned DeployManager must be closed when the run ends.
func NewDefaultRegistry(set DefaultSet, log *zap.Logger) (*Registry, *DeployManager) {
	registry := NewRegistry(log)
	deploy := NewDeployManager(set.WorkspaceDir, set.AllowedPorts, log)

	registry.Register(agentloop.NotifyCapability, NewNotifyUser(set.Out))
	registry.Register("message_ask_user", NewAskUser(set.Out, set.In))
	registry.Register("file_read", NewFileRead(set.WorkspaceDir))
	registry.Register("file_write", NewFileWrite(set.WorkspaceDir))
	registry.Register("file_str_replace", NewFileStrReplace(set.WorkspaceDir))
	registry.Register("shell_exec", NewShellExec(set.WorkspaceDir, set.ShellOutputChars, set.BlockedCommands, log))
	registry.Register("info_search_web", NewInfoSearchWeb(http.DefaultClient, set.SearchMaxResults, log))
	registry.Register("deploy_expose_port", NewDeployExposePort(deploy))
	registry.Register("deploy_apply_deployment", NewDeployApplyDeployment(deploy))
	registry.Register(agentloop.PlanUpdateCapability, NewPlanUpdate())
	registry.Register(agentloop.IdleCapability, NewIdle())

	return registry, deploy
}
