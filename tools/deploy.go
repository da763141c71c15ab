package tools

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DeployManager serves workspace directories over HTTP so the user can
// inspect produced sites. One listener per port; the manager owns their
// lifecycle and shuts them all down on Close.
type DeployManager struct {
	workDir      string
	allowedPorts []int
	log          *zap.Logger

	mu      sync.Mutex
	servers map[int]*http.Server
}

// NewDeployManager creates a manager serving from workDir on allowedPorts.
func NewDeployManager(workDir string, allowedPorts []int, log *zap.Logger) *DeployManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeployManager{
		workDir:      workDir,
		allowedPorts: allowedPorts,
		log:          log,
		servers:      make(map[int]*http.Server),
	}
}

// Close shuts down every listener the manager started.
func (m *DeployManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for port, srv := range m.servers {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			m.log.Warn("deploy server shutdown failed", zap.Int("port", port), zap.Error(err))
		}
		cancel()
		delete(m.servers, port)
	}
}

func (m *DeployManager) portAllowed(port int) bool {
	for _, p := range m.allowedPorts {
		if p == port {
			return true
		}
	}
	return false
}

// serve starts a static file server for dir on port. Idempotent per port.
func (m *DeployManager) serve(dir string, port int) (string, error) {
	if !m.portAllowed(port) {
		return "", fmt.Errorf("port %d is not in the allowed set %v", port, m.allowedPorts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.servers[port]; running {
		return fmt.Sprintf("http://localhost:%d/ (already serving)", port), nil
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("listen on port %d: %w", port, err)
	}

	srv := &http.Server{Handler: http.FileServer(http.Dir(dir))}
	m.servers[port] = srv
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			m.log.Warn("deploy server exited", zap.Int("port", port), zap.Error(err))
		}
	}()

	m.log.Info("serving directory", zap.String("dir", dir), zap.Int("port", port))
	return fmt.Sprintf("http://localhost:%d/", port), nil
}

// DeployExposePort serves the whole workspace on a requested port.
type DeployExposePort struct{ manager *DeployManager }

// NewDeployExposePort creates the deploy_expose_port capability.
func NewDeployExposePort(manager *DeployManager) *DeployExposePort {
	return &DeployExposePort{manager: manager}
}

func (d *DeployExposePort) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	port, ok := argInt(arguments, "port")
	if !ok {
		return "", fmt.Errorf("deploy_expose_port: missing port argument")
	}
	addr, err := d.manager.serve(d.manager.workDir, port)
	if err != nil {
		return "", fmt.Errorf("deploy_expose_port: %w", err)
	}
	return "workspace exposed at " + addr, nil
}

// DeployApplyDeployment serves a static site directory on the first free
// allowed port.
type DeployApplyDeployment struct{ manager *DeployManager }

// NewDeployApplyDeployment creates the deploy_apply_deployment capability.
func NewDeployApplyDeployment(manager *DeployManager) *DeployApplyDeployment {
	return &DeployApplyDeployment{manager: manager}
}

func (d *DeployApplyDeployment) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	kind, _ := arguments["type"].(string)
	if kind != "" && kind != "static" {
		return "", fmt.Errorf("deploy_apply_deployment: unsupported type %q, only static is available", kind)
	}
	localDir, _ := arguments["local_dir"].(string)
	if localDir == "" {
		return "", fmt.Errorf("deploy_apply_deployment: missing local_dir argument")
	}
	ws := newWorkspace(d.manager.workDir)
	dir, err := ws.resolve(localDir)
	if err != nil {
		return "", fmt.Errorf("deploy_apply_deployment: %w", err)
	}

	var lastErr error
	for _, port := range d.manager.allowedPorts {
		addr, err := d.manager.serve(dir, port)
		if err != nil {
			lastErr = err
			continue
		}
		return fmt.Sprintf("static site %s deployed at %s", dir, addr), nil
	}
	return "", fmt.Errorf("deploy_apply_deployment: no allowed port available: %w", lastErr)
}

// argInt reads an integer argument that JSON decoding may have produced as
// float64.
func argInt(arguments map[string]any, key string) (int, bool) {
	switch v := arguments[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
