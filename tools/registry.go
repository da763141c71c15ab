// Package tools implements the built-in capability set: user messaging,
// workspace file operations, shell execution, web search, static-site
// serving, plan revision, and the idle sentinel. Each capability is a
// handler behind a single Invoke method; the registry resolves names with a
// map lookup.
package tools

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/agentloop"
)

// Registry is a closed set of named capabilities.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]agentloop.Capability
	log          *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{capabilities: make(map[string]agentloop.Capability), log: log}
}

// Register adds a capability under name, replacing any previous handler.
func (r *Registry) Register(name string, capability agentloop.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.capabilities[name]; exists {
		r.log.Warn("capability re-registered", zap.String("capability", name))
	}
	r.capabilities[name] = capability
}

// Lookup resolves a capability by name.
func (r *Registry) Lookup(name string) (agentloop.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	capability, ok := r.capabilities[name]
	return capability, ok
}

// Names returns all registered capability names, sorted for deterministic
// prompt rendering.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
