// Package memory tracks what a run has touched: a file registry fed by
// observations, rendered back into the prompt, plus a sqlite journal that
// survives the process for forensics.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/agentloop"
)

// WorkspaceMemory is the memory collaborator for one run. It records which
// files capabilities wrote and feeds a compact summary of them back into
// each prompt.
type WorkspaceMemory struct {
	mu           sync.Mutex
	fileRegistry map[string]string
	journal      *Journal
	runID        string
	log          *zap.Logger
}

// NewWorkspaceMemory creates a memory. journal may be nil to disable
// durable journaling.
func NewWorkspaceMemory(journal *Journal, log *zap.Logger) *WorkspaceMemory {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkspaceMemory{
		fileRegistry: make(map[string]string),
		journal:      journal,
		log:          log,
	}
}

// BindRun associates journal entries with a run identifier. Call before the
// run starts.
func (m *WorkspaceMemory) BindRun(runID string) {
	m.mu.Lock()
	m.runID = runID
	m.mu.Unlock()
}

// UpdateFromObservation records the outcome of one dispatched action.
// Failures are logged, never raised.
func (m *WorkspaceMemory) UpdateFromObservation(action agentloop.ActionEvent, observation agentloop.ObservationEvent) {
	m.mu.Lock()
	switch action.Capability {
	case "file_write":
		if path := argFile(action.Arguments); path != "" && observation.Err == "" {
			m.fileRegistry[path] = "written"
		}
	case "file_str_replace":
		if path := argFile(action.Arguments); path != "" && observation.Err == "" {
			m.fileRegistry[path] = "edited"
		}
	}
	runID := m.runID
	m.mu.Unlock()

	if m.journal != nil {
		if err := m.journal.Record(runID, action, observation); err != nil {
			m.log.Warn("journal write failed", zap.Error(err))
		}
	}
}

// RelevantState renders the file registry for prompt injection.
func (m *WorkspaceMemory) RelevantState() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.fileRegistry) == 0 {
		return ""
	}

	paths := make([]string, 0, len(m.fileRegistry))
	for path := range m.fileRegistry {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var sb strings.Builder
	sb.WriteString("Files touched this run:\n")
	for _, path := range paths {
		fmt.Fprintf(&sb, "- %s (%s)\n", path, m.fileRegistry[path])
	}
	return sb.String()
}

// TouchedFiles returns the distinct file paths written during the run.
func (m *WorkspaceMemory) TouchedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.fileRegistry))
	for path := range m.fileRegistry {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func argFile(arguments map[string]any) string {
	if p, _ := arguments["file"].(string); p != "" {
		return p
	}
	p, _ := arguments["path"].(string)
	return p
}
