package agentloop

import (
	"context"
	"sort"
	"sync"

	"github.com/raspverry/manus-like-agent/llm"
)

// capabilityFunc adapts a function to the Capability interface.
type capabilityFunc func(ctx context.Context, arguments map[string]any) (string, error)

func (f capabilityFunc) Invoke(ctx context.Context, arguments map[string]any) (string, error) {
	return f(ctx, arguments)
}

// mapRegistry is a test registry over a plain map.
type mapRegistry map[string]Capability

func (r mapRegistry) Lookup(name string) (Capability, bool) {
	capability, ok := r[name]
	return capability, ok
}

func (r mapRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// recordingMemory captures observations and touched files for assertions.
type recordingMemory struct {
	mu           sync.Mutex
	observations []ObservationEvent
	state        string
	files        []string
}

func (m *recordingMemory) UpdateFromObservation(action ActionEvent, observation ObservationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, observation)
	if action.Capability == "file_write" {
		if path, ok := action.Arguments["file"].(string); ok {
			m.files = append(m.files, path)
		}
	}
}

func (m *recordingMemory) RelevantState() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *recordingMemory) TouchedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...)
}

// scriptedBackend returns queued responses in order, then the fallback
// forever. A non-nil err fails every call instead.
type scriptedBackend struct {
	mu        sync.Mutex
	responses []string
	fallback  string
	err       error
	calls     int
}

func (b *scriptedBackend) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.Completion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	text := b.fallback
	if len(b.responses) > 0 {
		text = b.responses[0]
		b.responses = b.responses[1:]
	}
	return &llm.Completion{Text: text, Usage: llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}, nil
}

func (b *scriptedBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func actionJSON(name string) string {
	return `{"name": "` + name + `", "arguments": {}}`
}
