package agentloop

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/llm"
)

// summaryTemperature keeps summarization requests close to deterministic.
const summaryTemperature = 0.1

const summarySystemPrompt = `You summarize an autonomous agent's event history.
Produce a concise summary that preserves: the user's goal, the current plan,
key decisions, files created or modified, and unresolved problems. Write
plain prose, no more than a few paragraphs.`

// Compactor collapses older log events into a single summary on a cadence,
// bounding the size of material sent to the model backend.
type Compactor struct {
	backend    llm.Backend
	pool       *WorkerPool
	keepTail   int
	charBudget int
	maxTokens  int
	log        *zap.Logger
}

// NewCompactor creates a compactor that retains keepTail recent events
// verbatim and truncates each older event to charBudget characters before
// including it in the summarization request.
func NewCompactor(backend llm.Backend, pool *WorkerPool, keepTail, charBudget, maxTokens int, log *zap.Logger) *Compactor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compactor{
		backend:    backend,
		pool:       pool,
		keepTail:   keepTail,
		charBudget: charBudget,
		maxTokens:  maxTokens,
		log:        log,
	}
}

// Compact summarizes everything older than the tail and replaces it with one
// summary event. Failure is non-fatal: the log is left unmodified and the
// caller retries at the next cadence point. It reports whether the log was
// rewritten.
func (c *Compactor) Compact(ctx context.Context, eventLog *EventLog) (bool, error) {
	events := eventLog.Snapshot()
	if len(events) <= c.keepTail {
		return false, nil
	}
	prefix := events[:len(events)-c.keepTail]

	req := llm.CompletionRequest{
		SystemPrompt: summarySystemPrompt,
		Messages:     []llm.Message{llm.UserMessage(c.buildSummaryInput(prefix))},
		Temperature:  summaryTemperature,
		MaxTokens:    c.maxTokens,
	}

	res := <-c.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return c.backend.Complete(ctx, req)
	})
	if res.Err != nil {
		return false, fmt.Errorf("summarization request: %w", res.Err)
	}
	completion := res.Value.(*llm.Completion)
	summary := strings.TrimSpace(completion.Text)
	if summary == "" {
		return false, fmt.Errorf("summarization returned empty text")
	}

	eventLog.Compact(summary, c.keepTail)
	c.log.Info("event log compacted",
		zap.Int("summarized", len(prefix)),
		zap.Int("kept", c.keepTail))
	return true, nil
}

// buildSummaryInput renders the prefix deterministically, truncating long
// observation and plan text so the summarization request itself stays
// bounded.
func (c *Compactor) buildSummaryInput(prefix []Event) string {
	var sb strings.Builder
	sb.WriteString("Event history to summarize:\n\n")
	for _, event := range prefix {
		text := event.TextContent()
		switch event.Kind {
		case EventObservation, EventPlan:
			text = TruncateText(text, c.charBudget, TruncateMiddle)
		}
		fmt.Fprintf(&sb, "[%s] %s\n", event.Kind, text)
	}
	return sb.String()
}
