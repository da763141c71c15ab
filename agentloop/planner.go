package agentloop

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/llm"
)

const planSystemPrompt = `You are a planning assistant for an autonomous agent.
Break the user's goal into a short, ordered plan of concrete steps.
Respond with a numbered list, one step per line:

1. First step
2. Second step

Keep the plan to at most ten steps. Do not execute anything.`

// Planner produces the initial plan for a run.
type Planner struct {
	backend     llm.Backend
	pool        *WorkerPool
	temperature float64
	maxTokens   int
	log         *zap.Logger
}

// NewPlanner creates a planner over the given backend.
func NewPlanner(backend llm.Backend, pool *WorkerPool, temperature float64, maxTokens int, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{
		backend:     backend,
		pool:        pool,
		temperature: temperature,
		maxTokens:   maxTokens,
		log:         log,
	}
}

// Plan requests a plan for goal and returns its text.
func (p *Planner) Plan(ctx context.Context, goal string) (string, error) {
	req := llm.CompletionRequest{
		SystemPrompt: planSystemPrompt,
		Messages:     []llm.Message{llm.UserMessage(goal)},
		Temperature:  p.temperature,
		MaxTokens:    p.maxTokens,
	}

	res := <-p.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return p.backend.Complete(ctx, req)
	})
	if res.Err != nil {
		return "", fmt.Errorf("plan request: %w", res.Err)
	}
	completion := res.Value.(*llm.Completion)
	plan := strings.TrimSpace(completion.Text)
	if plan == "" {
		return "", fmt.Errorf("plan request returned empty text")
	}

	p.log.Info("plan produced", zap.Int("chars", len(plan)))
	return plan, nil
}
