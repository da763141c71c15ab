package agentloop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raspverry/manus-like-agent/llm"
)

// RunPhase is a state of the controller's lifecycle.
type RunPhase string

const (
	PhasePlanning       RunPhase = "planning"
	PhaseIterating      RunPhase = "iterating"
	PhaseCompleting     RunPhase = "completing"
	PhaseBudgetExceeded RunPhase = "budget_exceeded"
	PhaseCancelled      RunPhase = "cancelled"
	PhaseStopped        RunPhase = "stopped"
)

// terminal reports whether the phase ends iteration.
func (p RunPhase) terminal() bool {
	switch p {
	case PhaseCompleting, PhaseBudgetExceeded, PhaseCancelled, PhaseStopped:
		return true
	}
	return false
}

// Controller drives one run of the agent loop: plan, act, observe,
// summarize, repeat, under iteration and wall-clock budgets with
// cooperative cancellation.
//
// A Controller is single-use. All run state is owned by Start's goroutine
// and mutated only between iterations; Stop is the one concurrent entry
// point and touches only the cancellation flag.
type Controller struct {
	cfg      Config
	backend  llm.Backend
	registry CapabilityRegistry
	memory   Memory
	pool     *WorkerPool
	log      *zap.Logger

	runID      string
	events     *EventLog
	checklist  *ChecklistSynchronizer
	compactor  *Compactor
	planner    *Planner
	dispatcher *Dispatcher

	mu              sync.Mutex
	phase           RunPhase
	cancelRequested bool
	cancel          context.CancelFunc

	startTime            time.Time
	iterations           int
	lastSummaryIteration int
	usage                TokenUsage
}

// NewController creates a controller for a single run.
func NewController(cfg Config, backend llm.Backend, registry CapabilityRegistry, memory Memory, pool *WorkerPool, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.New().String()
	log = log.With(zap.String("run_id", runID))

	return &Controller{
		cfg:        cfg,
		backend:    backend,
		registry:   registry,
		memory:     memory,
		pool:       pool,
		log:        log,
		runID:      runID,
		events:     NewEventLog(),
		checklist:  NewChecklistSynchronizer(cfg.ChecklistPath, cfg.ChecklistTitle, log),
		compactor:  NewCompactor(backend, pool, cfg.KeepTailEvents, cfg.SummaryCharBudget, cfg.SummaryMaxTokens, log),
		planner:    NewPlanner(backend, pool, cfg.PlanTemperature, cfg.PlanMaxTokens, log),
		dispatcher: NewDispatcher(registry, pool, log),
	}
}

// RunID returns the run's unique identifier.
func (c *Controller) RunID() string { return c.runID }

// Phase returns the controller's current phase.
func (c *Controller) Phase() RunPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Events returns a snapshot of the run's event log.
func (c *Controller) Events() []Event { return c.events.Snapshot() }

// Stop requests cooperative cancellation. The controller observes the flag
// at iteration boundaries; at most one in-flight dispatch completes or times
// out first. Calling Stop repeatedly, or after the run stopped, is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseStopped || c.cancelRequested {
		return
	}
	c.cancelRequested = true
	if c.cancel != nil {
		c.cancel()
	}
	c.log.Info("stop requested")
}

// Start runs the loop to completion for goal and returns the final report.
// It blocks until the run reaches its terminal state.
func (c *Controller) Start(ctx context.Context, goal string) (RunReport, error) {
	c.mu.Lock()
	if c.phase != "" {
		c.mu.Unlock()
		return RunReport{}, fmt.Errorf("controller already started")
	}
	c.phase = PhasePlanning
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	c.startTime = time.Now()
	c.log.Info("run started", zap.String("goal", TruncateText(goal, 200, TruncateTail)))

	c.plan(runCtx, goal)

	c.setPhase(PhaseIterating)
	for {
		next := c.tick(runCtx)
		c.setPhase(next)
		if next.terminal() {
			break
		}
	}

	report := c.report()
	c.deliverReport(report)
	c.setPhase(PhaseStopped)
	c.log.Info("run stopped",
		zap.String("outcome", string(report.Phase)),
		zap.Int("iterations", report.Iterations),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

// plan performs the Planning phase: record the goal, acknowledge it, request
// a plan, and seed the checklist. A failed plan request is not fatal; the
// run proceeds and the model may revise the plan later via plan_update.
func (c *Controller) plan(ctx context.Context, goal string) {
	c.events.Append(NewMessageEvent(goal))
	c.notify(ctx, fmt.Sprintf("Task accepted: %s", TruncateText(goal, 200, TruncateTail)))

	planText, err := c.planner.Plan(ctx, goal)
	if err != nil {
		c.log.Warn("planning failed, continuing without initial plan", zap.Error(err))
		c.events.Append(NewErrorObservationEvent(PlanUpdateCapability, fmt.Sprintf("planning failed: %v", err)))
		return
	}
	c.events.Append(NewPlanEvent(planText))

	if _, err := c.checklist.Sync(planText); err != nil {
		c.log.Warn("checklist sync failed", zap.Error(err))
	}
}

// tick executes one Iterating step and returns the next phase.
func (c *Controller) tick(ctx context.Context) RunPhase {
	if c.cfg.MaxWallClock > 0 && time.Since(c.startTime) > c.cfg.MaxWallClock {
		c.log.Warn("wall-clock budget exhausted", zap.Duration("budget", c.cfg.MaxWallClock))
		return PhaseBudgetExceeded
	}
	if c.stopRequested() {
		return PhaseCancelled
	}

	c.iterations++
	if c.cfg.MaxIterations > 0 && c.iterations > c.cfg.MaxIterations {
		c.iterations--
		c.log.Warn("iteration budget exhausted", zap.Int("budget", c.cfg.MaxIterations))
		return PhaseBudgetExceeded
	}

	c.syncChecklist()
	c.maybeCompact(ctx)

	completion, err := c.requestAction(ctx)
	if err != nil {
		if c.stopRequested() {
			return PhaseCancelled
		}
		// Abandon this iteration and retry next tick.
		c.log.Warn("model request failed", zap.Error(err))
		return PhaseIterating
	}
	c.usage.InputTokens += completion.Usage.InputTokens
	c.usage.OutputTokens += completion.Usage.OutputTokens
	c.usage.TotalTokens += completion.Usage.TotalTokens

	action, ok := ExtractAction(completion.Text)
	if !ok {
		c.log.Warn("no action extracted from model response")
		c.events.Append(NewErrorObservationEvent("", "extraction failed: response contained no capability selection"))
		return PhaseIterating
	}

	if action.Capability == IdleCapability {
		c.log.Info("idle selected, task complete", zap.Int("iteration", c.iterations))
		return PhaseCompleting
	}

	c.events.Append(NewActionEvent(action.Capability, action.Arguments))
	outcome := c.dispatcher.Dispatch(ctx, action.Capability, action.Arguments, c.cfg.DispatchTimeout)
	observation := outcome.Observation(action.Capability)
	c.events.Append(observation)

	if action.Capability == PlanUpdateCapability && outcome.Kind == OutcomeSuccess {
		if planText, ok := action.Arguments["plan"].(string); ok && planText != "" {
			c.events.Append(NewPlanEvent(planText))
		}
	}

	c.memory.UpdateFromObservation(*action, *observation.Observation)

	if c.cfg.LoopDetectionWindow > 0 && DetectLoop(c.events.Snapshot(), c.cfg.LoopDetectionWindow) {
		c.log.Warn("repetitive action pattern detected", zap.Int("window", c.cfg.LoopDetectionWindow))
		c.events.Append(NewObservationEvent("system",
			"You appear to be repeating the same actions without progress. Change approach, or select idle if the task is done."))
	}

	return PhaseIterating
}

// requestAction sends the action-selection prompt through the worker pool.
func (c *Controller) requestAction(ctx context.Context) (*llm.Completion, error) {
	prompt := BuildPrompt(c.events.Snapshot(), c.memory.RelevantState(), c.registry.Names())
	req := llm.CompletionRequest{
		Messages:    []llm.Message{llm.UserMessage(prompt)},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	res := <-c.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return c.backend.Complete(ctx, req)
	})
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Value.(*llm.Completion), nil
}

// syncChecklist re-syncs the checklist against the latest plan. The
// synchronizer's fingerprint check makes an unchanged plan a no-op.
func (c *Controller) syncChecklist() {
	plan, ok := c.events.Latest(EventPlan)
	if !ok {
		return
	}
	if _, err := c.checklist.Sync(plan.Plan.Content); err != nil {
		c.log.Warn("checklist sync failed", zap.Error(err))
	}
}

// maybeCompact runs the compactor when the cadence is due. Failure skips
// this cycle and retries at the next cadence point.
func (c *Controller) maybeCompact(ctx context.Context) {
	if c.cfg.SummarizeEvery <= 0 {
		return
	}
	if c.iterations-c.lastSummaryIteration < c.cfg.SummarizeEvery {
		return
	}
	compacted, err := c.compactor.Compact(ctx, c.events)
	if err != nil {
		c.log.Warn("compaction failed, will retry next cadence", zap.Error(err))
		return
	}
	if compacted {
		c.lastSummaryIteration = c.iterations
	}
}

func (c *Controller) stopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelRequested
}

func (c *Controller) setPhase(phase RunPhase) {
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()
}

// report assembles the final run report.
func (c *Controller) report() RunReport {
	done, total := c.checklist.Progress()
	return RunReport{
		Phase:          c.Phase(),
		Elapsed:        time.Since(c.startTime),
		Iterations:     c.iterations,
		ChecklistDone:  done,
		ChecklistTotal: total,
		FilesTouched:   len(c.memory.TouchedFiles()),
		Usage:          c.usage,
	}
}

// deliverReport sends the final report through the notification capability.
// The run context may already be cancelled, so delivery gets its own
// short-lived context.
func (c *Controller) deliverReport(report RunReport) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.notify(ctx, report.Render())
}

// notify invokes the notification capability directly, bypassing the event
// log. Notification failure is logged, never raised.
func (c *Controller) notify(ctx context.Context, message string) {
	capability, ok := c.registry.Lookup(NotifyCapability)
	if !ok {
		c.log.Warn("notify capability not registered")
		return
	}
	if _, err := capability.Invoke(ctx, map[string]any{"message": message}); err != nil {
		c.log.Warn("notification failed", zap.Error(err))
	}
}
