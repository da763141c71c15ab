package tools

import (
	"context"
	"fmt"
)

// PlanUpdate accepts a revised plan from the model. The controller turns a
// successful invocation into a new plan event, which re-syncs the checklist
// on the next tick.
type PlanUpdate struct{}

// NewPlanUpdate creates the plan_update capability.
func NewPlanUpdate() *PlanUpdate { return &PlanUpdate{} }

func (p *PlanUpdate) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	plan, _ := arguments["plan"].(string)
	if plan == "" {
		return "", fmt.Errorf("plan_update: missing plan argument")
	}
	return "plan updated", nil
}

// Idle is the sentinel capability signaling task completion. The controller
// intercepts it before dispatch; Invoke exists only to satisfy the
// capability contract.
type Idle struct{}

// NewIdle creates the idle capability.
func NewIdle() *Idle { return &Idle{} }

func (i *Idle) Invoke(_ context.Context, _ map[string]any) (string, error) {
	return "task complete", nil
}
