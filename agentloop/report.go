package agentloop

import (
	"fmt"
	"strings"
	"time"
)

// RunReport is the final progress report for a run, delivered through the
// notification capability when a terminal state is reached.
type RunReport struct {
	Phase          RunPhase
	Elapsed        time.Duration
	Iterations     int
	ChecklistDone  int
	ChecklistTotal int
	FilesTouched   int
	Usage          TokenUsage
}

// TokenUsage aggregates token consumption across a run's model requests.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Render formats the report as human-readable text.
func (r RunReport) Render() string {
	var sb strings.Builder

	switch r.Phase {
	case PhaseCompleting:
		sb.WriteString("Task completed.\n")
	case PhaseBudgetExceeded:
		sb.WriteString("Task stopped: budget exceeded.\n")
	case PhaseCancelled:
		sb.WriteString("Task cancelled.\n")
	default:
		fmt.Fprintf(&sb, "Task finished in state %s.\n", r.Phase)
	}

	minutes := int(r.Elapsed.Minutes())
	seconds := int(r.Elapsed.Seconds()) % 60
	fmt.Fprintf(&sb, "Elapsed: %dm %ds\n", minutes, seconds)
	fmt.Fprintf(&sb, "Iterations: %d\n", r.Iterations)

	if r.ChecklistTotal > 0 {
		percent := 100 * r.ChecklistDone / r.ChecklistTotal
		fmt.Fprintf(&sb, "Checklist: %d/%d steps complete (%d%%)\n",
			r.ChecklistDone, r.ChecklistTotal, percent)
	} else {
		sb.WriteString("Checklist: no steps recorded\n")
	}

	fmt.Fprintf(&sb, "Files touched: %d", r.FilesTouched)
	if r.Usage.TotalTokens > 0 {
		fmt.Fprintf(&sb, "\nTokens: %d in / %d out", r.Usage.InputTokens, r.Usage.OutputTokens)
	}
	return sb.String()
}
