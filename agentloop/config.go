package agentloop

import "time"

// Config holds the per-run knobs of the controller.
type Config struct {
	// MaxIterations bounds how many loop ticks a run may consume.
	MaxIterations int
	// MaxWallClock bounds total run duration, checked once per iteration.
	MaxWallClock time.Duration
	// DispatchTimeout bounds a single capability invocation.
	DispatchTimeout time.Duration

	// SummarizeEvery triggers compaction every N iterations; 0 disables.
	SummarizeEvery int
	// KeepTailEvents is how many recent events survive compaction verbatim.
	KeepTailEvents int
	// SummaryCharBudget truncates each event fed to the summarizer.
	SummaryCharBudget int
	// SummaryMaxTokens caps the summarization response.
	SummaryMaxTokens int

	// ChecklistPath is where the durable checklist file is written.
	ChecklistPath string
	// ChecklistTitle is the heading of the checklist file.
	ChecklistTitle string

	// LoopDetectionWindow is how many recent actions the repeat detector
	// inspects; 0 disables detection.
	LoopDetectionWindow int

	// Temperature and MaxTokens apply to action-selection requests.
	Temperature float64
	MaxTokens   int
	// PlanTemperature and PlanMaxTokens apply to the initial plan request.
	PlanTemperature float64
	PlanMaxTokens   int
}

// DefaultConfig returns the standard controller configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:       40,
		MaxWallClock:        30 * time.Minute,
		DispatchTimeout:     2 * time.Minute,
		SummarizeEvery:      10,
		KeepTailEvents:      10,
		SummaryCharBudget:   2000,
		SummaryMaxTokens:    1024,
		ChecklistPath:       "todo.md",
		ChecklistTitle:      "Task Checklist",
		LoopDetectionWindow: 6,
		Temperature:         0.7,
		MaxTokens:           4096,
		PlanTemperature:     0.3,
		PlanMaxTokens:       2048,
	}
}
