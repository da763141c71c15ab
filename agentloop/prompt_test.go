package agentloop

import (
	"strings"
	"testing"
)

func TestBuildPromptIncludesAllSections(t *testing.T) {
	events := []Event{
		NewMessageEvent("write a report"),
		NewPlanEvent("1. Gather data\n2. Write"),
		NewActionEvent("shell_exec", map[string]any{"command": "ls"}),
		NewObservationEvent("shell_exec", "data.csv"),
		NewSummaryEvent("earlier work summarized"),
	}

	prompt := BuildPrompt(events, "Files touched this run:\n- report.md (written)", []string{"idle", "shell_exec"})

	for _, want := range []string{
		"exactly one capability",
		"- idle",
		"- shell_exec",
		"report.md (written)",
		"[user] write a report",
		"1. Gather data",
		"[observation:shell_exec] data.csv",
		"earlier work summarized",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	events := []Event{NewMessageEvent("goal")}
	a := BuildPrompt(events, "", []string{"idle"})
	b := BuildPrompt(events, "", []string{"idle"})
	if a != b {
		t.Error("prompt differs between identical calls")
	}
}

func TestBuildPromptTruncatesObservations(t *testing.T) {
	events := []Event{
		NewObservationEvent("shell_exec", strings.Repeat("y", 50000)),
	}
	prompt := BuildPrompt(events, "", []string{"idle"})
	if len(prompt) > 10000 {
		t.Errorf("oversized observation not truncated: %d chars", len(prompt))
	}
}

func TestBuildPromptOmitsEmptyMemory(t *testing.T) {
	prompt := BuildPrompt(nil, "", []string{"idle"})
	if strings.Contains(prompt, "Working memory") {
		t.Error("empty memory section should be omitted")
	}
}
