package llm

import "testing"

func TestParseSelectionWholeText(t *testing.T) {
	sel, ok := ParseSelection(`{"name": "shell_exec", "arguments": {"command": "ls"}}`)
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Name != "shell_exec" {
		t.Errorf("unexpected name %q", sel.Name)
	}
	if sel.Arguments["command"] != "ls" {
		t.Errorf("unexpected arguments %v", sel.Arguments)
	}
}

func TestParseSelectionFencedBlock(t *testing.T) {
	text := "Here is my choice:\n```json\n{\"name\": \"idle\", \"arguments\": {}}\n```\nDone."
	sel, ok := ParseSelection(text)
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Name != "idle" {
		t.Errorf("unexpected name %q", sel.Name)
	}
}

func TestParseSelectionBareBraces(t *testing.T) {
	text := `I choose {"name": "file_read", "arguments": {"file": "notes.md"}} for this step.`
	sel, ok := ParseSelection(text)
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Name != "file_read" {
		t.Errorf("unexpected name %q", sel.Name)
	}
}

func TestParseSelectionParametersAlias(t *testing.T) {
	sel, ok := ParseSelection(`{"name": "shell_exec", "parameters": {"command": "pwd"}}`)
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Arguments["command"] != "pwd" {
		t.Errorf("parameters alias not honored: %v", sel.Arguments)
	}
}

func TestParseSelectionMissingName(t *testing.T) {
	if sel, ok := ParseSelection(`{"arguments": {"command": "ls"}}`); ok {
		t.Errorf("expected failure without name field, got %+v", sel)
	}
}

func TestParseSelectionNoJSON(t *testing.T) {
	if sel, ok := ParseSelection("I cannot decide."); ok {
		t.Errorf("expected failure for prose, got %+v", sel)
	}
}

func TestUsageAdd(t *testing.T) {
	a := Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	b := Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}

	sum := a.Add(b)
	if sum.InputTokens != 11 || sum.OutputTokens != 7 || sum.TotalTokens != 18 {
		t.Errorf("unexpected sum %+v", sum)
	}
}
