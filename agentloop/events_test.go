package agentloop

import "testing"

func TestEventLogAppendOrder(t *testing.T) {
	log := NewEventLog()
	log.Append(NewMessageEvent("goal"))
	log.Append(NewPlanEvent("1. do the thing"))
	log.Append(NewActionEvent("shell_exec", map[string]any{"command": "ls"}))
	log.Append(NewObservationEvent("shell_exec", "file.txt"))

	events := log.Snapshot()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	expected := []EventKind{EventMessage, EventPlan, EventAction, EventObservation}
	for i, kind := range expected {
		if events[i].Kind != kind {
			t.Errorf("event %d: expected kind %s, got %s", i, kind, events[i].Kind)
		}
	}
}

func TestEventLogSnapshotIsCopy(t *testing.T) {
	log := NewEventLog()
	log.Append(NewMessageEvent("goal"))

	snap := log.Snapshot()
	snap[0] = NewPlanEvent("mutated")

	if got := log.Snapshot()[0].Kind; got != EventMessage {
		t.Errorf("snapshot mutation leaked into log: got kind %s", got)
	}
}

func TestEventLogLatest(t *testing.T) {
	log := NewEventLog()
	log.Append(NewPlanEvent("first plan"))
	log.Append(NewObservationEvent("shell_exec", "ok"))
	log.Append(NewPlanEvent("second plan"))

	plan, ok := log.Latest(EventPlan)
	if !ok {
		t.Fatal("expected a plan event")
	}
	if plan.Plan.Content != "second plan" {
		t.Errorf("expected latest plan, got %q", plan.Plan.Content)
	}

	if _, ok := log.Latest(EventSummary); ok {
		t.Error("expected no summary event")
	}
}

func TestEventLogCompactReplacesPrefix(t *testing.T) {
	log := NewEventLog()
	for i := 0; i < 15; i++ {
		log.Append(NewObservationEvent("shell_exec", "output"))
	}

	if !log.Compact("what happened earlier", 10) {
		t.Fatal("expected compaction to happen")
	}

	events := log.Snapshot()
	if len(events) != 11 {
		t.Fatalf("expected keep_tail+1 = 11 events, got %d", len(events))
	}
	if events[0].Kind != EventSummary {
		t.Errorf("expected summary at position 0, got %s", events[0].Kind)
	}
	if events[0].Summary.Content != "what happened earlier" {
		t.Errorf("unexpected summary content %q", events[0].Summary.Content)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Kind != EventObservation {
			t.Errorf("event %d: expected observation, got %s", i, events[i].Kind)
		}
	}
}

func TestEventLogCompactNoPrefix(t *testing.T) {
	log := NewEventLog()
	for i := 0; i < 5; i++ {
		log.Append(NewObservationEvent("shell_exec", "output"))
	}

	if log.Compact("summary", 10) {
		t.Error("expected no compaction when tail covers the whole log")
	}
	if log.Len() != 5 {
		t.Errorf("log modified by failed compaction: %d events", log.Len())
	}
}
