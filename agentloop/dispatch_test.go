package agentloop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestDispatcher(registry mapRegistry) *Dispatcher {
	return NewDispatcher(registry, NewWorkerPool(4), nil)
}

func TestDispatchSuccess(t *testing.T) {
	registry := mapRegistry{
		"echo": capabilityFunc(func(_ context.Context, arguments map[string]any) (string, error) {
			text, _ := arguments["text"].(string)
			return text, nil
		}),
	}
	d := newTestDispatcher(registry)

	outcome := d.Dispatch(context.Background(), "echo", map[string]any{"text": "hello"}, time.Second)
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %s: %s", outcome.Kind, outcome.Message)
	}
	if outcome.Result != "hello" {
		t.Errorf("unexpected result %q", outcome.Result)
	}
}

func TestDispatchUnknownCapability(t *testing.T) {
	d := newTestDispatcher(mapRegistry{})

	outcome := d.Dispatch(context.Background(), "nope", nil, time.Second)
	if outcome.Kind != OutcomeUnknownCapability {
		t.Fatalf("expected unknown_capability, got %s", outcome.Kind)
	}
}

func TestDispatchCapabilityFailure(t *testing.T) {
	registry := mapRegistry{
		"boom": capabilityFunc(func(_ context.Context, _ map[string]any) (string, error) {
			return "", errors.New("disk full")
		}),
	}
	d := newTestDispatcher(registry)

	outcome := d.Dispatch(context.Background(), "boom", nil, time.Second)
	if outcome.Kind != OutcomeCapabilityFailure {
		t.Fatalf("expected capability_failure, got %s", outcome.Kind)
	}
	if outcome.Message != "disk full" {
		t.Errorf("error message not captured verbatim: %q", outcome.Message)
	}
}

func TestDispatchPanicRecovered(t *testing.T) {
	registry := mapRegistry{
		"panic": capabilityFunc(func(_ context.Context, _ map[string]any) (string, error) {
			panic("nil pointer somewhere")
		}),
	}
	d := newTestDispatcher(registry)

	outcome := d.Dispatch(context.Background(), "panic", nil, time.Second)
	if outcome.Kind != OutcomeCapabilityFailure {
		t.Fatalf("expected capability_failure from panic, got %s", outcome.Kind)
	}
	if !strings.Contains(outcome.Message, "nil pointer somewhere") {
		t.Errorf("panic message lost: %q", outcome.Message)
	}
}

func TestDispatchTimeout(t *testing.T) {
	registry := mapRegistry{
		"slow": capabilityFunc(func(ctx context.Context, _ map[string]any) (string, error) {
			select {
			case <-time.After(5 * time.Second):
				return "too late", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}),
	}
	d := newTestDispatcher(registry)

	start := time.Now()
	outcome := d.Dispatch(context.Background(), "slow", nil, 50*time.Millisecond)
	elapsed := time.Since(start)

	if outcome.Kind != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s", outcome.Kind)
	}
	if elapsed > time.Second {
		t.Errorf("dispatch blocked past its bound: %v", elapsed)
	}
}

func TestDispatchTimeoutIgnoringCapability(t *testing.T) {
	// A capability that never checks its context still must not block the
	// caller past the timeout.
	registry := mapRegistry{
		"stubborn": capabilityFunc(func(_ context.Context, _ map[string]any) (string, error) {
			time.Sleep(3 * time.Second)
			return "done", nil
		}),
	}
	d := newTestDispatcher(registry)

	start := time.Now()
	outcome := d.Dispatch(context.Background(), "stubborn", nil, 50*time.Millisecond)
	if outcome.Kind != OutcomeTimeout {
		t.Fatalf("expected timeout, got %s", outcome.Kind)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("caller waited %v on a stubborn capability", elapsed)
	}
}

func TestOutcomeObservation(t *testing.T) {
	success := Outcome{Kind: OutcomeSuccess, Result: "ok"}
	event := success.Observation("shell_exec")
	if event.Observation.Result != "ok" || event.Observation.Err != "" {
		t.Errorf("unexpected success observation: %+v", event.Observation)
	}

	failure := Outcome{Kind: OutcomeTimeout, Message: "exceeded 2m"}
	event = failure.Observation("shell_exec")
	if event.Observation.Err == "" {
		t.Error("expected error text in failure observation")
	}
	if !strings.Contains(event.Observation.Err, "timeout") {
		t.Errorf("error kind missing from observation: %q", event.Observation.Err)
	}
}
