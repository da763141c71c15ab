package agentloop

import "context"

// Distinguished capability names the controller treats specially.
const (
	// IdleCapability signals intentional task completion.
	IdleCapability = "idle"
	// NotifyCapability is the only guaranteed-available capability, used
	// for progress and error reporting.
	NotifyCapability = "message_notify_user"
	// PlanUpdateCapability revises the active plan; a successful dispatch
	// appends a new plan event.
	PlanUpdateCapability = "plan_update"
)

// Capability is a named, invocable unit of external effect.
type Capability interface {
	Invoke(ctx context.Context, arguments map[string]any) (string, error)
}

// CapabilityRegistry resolves capability names to handlers. Resolution is a
// map lookup; the set is closed once the run starts.
type CapabilityRegistry interface {
	Lookup(name string) (Capability, bool)
	Names() []string
}

// Memory is the external memory collaborator. UpdateFromObservation is
// fire-and-forget; failures are logged, never raised into the loop.
type Memory interface {
	UpdateFromObservation(action ActionEvent, observation ObservationEvent)
	RelevantState() string
	TouchedFiles() []string
}
