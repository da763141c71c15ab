package agentloop

import (
	"encoding/json"
	"time"
)

// EventKind discriminates between event types.
type EventKind string

const (
	EventMessage     EventKind = "message"
	EventPlan        EventKind = "plan"
	EventAction      EventKind = "action"
	EventObservation EventKind = "observation"
	EventSummary     EventKind = "summary"
)

// Event is a single entry in a run's event log.
type Event struct {
	Kind        EventKind         `json:"kind"`
	Timestamp   time.Time         `json:"timestamp"`
	Message     *MessageEvent     `json:"message,omitempty"`
	Plan        *PlanEvent        `json:"plan,omitempty"`
	Action      *ActionEvent      `json:"action,omitempty"`
	Observation *ObservationEvent `json:"observation,omitempty"`
	Summary     *SummaryEvent     `json:"summary,omitempty"`
}

// MessageEvent holds user-supplied goal text.
type MessageEvent struct {
	Content string `json:"content"`
}

// PlanEvent holds full plan text produced by a planning request.
type PlanEvent struct {
	Content string `json:"content"`
}

// ActionEvent holds the capability name and arguments chosen for one turn.
type ActionEvent struct {
	Capability string         `json:"capability"`
	Arguments  map[string]any `json:"arguments"`
}

// ObservationEvent holds the outcome of dispatching an action. Exactly one
// of Result and Err is meaningful; Err non-empty marks a failed dispatch.
type ObservationEvent struct {
	Capability string `json:"capability"`
	Result     string `json:"result,omitempty"`
	Err        string `json:"error,omitempty"`
}

// SummaryEvent replaces a contiguous run of older events.
type SummaryEvent struct {
	Content string `json:"content"`
}

// NewMessageEvent creates an Event wrapping user input.
func NewMessageEvent(content string) Event {
	return Event{Kind: EventMessage, Timestamp: time.Now(), Message: &MessageEvent{Content: content}}
}

// NewPlanEvent creates an Event wrapping plan text.
func NewPlanEvent(content string) Event {
	return Event{Kind: EventPlan, Timestamp: time.Now(), Plan: &PlanEvent{Content: content}}
}

// NewActionEvent creates an Event wrapping a capability selection.
func NewActionEvent(capability string, arguments map[string]any) Event {
	if arguments == nil {
		arguments = map[string]any{}
	}
	return Event{Kind: EventAction, Timestamp: time.Now(), Action: &ActionEvent{Capability: capability, Arguments: arguments}}
}

// NewObservationEvent creates an Event wrapping a successful dispatch result.
func NewObservationEvent(capability, result string) Event {
	return Event{Kind: EventObservation, Timestamp: time.Now(), Observation: &ObservationEvent{Capability: capability, Result: result}}
}

// NewErrorObservationEvent creates an Event wrapping a failed dispatch.
func NewErrorObservationEvent(capability, errText string) Event {
	return Event{Kind: EventObservation, Timestamp: time.Now(), Observation: &ObservationEvent{Capability: capability, Err: errText}}
}

// NewSummaryEvent creates an Event wrapping a compaction summary.
func NewSummaryEvent(content string) Event {
	return Event{Kind: EventSummary, Timestamp: time.Now(), Summary: &SummaryEvent{Content: content}}
}

// TextContent returns the primary text of an event regardless of its kind.
// Action events render as compact JSON.
func (e Event) TextContent() string {
	switch e.Kind {
	case EventMessage:
		if e.Message != nil {
			return e.Message.Content
		}
	case EventPlan:
		if e.Plan != nil {
			return e.Plan.Content
		}
	case EventAction:
		if e.Action != nil {
			raw, err := json.Marshal(e.Action)
			if err == nil {
				return string(raw)
			}
			return e.Action.Capability
		}
	case EventObservation:
		if e.Observation != nil {
			if e.Observation.Err != "" {
				return e.Observation.Err
			}
			return e.Observation.Result
		}
	case EventSummary:
		if e.Summary != nil {
			return e.Summary.Content
		}
	}
	return ""
}

// EventLog is the append-only, time-ordered record of a run.
//
// The log has a single writer: the run's Controller appends and compacts
// only from within loop iterations, so no lock is taken here. Embedders that
// expose the controller through multiple entry points must serialize access
// themselves.
type EventLog struct {
	events []Event
}

// NewEventLog creates an empty EventLog.
func NewEventLog() *EventLog {
	return &EventLog{events: make([]Event, 0, 16)}
}

// Append adds an event to the end of the log.
func (l *EventLog) Append(event Event) {
	l.events = append(l.events, event)
}

// Len returns the number of events currently in the log.
func (l *EventLog) Len() int {
	return len(l.events)
}

// Snapshot returns a copy of the events in append order.
func (l *EventLog) Snapshot() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Latest returns the most recent event of the given kind, or false when the
// log holds none.
func (l *EventLog) Latest(kind EventKind) (Event, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind == kind {
			return l.events[i], true
		}
	}
	return Event{}, false
}

// Compact atomically replaces all but the last keepTail events with a single
// summary event placed at the position of the removed prefix. It reports
// whether a replacement happened; a log whose prefix is empty is left alone.
func (l *EventLog) Compact(summary string, keepTail int) bool {
	if keepTail < 0 {
		keepTail = 0
	}
	prefix := len(l.events) - keepTail
	if prefix <= 0 {
		return false
	}

	tail := make([]Event, keepTail)
	copy(tail, l.events[prefix:])

	compacted := make([]Event, 0, keepTail+1)
	compacted = append(compacted, NewSummaryEvent(summary))
	compacted = append(compacted, tail...)
	l.events = compacted
	return true
}
