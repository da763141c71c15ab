package agentloop

import (
	"fmt"
	"strings"
)

// systemInstructions is the fixed preamble sent with every action request.
const systemInstructions = `You are an autonomous agent working toward a user's goal.

On every turn you must select exactly one capability to invoke. Respond with
a single JSON object of the form:

` + "```json" + `
{"name": "<capability name>", "arguments": {...}}
` + "```" + `

Rules:
- Select exactly one capability per turn. Never select more than one.
- Only use capabilities from the available list.
- When the task is finished, select the "idle" capability.
- Use "message_notify_user" to report progress to the user.`

// promptObservationBudget bounds how much of a single observation is rendered
// into the action prompt.
const promptObservationBudget = 4000

// BuildPrompt renders system instructions, the event log, the memory
// snapshot, and the capability list into one request payload for the model
// backend. It is a pure function of its inputs and never mutates the log.
func BuildPrompt(events []Event, memoryState string, capabilityNames []string) string {
	var sb strings.Builder

	sb.WriteString(systemInstructions)
	sb.WriteString("\n\n## Available capabilities\n")
	for _, name := range capabilityNames {
		fmt.Fprintf(&sb, "- %s\n", name)
	}

	if memoryState != "" {
		sb.WriteString("\n## Working memory\n")
		sb.WriteString(memoryState)
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Event history\n")
	for _, event := range events {
		sb.WriteString(renderEvent(event))
		sb.WriteString("\n")
	}

	sb.WriteString("\nSelect the next capability to invoke.")
	return sb.String()
}

// renderEvent formats one event for prompt inclusion. Every kind renders
// deterministically; long observations are cut to a fixed budget.
func renderEvent(event Event) string {
	switch event.Kind {
	case EventMessage:
		return fmt.Sprintf("[user] %s", event.TextContent())
	case EventPlan:
		return fmt.Sprintf("[plan]\n%s", event.TextContent())
	case EventAction:
		return fmt.Sprintf("[action] %s", event.TextContent())
	case EventObservation:
		obs := event.Observation
		if obs != nil && obs.Err != "" {
			return fmt.Sprintf("[observation:%s] ERROR: %s",
				obs.Capability, TruncateText(obs.Err, promptObservationBudget, TruncateMiddle))
		}
		text := TruncateText(event.TextContent(), promptObservationBudget, TruncateMiddle)
		capability := ""
		if obs != nil {
			capability = obs.Capability
		}
		return fmt.Sprintf("[observation:%s] %s", capability, text)
	case EventSummary:
		return fmt.Sprintf("[summary of earlier events]\n%s", event.TextContent())
	default:
		return fmt.Sprintf("[%s] %s", event.Kind, event.TextContent())
	}
}
