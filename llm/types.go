// Package llm provides the model-backend collaborator for the agent loop.
// It wraps gollm behind a small completion contract: callers send a system
// prompt plus conversation messages and receive text or, when structured
// output is forced, an already-parsed capability selection.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a completion conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Usage tracks token consumption for a single completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// ActionSelection is the parsed capability choice returned by the backend
// when ForceStructured is set: exactly one capability name plus arguments.
type ActionSelection struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CompletionRequest is the input to Backend.Complete.
type CompletionRequest struct {
	SystemPrompt    string    `json:"system_prompt,omitempty"`
	Messages        []Message `json:"messages"`
	Temperature     float64   `json:"temperature"`
	MaxTokens       int       `json:"max_tokens"`
	ForceStructured bool      `json:"force_structured"`
}

// Completion is the output of Backend.Complete. Selection is populated only
// when the request set ForceStructured.
type Completion struct {
	Text      string           `json:"text"`
	Selection *ActionSelection `json:"selection,omitempty"`
	Usage     Usage            `json:"usage"`
}

// Backend is the model-backend contract consumed by the agent loop.
type Backend interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// ParseSelection extracts a {name, arguments} object from raw model text.
// It tries, in order: the whole trimmed text as JSON, a ```json fenced block,
// and the outermost brace-delimited object. An object without a "name" field
// does not count.
func ParseSelection(text string) (*ActionSelection, bool) {
	candidates := selectionCandidates(text)
	for _, raw := range candidates {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			continue
		}
		name, _ := obj["name"].(string)
		if name == "" {
			continue
		}
		args, _ := obj["arguments"].(map[string]any)
		if args == nil {
			// Some models emit "parameters" instead.
			args, _ = obj["parameters"].(map[string]any)
		}
		if args == nil {
			args = map[string]any{}
		}
		return &ActionSelection{Name: name, Arguments: args}, true
	}
	return nil, false
}

// selectionCandidates returns the ordered raw JSON candidates found in text.
func selectionCandidates(text string) []string {
	var out []string

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		out = append(out, trimmed)
	}

	if block, ok := fencedJSONBlock(text); ok {
		out = append(out, block)
	}

	if start := strings.Index(text, "{"); start != -1 {
		if end := matchingBrace(text, start); end > start {
			out = append(out, text[start:end+1])
		}
	}

	return out
}

// fencedJSONBlock returns the contents of the first ```json (or bare ```)
// fence containing a brace-delimited object.
func fencedJSONBlock(text string) (string, bool) {
	rest := text
	for {
		open := strings.Index(rest, "```")
		if open == -1 {
			return "", false
		}
		body := rest[open+3:]
		if nl := strings.Index(body, "\n"); nl != -1 {
			lang := strings.TrimSpace(body[:nl])
			if lang == "" || strings.EqualFold(lang, "json") {
				body = body[nl+1:]
				closeIdx := strings.Index(body, "```")
				if closeIdx == -1 {
					return "", false
				}
				block := strings.TrimSpace(body[:closeIdx])
				if strings.HasPrefix(block, "{") {
					return block, true
				}
			}
		}
		next := strings.Index(rest[open+3:], "```")
		if next == -1 {
			return "", false
		}
		rest = rest[open+3+next+3:]
	}
}

// matchingBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings. Returns -1 when unbalanced.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
