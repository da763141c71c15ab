package agentloop

import (
	"encoding/json"
	"strings"
)

// ExtractAction pulls exactly one capability selection out of raw model text.
// The parser chain is fixed and ordered: a ```json fenced block first, then
// the outermost bare-brace object, then failure. The same input always
// resolves the same way.
func ExtractAction(text string) (*ActionEvent, bool) {
	if block, ok := fencedBlock(text); ok {
		if action, ok := decodeAction(block); ok {
			return action, true
		}
	}

	if start := strings.Index(text, "{"); start != -1 {
		if end := matchingBrace(text, start); end > start {
			if action, ok := decodeAction(text[start : end+1]); ok {
				return action, true
			}
		}
	}

	return nil, false
}

// decodeAction parses a raw JSON object into an ActionEvent. The object must
// carry a "name" field; arguments come from "arguments" or, for models that
// follow the older convention, "parameters".
func decodeAction(raw string) (*ActionEvent, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, false
	}
	name, _ := obj["name"].(string)
	if name == "" {
		return nil, false
	}
	args, _ := obj["arguments"].(map[string]any)
	if args == nil {
		args, _ = obj["parameters"].(map[string]any)
	}
	if args == nil {
		args = map[string]any{}
	}
	return &ActionEvent{Capability: name, Arguments: args}, true
}

// fencedBlock returns the first ``` fence (optionally tagged json) whose body
// starts with a brace.
func fencedBlock(text string) (string, bool) {
	rest := text
	for {
		open := strings.Index(rest, "```")
		if open == -1 {
			return "", false
		}
		body := rest[open+3:]
		nl := strings.Index(body, "\n")
		if nl == -1 {
			return "", false
		}
		lang := strings.TrimSpace(body[:nl])
		inner := body[nl+1:]
		closeIdx := strings.Index(inner, "```")
		if closeIdx == -1 {
			return "", false
		}
		if lang == "" || strings.EqualFold(lang, "json") {
			block := strings.TrimSpace(inner[:closeIdx])
			if strings.HasPrefix(block, "{") {
				return block, true
			}
		}
		rest = inner[closeIdx+3:]
	}
}

// matchingBrace returns the index of the brace closing the one at start,
// ignoring braces inside JSON strings. Returns -1 when unbalanced.
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
