package agentloop

import (
	"fmt"
	"strings"
)

// TruncationMode specifies how oversized text is cut down.
type TruncationMode string

const (
	TruncateMiddle TruncationMode = "middle"
	TruncateTail   TruncationMode = "tail"
)

// TruncateText applies character-based truncation to text. TruncateMiddle
// keeps the head and tail halves; TruncateTail keeps only the end.
func TruncateText(text string, maxChars int, mode TruncationMode) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	removed := len(text) - maxChars
	switch mode {
	case TruncateTail:
		return fmt.Sprintf("[... %d characters omitted ...]\n", removed) +
			text[len(text)-maxChars:]
	default:
		half := maxChars / 2
		return text[:half] +
			fmt.Sprintf("\n[... %d characters omitted ...]\n", removed) +
			text[len(text)-half:]
	}
}

// TruncateLines applies line-based truncation using a head/tail split.
func TruncateLines(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	if maxLines <= 0 || len(lines) <= maxLines {
		return text
	}

	headCount := maxLines / 2
	tailCount := maxLines - headCount
	omitted := len(lines) - headCount - tailCount

	return strings.Join(lines[:headCount], "\n") +
		fmt.Sprintf("\n[... %d lines omitted ...]\n", omitted) +
		strings.Join(lines[len(lines)-tailCount:], "\n")
}
