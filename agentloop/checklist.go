package agentloop

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ChecklistItem is one step in the durable checklist. Identity is the
// sequence number, not the position, so completion survives plan revisions
// that keep a step's number.
type ChecklistItem struct {
	Number    int
	Text      string
	Completed bool
}

// PlanFingerprint returns a content hash of plan text, used to detect
// whether the plan changed since the checklist was last written.
func PlanFingerprint(plan string) string {
	sum := sha256.Sum256([]byte(plan))
	return fmt.Sprintf("%x", sum[:])
}

var (
	numberedStepRe  = regexp.MustCompile(`^\s*(\d+)[.)]\s+(.+)$`)
	checklistLineRe = regexp.MustCompile(`^- \[([ xX])\] (\d+)\. (.*)$`)
)

// ParsePlanSteps extracts ordered checklist items from plan text using the
// numbered-list convention. When no line matches, every non-empty,
// non-heading line becomes an unnumbered item counted from 1.
func ParsePlanSteps(plan string) []ChecklistItem {
	lines := strings.Split(plan, "\n")

	var items []ChecklistItem
	for _, line := range lines {
		if m := numberedStepRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			items = append(items, ChecklistItem{Number: n, Text: strings.TrimSpace(m[2])})
		}
	}
	if len(items) > 0 {
		return items
	}

	// Fallback: unnumbered plans still yield a usable checklist.
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		items = append(items, ChecklistItem{Number: len(items) + 1, Text: trimmed})
	}
	return items
}

// ChecklistSynchronizer keeps a checklist file in sync with the most recent
// plan without discarding user-visible completion marks.
type ChecklistSynchronizer struct {
	path            string
	title           string
	lastFingerprint string
	log             *zap.Logger
}

// NewChecklistSynchronizer creates a synchronizer writing to path.
func NewChecklistSynchronizer(path, title string, log *zap.Logger) *ChecklistSynchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChecklistSynchronizer{path: path, title: title, log: log}
}

// Path returns the checklist file path.
func (s *ChecklistSynchronizer) Path() string { return s.path }

// Sync brings the checklist file up to date with planText. It reports
// whether the file was rewritten. An unchanged fingerprint is a no-op, and a
// plan with zero extractable steps leaves the previous checklist untouched.
func (s *ChecklistSynchronizer) Sync(planText string) (bool, error) {
	fingerprint := PlanFingerprint(planText)
	if fingerprint == s.lastFingerprint {
		return false, nil
	}

	items := ParsePlanSteps(planText)
	if len(items) == 0 {
		s.log.Debug("plan yielded no checklist steps, keeping previous checklist",
			zap.String("path", s.path))
		return false, nil
	}

	if s.lastFingerprint != "" {
		// Plan revision: carry completion over by item number.
		completed := s.completedNumbers()
		for i := range items {
			if completed[items[i].Number] {
				items[i].Completed = true
			}
		}
	}

	if err := s.write(items); err != nil {
		return false, err
	}
	s.lastFingerprint = fingerprint
	s.log.Info("checklist synchronized",
		zap.String("path", s.path),
		zap.Int("items", len(items)))
	return true, nil
}

// Items reads the current checklist file. A missing file yields no items.
func (s *ChecklistSynchronizer) Items() []ChecklistItem {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var items []ChecklistItem
	for _, line := range strings.Split(string(data), "\n") {
		m := checklistLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		items = append(items, ChecklistItem{
			Number:    n,
			Text:      m[3],
			Completed: m[1] != " ",
		})
	}
	return items
}

// Progress returns the completed and total item counts from the file.
func (s *ChecklistSynchronizer) Progress() (done, total int) {
	for _, item := range s.Items() {
		total++
		if item.Completed {
			done++
		}
	}
	return done, total
}

func (s *ChecklistSynchronizer) completedNumbers() map[int]bool {
	completed := make(map[int]bool)
	for _, item := range s.Items() {
		if item.Completed {
			completed[item.Number] = true
		}
	}
	return completed
}

// write rewrites the checklist wholesale; the list is small enough that a
// diff-patch approach buys nothing.
func (s *ChecklistSynchronizer) write(items []ChecklistItem) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", s.title)
	for _, item := range items {
		mark := " "
		if item.Completed {
			mark = "x"
		}
		fmt.Fprintf(&sb, "- [%s] %d. %s\n", mark, item.Number, item.Text)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("checklist: create directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("checklist: write %s: %w", s.path, err)
	}
	return nil
}
