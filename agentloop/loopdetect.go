package agentloop

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// actionSignature computes a deterministic signature for an action
// (capability name + hash of arguments).
func actionSignature(action *ActionEvent) string {
	raw, err := json.Marshal(action.Arguments)
	if err != nil {
		raw = []byte(action.Capability)
	}
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%x", action.Capability, h[:8])
}

// recentActionSignatures extracts signatures from the most recent action
// events, returned in chronological order.
func recentActionSignatures(events []Event, count int) []string {
	var sigs []string
	for i := len(events) - 1; i >= 0 && len(sigs) < count; i-- {
		if events[i].Kind == EventAction && events[i].Action != nil {
			sigs = append(sigs, actionSignature(events[i].Action))
		}
	}
	for i, j := 0, len(sigs)-1; i < j; i, j = i+1, j-1 {
		sigs[i], sigs[j] = sigs[j], sigs[i]
	}
	return sigs
}

// DetectLoop checks whether the last windowSize actions follow a repeating
// pattern of length 1, 2, or 3. A stuck model tends to reissue the same
// action or alternate between a tiny set of them.
func DetectLoop(events []Event, windowSize int) bool {
	sigs := recentActionSignatures(events, windowSize)
	if len(sigs) < windowSize {
		return false
	}

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 {
			continue
		}
		pattern := sigs[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if sigs[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
			if !allMatch {
				break
			}
		}
		if allMatch {
			return true
		}
	}

	return false
}
