package handlers

import (
	"regexp"
	"testing"
)

var trackingFormat = regexp.MustCompile(`^MSL-[0-9A-F]{10}$`)

func TestNewTrackingCandidateFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		candidate, err := newTrackingCandidate()
		if err != nil {
			t.Fatalf("newTrackingCandidate returned error: %v", err)
		}
		if !trackingFormat.MatchString(candidate) {
			t.Fatalf("candidate %q does not match MSL-<10 uppercase hex>", candidate)
		}
	}
}

func TestNewTrackingCandidateVaries(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		candidate, err := newTrackingCandidate()
		if err != nil {
			t.Fatalf("newTrackingCandidate returned error: %v", err)
		}
		if _, ok := seen[candidate]; ok {
			t.Fatalf("candidate %q repeated within 20 draws", candidate)
		}
		seen[candidate] = struct{}{}
	}
}
