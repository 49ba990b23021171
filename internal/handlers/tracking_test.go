package handlers

import "testing"

func TestNormalizeTrackingNumberUppercases(t *testing.T) {
	if got := normalizeTrackingNumber("msl-abc1234567"); got != "MSL-ABC1234567" {
		t.Fatalf("expected MSL-ABC1234567, got %q", got)
	}
}

func TestNormalizeTrackingNumberTrims(t *testing.T) {
	if got := normalizeTrackingNumber("  msl-ABC1234567 "); got != "MSL-ABC1234567" {
		t.Fatalf("expected trimmed uppercase value, got %q", got)
	}
}
