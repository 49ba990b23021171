package handlers

import (
	"regexp"
	"testing"
)

func TestNewResetTokenShape(t *testing.T) {
	hexToken := regexp.MustCompile(`^[0-9a-f]{64}$`)

	first, err := newResetToken()
	if err != nil {
		t.Fatalf("newResetToken returned error: %v", err)
	}
	if !hexToken.MatchString(first) {
		t.Fatalf("expected 64 hex chars, got %q", first)
	}

	second, err := newResetToken()
	if err != nil {
		t.Fatalf("newResetToken returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct reset tokens")
	}
}

func TestLowerCamel(t *testing.T) {
	if got := lowerCamel("FullName"); got != "fullName" {
		t.Fatalf("expected fullName, got %q", got)
	}
	if got := lowerCamel(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
