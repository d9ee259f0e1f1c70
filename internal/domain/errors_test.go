package domain

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	baseErr := errors.New("missing value")
	err := &ConfigError{Field: "tp_value", Err: baseErr}

	t.Run("never retriable", func(t *testing.T) {
		if err.IsRetriable() {
			t.Error("ConfigError should never be retriable")
		}
	})

	t.Run("message format", func(t *testing.T) {
		expected := "config error [tp_value]: missing value"
		if err.Error() != expected {
			t.Errorf("Error message = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("unwraps", func(t *testing.T) {
		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})
}

func TestIdentityConflictError(t *testing.T) {
	err := &IdentityConflictError{
		Side:     SideBuy,
		Ticket:   42,
		Expected: "buy_a1b2c3d4",
		Actual:   "buy_deadbeef",
	}

	t.Run("never retriable", func(t *testing.T) {
		if err.IsRetriable() {
			t.Error("IdentityConflictError should never be retriable")
		}
	})

	t.Run("IsRetriable helper agrees", func(t *testing.T) {
		if IsRetriable(err) {
			t.Error("IsRetriable should return false for identity conflicts")
		}
		if IsRetriable(errors.New("plain error")) {
			t.Error("IsRetriable should return false for a plain error")
		}
	})

	t.Run("message includes ticket and both hashes", func(t *testing.T) {
		msg := err.Error()
		for _, want := range []string{"42", "buy_a1b2c3d4", "buy_deadbeef"} {
			if !contains(msg, want) {
				t.Errorf("Error message %q should contain %q", msg, want)
			}
		}
	})
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
