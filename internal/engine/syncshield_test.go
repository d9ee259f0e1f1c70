package engine

import (
	"testing"
	"time"
)

func TestInFlight(t *testing.T) {
	base := time.Unix(1000, 0)

	t.Run("never sent is not in flight", func(t *testing.T) {
		if InFlight(time.Time{}, base) {
			t.Error("expected zero-value timestamp to never be in flight")
		}
	})

	t.Run("within grace window", func(t *testing.T) {
		sentAt := base
		now := sentAt.Add(4 * time.Second)
		if !InFlight(sentAt, now) {
			t.Error("expected in flight before grace elapses")
		}
	})

	t.Run("exactly at grace boundary is not in flight", func(t *testing.T) {
		sentAt := base
		now := sentAt.Add(SyncShieldGrace)
		if InFlight(sentAt, now) {
			t.Error("expected grace boundary to not be in flight")
		}
	})

	t.Run("well past grace window", func(t *testing.T) {
		sentAt := base
		now := sentAt.Add(10 * time.Second)
		if InFlight(sentAt, now) {
			t.Error("expected not in flight after grace elapses")
		}
	})
}
