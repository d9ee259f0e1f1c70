package engine

import "time"

// SyncShieldGrace is the broker-acknowledgment latency window (C7, §4.7).
const SyncShieldGrace = 5 * time.Second

// InFlight reports whether an order sent at lastOrderSentAt may still be
// in flight at the broker, per §4.7's predicate. A zero lastOrderSentAt
// means no order has ever been sent on this side; it is never in flight.
func InFlight(lastOrderSentAt, now time.Time) bool {
	if lastOrderSentAt.IsZero() {
		return false
	}
	return now.Sub(lastOrderSentAt) < SyncShieldGrace
}
