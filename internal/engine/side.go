package engine

import (
	"time"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/Adikumaw/elastic-dca-trader/internal/identity"
	"github.com/shopspring/decimal"
)

// ArmFromControl performs the Idle → WaitingLimit / Idle → Armed
// transition of §4.3, triggered by the operator setting on=true. It
// allocates a fresh session and, for a market entry (limit_price == 0),
// leaves the side ready for the first tick's expansion check to fire
// row 0 and capture the real fill price.
func ArmFromControl(rt domain.RuntimeState, settings domain.SideSettings, side domain.Side) domain.RuntimeState {
	if rt.SessionID != "" {
		return rt
	}
	rt.SessionID = identity.NewSessionID(side)
	rt.ExecMap = map[int]domain.RowExecStats{}
	rt.StartRef = decimal.Zero
	rt.WaitingLimit = settings.LimitPrice.IsPositive()
	return rt
}

// Terminate performs the Closing → Idle transition (and the identical
// reset used by the external-close path of step 6): clear the session
// and its flags, then — if cyclic_on and the side is still switched on —
// leave it ready for the next tick's expansion check to lazily re-arm a
// fresh session. Otherwise switch the side off, matching the original's
// non-cyclic behavior of stopping rather than idling-while-armed.
func Terminate(rt domain.RuntimeState, cyclicOn bool) domain.RuntimeState {
	rt.ExecMap = map[int]domain.RowExecStats{}
	rt.SessionID = ""
	rt.IsClosing = false
	rt.HedgeTriggered = false
	rt.WaitingLimit = false
	rt.StartRef = decimal.Zero
	rt.EquityAtArm = decimal.Zero
	if !cyclicOn {
		rt.On = false
	}
	return rt
}

// CandidateExpansion folds steps 7 and 8 of §4.4 into one pure check: lazy
// session (re-)arming for a side that is on but sessionless (the cyclic
// re-arm path left by Terminate), the waiting-limit crossing check, and
// the grid expansion/row-0 fire. It returns the possibly-updated runtime
// and, if a fire condition was met, the action to emit.
func CandidateExpansion(rt domain.RuntimeState, settings domain.SideSettings, side domain.Side, ask, bid, equity decimal.Decimal, now time.Time) (domain.RuntimeState, *Result) {
	if !rt.On || rt.IsClosing || rt.HedgeTriggered {
		return rt, nil
	}

	if rt.SessionID == "" {
		rt = ArmFromControl(rt, settings, side)
	}

	if rt.WaitingLimit {
		crossed := false
		if side == domain.SideBuy {
			crossed = ask.LessThanOrEqual(settings.LimitPrice)
		} else {
			crossed = bid.GreaterThanOrEqual(settings.LimitPrice)
		}
		if !crossed {
			return rt, nil
		}
		rt.WaitingLimit = false
		rt.StartRef = currentPrice(side, ask, bid)
	}

	k := rt.NextIndex()
	if k >= len(settings.Rows) {
		return rt, nil
	}
	row := settings.Rows[k]

	var fire bool
	var entry decimal.Decimal
	switch {
	case k == 0:
		fire = true
		entry = currentPrice(side, ask, bid)
		if rt.StartRef.IsZero() {
			rt.StartRef = entry
		}
	case side == domain.SideBuy:
		prev := rt.ExecMap[k-1].EntryPrice
		entry = ask
		fire = ask.LessThanOrEqual(prev.Sub(row.DollarGap))
	default:
		prev := rt.ExecMap[k-1].EntryPrice
		entry = bid
		fire = bid.GreaterThanOrEqual(prev.Add(row.DollarGap))
	}
	if !fire {
		return rt, nil
	}

	// Copy the map before writing: rt.ExecMap is shared with the caller's
	// state, and a fire attempt that loses the tie-break must leave it as is.
	rt = rt.Clone()
	rt.ExecMap[k] = domain.RowExecStats{
		Index:      k,
		EntryPrice: entry,
		Lots:       row.Lots,
		Profit:     decimal.Zero,
		Timestamp:  now,
	}
	rt.LastOrderSentAt = now
	if k == 0 {
		rt.EquityAtArm = equity
	}

	action := &Result{
		Action:  side.Action(),
		Volume:  row.Lots,
		Comment: identity.Encode(side, identity.HashOf(rt.SessionID), k),
		Alert:   row.Alert,
	}
	return rt, action
}
