package engine

import (
	"time"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/Adikumaw/elastic-dca-trader/internal/identity"
	"github.com/shopspring/decimal"
)

var sides = [2]domain.Side{domain.SideBuy, domain.SideSell}

// candidate is one side's proposed emission for this tick, ranked by the
// tier it belongs to in the §4.4 priority chain. Lower tier wins; a tie
// goes to whichever side was evaluated first (BUY, by the order of sides).
type candidate struct {
	tier   int
	result Result
}

const (
	tierCloseReemit = 0
	tierCloseNewTP  = 1
	tierExpansion   = 2
)

// ProcessTick runs the full nine-step pipeline (C4, §4.4) against one
// heartbeat and returns the updated state and the single action to emit.
// It is a pure function: the caller (the sequencer) owns persistence and
// I/O, this only computes the new state.
func ProcessTick(state domain.SystemState, in TickInput, now time.Time) (domain.SystemState, Result) {
	if state.Global.ErrorStatus != "" {
		return state, wait()
	}

	state.Global.Market = domain.MarketReading{
		AccountID: in.AccountID,
		Symbol:    in.Symbol,
		Ask:       in.Ask,
		Bid:       in.Bid,
		Equity:    in.Equity,
		Balance:   in.Balance,
	}
	state.Global.PushPriceSample(domain.PriceSample{Mid: state.Global.Market.Mid(), At: now})
	state.LastUpdate = now

	skipped := map[domain.Side]bool{}
	// hadFills records whether each side had fired rows going into this
	// tick, before the rebuild below replaces its exec_map with what the
	// feed reports. The external-close check keys on it: once the grace
	// window has passed, a fully drained feed leaves the rebuilt map empty.
	hadFills := map[domain.Side]bool{}
	for _, side := range sides {
		rt := state.Runtime(side)
		if rt.SessionID == "" {
			continue
		}
		var conflictErr *domain.IdentityConflictError
		managed := map[int]domain.Position{}
		for _, p := range in.Positions {
			tag, err := identity.Decode(p.Comment)
			if err != nil || tag.Side != side {
				continue
			}
			if tag.SessionID() != rt.SessionID {
				if conflictErr == nil {
					conflictErr = &domain.IdentityConflictError{
						Side:     side,
						Ticket:   p.Ticket,
						Expected: identity.HashOf(rt.SessionID),
						Actual:   tag.Hash,
					}
				}
				continue
			}
			managed[tag.Index] = p
		}
		if conflictErr != nil {
			state.Global.ErrorStatus = conflictErr.Error()
			skipped[side] = true
			continue
		}
		newExec := make(map[int]domain.RowExecStats, len(managed))
		for idx, p := range managed {
			newExec[idx] = domain.RowExecStats{
				Index:      idx,
				EntryPrice: p.Price,
				Lots:       p.Volume,
				Profit:     p.Profit,
				Timestamp:  now,
			}
		}
		if InFlight(rt.LastOrderSentAt, now) {
			// A row just fired may not be reflected in the broker's
			// position feed yet. Carry forward any exec_map entry the
			// feed dropped this tick rather than let it vanish, but
			// still take the feed's numbers for anything it does
			// report -- a dropped row during grace must not also
			// block a genuine profit update on the rows that did land.
			for idx, old := range rt.ExecMap {
				if _, ok := newExec[idx]; !ok {
					newExec[idx] = old
				}
			}
		}
		hadFills[side] = len(rt.ExecMap) > 0
		rt.ExecMap = newExec
		state = state.WithRuntime(side, rt)
	}

	if state.Global.ErrorStatus != "" {
		return state, wait()
	}

	var best *candidate
	var bestSide domain.Side
	consider := func(side domain.Side, tier int, result Result) {
		if best == nil || tier < best.tier {
			best = &candidate{tier: tier, result: result}
			bestSide = side
		}
	}

	// justHedged marks a side forced/extended by the hedge controller
	// during THIS tick's pass over the other side (§4.5 fires "next
	// tick"). Since both sides are evaluated in one pass, a side hedged
	// into earlier in this same loop must not also fire its own
	// expansion in the very iteration that injected it.
	justHedged := map[domain.Side]bool{}

	// pendingExpansion holds each side's row-0/row-k fire attempt until
	// the tie-break is decided. Only the winning side's attempt actually
	// sent an order; a losing side's ExecMap/LastOrderSentAt write must
	// not be committed, or it would record a phantom fill for an order
	// that never went out and block that side's own retry for the rest
	// of the sync-shield grace window (§4.4).
	pendingExpansion := map[domain.Side]domain.RuntimeState{}

	for _, side := range sides {
		if skipped[side] || justHedged[side] {
			continue
		}
		rt := state.Runtime(side)
		settings := state.Settings.Get(side)

		if rt.IsClosing {
			count := countManaged(in.Positions, side, rt.SessionID)
			switch {
			case count > 0:
				rt.LastOrderSentAt = now
				state = state.WithRuntime(side, rt)
				consider(side, tierCloseReemit, Result{Action: domain.ActionCloseAll, Comment: closeComment(rt)})
			case !InFlight(rt.LastOrderSentAt, now):
				rt = Terminate(rt, state.Global.CyclicOn)
				state = state.WithRuntime(side, rt)
			}
			continue
		}

		if !rt.HedgeTriggered && len(rt.ExecMap) > 0 && settings.HedgeValue.IsPositive() {
			if rt.SideProfit().LessThanOrEqual(settings.HedgeValue.Neg()) {
				rt.HedgeTriggered = true
				volume := rt.SideVolume()
				opposite := side.Opposite()
				oppRt, oppSettings := Apply(state.Runtime(opposite), state.Settings.Get(opposite), opposite, volume, in.Ask, in.Bid)
				state = state.WithRuntime(opposite, oppRt)
				state.Settings = state.Settings.With(opposite, oppSettings)
				state = state.WithRuntime(side, rt)
				justHedged[opposite] = true
				// The opposite side may already have been evaluated this
				// tick (SELL hedging into BUY); its pending expansion is
				// dropped so nothing fires for it on the hedge tick.
				delete(pendingExpansion, opposite)
				if best != nil && bestSide == opposite && best.tier == tierExpansion {
					best = nil
				}
				continue
			}
		}
		if rt.HedgeTriggered {
			continue
		}

		if len(rt.ExecMap) > 0 && settings.TPValue.IsPositive() {
			if target, ok := tpTarget(settings, rt, in.Equity, in.Balance); ok && target.IsPositive() {
				if rt.SideProfit().GreaterThanOrEqual(target) {
					rt.IsClosing = true
					rt.LastOrderSentAt = now
					state = state.WithRuntime(side, rt)
					consider(side, tierCloseNewTP, Result{Action: domain.ActionCloseAll, Comment: closeComment(rt)})
					continue
				}
			}
		}

		if rt.SessionID != "" && hadFills[side] && !rt.WaitingLimit {
			count := countManaged(in.Positions, side, rt.SessionID)
			if count == 0 && !InFlight(rt.LastOrderSentAt, now) {
				rt = Terminate(rt, state.Global.CyclicOn)
				state = state.WithRuntime(side, rt)
				continue
			}
		}

		newRt, action := CandidateExpansion(rt, settings, side, in.Ask, in.Bid, in.Equity, now)
		if action == nil {
			state = state.WithRuntime(side, newRt)
			continue
		}
		pendingExpansion[side] = newRt
		consider(side, tierExpansion, *action)
	}

	if best == nil {
		return state, wait()
	}
	if best.tier == tierExpansion {
		state = state.WithRuntime(bestSide, pendingExpansion[bestSide])
	}
	return state, best.result
}

// tpTarget computes the absolute take-profit target (§4.4 step 5), or
// ok=false if the side has no take-profit basis configured.
func tpTarget(settings domain.SideSettings, rt domain.RuntimeState, equity, balance decimal.Decimal) (decimal.Decimal, bool) {
	switch settings.TPType {
	case domain.TPEquityPct:
		basis := rt.EquityAtArm
		if basis.IsZero() {
			basis = equity
		}
		return settings.TPValue.Div(decimal.NewFromInt(100)).Mul(basis), true
	case domain.TPBalancePct:
		return settings.TPValue.Div(decimal.NewFromInt(100)).Mul(balance), true
	case domain.TPFixedMoney:
		return settings.TPValue, true
	default:
		return decimal.Zero, false
	}
}
