// Package engine implements the decision pipeline (C3–C5, C7): the
// per-side state machine, the hedge controller, the sync-shield grace
// predicate, and the nine-step tick pipeline that drives them.
package engine

import (
	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/Adikumaw/elastic-dca-trader/internal/identity"
	"github.com/shopspring/decimal"
)

// TickInput is one heartbeat from the terminal (Endpoint A request body,
// decoded).
type TickInput struct {
	AccountID string
	Symbol    string
	Ask       decimal.Decimal
	Bid       decimal.Decimal
	Equity    decimal.Decimal
	Balance   decimal.Decimal
	Positions []domain.Position
}

// Result is the single action the pipeline decided to emit this tick.
type Result struct {
	Action  domain.ActionType
	Volume  decimal.Decimal
	Comment string
	Alert   bool
}

func wait() Result {
	return Result{Action: domain.ActionWait}
}

// currentPrice returns the side's execution price: ask for BUY, bid for
// SELL — the convention used throughout step 7 of the pipeline.
func currentPrice(side domain.Side, ask, bid decimal.Decimal) decimal.Decimal {
	if side == domain.SideBuy {
		return ask
	}
	return bid
}

// countManaged counts positions tagged for this side and session, ignoring
// foreign (unparseable) comments.
func countManaged(positions []domain.Position, side domain.Side, sessionID string) int {
	if sessionID == "" {
		return 0
	}
	n := 0
	for _, p := range positions {
		tag, err := identity.Decode(p.Comment)
		if err != nil {
			continue
		}
		if tag.Side == side && tag.SessionID() == sessionID {
			n++
		}
	}
	return n
}

// closeComment is the CLOSE_ALL comment: the session id itself already
// carries the side prefix ("buy_..."/"sell_...") required by §6.
func closeComment(rt domain.RuntimeState) string {
	return rt.SessionID
}
