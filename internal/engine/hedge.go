package engine

import (
	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/Adikumaw/elastic-dca-trader/internal/identity"
	"github.com/shopspring/decimal"
)

// Apply runs the hedge controller (C5, §4.5) against the opposite side
// once the losing side's trigger has fired. It chooses Case A or Case B
// by whether the opposite side has any fired rows yet — this also covers
// the opposite side being switched off, sessionless, or merely waiting
// on its limit with nothing fired, all of which share the same "force a
// fresh single-row grid" treatment as Case A.
func Apply(opposite domain.RuntimeState, oppositeSettings domain.SideSettings, oppositeSide domain.Side, losingVolume, ask, bid decimal.Decimal) (domain.RuntimeState, domain.SideSettings) {
	if len(opposite.ExecMap) == 0 {
		return caseA(opposite, oppositeSettings, oppositeSide, losingVolume)
	}
	return caseB(opposite, oppositeSettings, oppositeSide, losingVolume, ask, bid)
}

func caseA(opposite domain.RuntimeState, oppositeSettings domain.SideSettings, oppositeSide domain.Side, losingVolume decimal.Decimal) (domain.RuntimeState, domain.SideSettings) {
	opposite.On = true
	opposite.SessionID = identity.NewSessionID(oppositeSide)
	opposite.ExecMap = map[int]domain.RowExecStats{}
	opposite.WaitingLimit = false
	opposite.StartRef = decimal.Zero
	opposite.IsClosing = false
	opposite.HedgeTriggered = false

	oppositeSettings.Rows = []domain.GridRow{{
		Index:     0,
		DollarGap: decimal.Zero,
		Lots:      losingVolume,
		Alert:     true,
	}}
	return opposite, oppositeSettings
}

func caseB(opposite domain.RuntimeState, oppositeSettings domain.SideSettings, oppositeSide domain.Side, losingVolume, ask, bid decimal.Decimal) (domain.RuntimeState, domain.SideSettings) {
	last, _ := opposite.LastExecuted()
	pNow := currentPrice(oppositeSide, ask, bid)
	gap := last.EntryPrice.Sub(pNow).Abs()

	row := domain.GridRow{
		Index:     len(oppositeSettings.Rows),
		DollarGap: gap,
		Lots:      losingVolume,
		Alert:     true,
	}
	oppositeSettings.Rows = append(oppositeSettings.Rows, row)
	return opposite, oppositeSettings
}
