// Package api implements the C6 read-model/control HTTP surface: gin
// handlers that translate Endpoint A–D JSON bodies into engine.Event
// values and block on the per-request reply channel.
package api

import (
	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/Adikumaw/elastic-dca-trader/internal/engine"
	"github.com/shopspring/decimal"
)

// tickPositionDTO is one broker-reported position in an Endpoint A body.
type tickPositionDTO struct {
	Ticket  int64           `json:"ticket" binding:"required"`
	Type    string          `json:"type" binding:"required,oneof=BUY SELL"`
	Volume  decimal.Decimal `json:"volume"`
	Price   decimal.Decimal `json:"price"`
	Profit  decimal.Decimal `json:"profit"`
	Comment string          `json:"comment"`
}

// tickRequestDTO is the Endpoint A request body.
type tickRequestDTO struct {
	AccountID string            `json:"account_id" binding:"required"`
	Equity    decimal.Decimal   `json:"equity"`
	Balance   decimal.Decimal   `json:"balance"`
	Symbol    string            `json:"symbol" binding:"required"`
	Ask       decimal.Decimal   `json:"ask" binding:"required"`
	Bid       decimal.Decimal   `json:"bid" binding:"required"`
	Positions []tickPositionDTO `json:"positions"`
}

func (d tickRequestDTO) toInput() engine.TickInput {
	positions := make([]domain.Position, len(d.Positions))
	for i, p := range d.Positions {
		positions[i] = domain.Position{
			Ticket:  p.Ticket,
			Type:    p.Type,
			Volume:  p.Volume,
			Price:   p.Price,
			Profit:  p.Profit,
			Comment: p.Comment,
		}
	}
	return engine.TickInput{
		AccountID: d.AccountID,
		Symbol:    d.Symbol,
		Ask:       d.Ask,
		Bid:       d.Bid,
		Equity:    d.Equity,
		Balance:   d.Balance,
		Positions: positions,
	}
}

// tickResponseDTO is the Endpoint A response body.
type tickResponseDTO struct {
	Action  domain.ActionType `json:"action"`
	Volume  *decimal.Decimal  `json:"volume,omitempty"`
	Comment string            `json:"comment,omitempty"`
	Alert   bool              `json:"alert,omitempty"`
}

func newTickResponse(r engine.Result) tickResponseDTO {
	resp := tickResponseDTO{Action: r.Action, Comment: r.Comment, Alert: r.Alert}
	if r.Action == domain.ActionBuy || r.Action == domain.ActionSell {
		v := r.Volume
		resp.Volume = &v
	}
	return resp
}

// uiDataDTO is the Endpoint B response body: the full read-model snapshot.
type uiDataDTO struct {
	Settings   domain.UserSettings `json:"settings"`
	Runtime    runtimeDTO          `json:"runtime"`
	Market     marketDTO           `json:"market"`
	LastUpdate string              `json:"last_update"`
}

type runtimeDTO struct {
	Buy  domain.RuntimeState `json:"buy"`
	Sell domain.RuntimeState `json:"sell"`
}

type marketDTO struct {
	domain.MarketReading
	PriceDirection string               `json:"price_direction"`
	History        []domain.PriceSample `json:"history"`
}

func newUIData(state domain.SystemState) uiDataDTO {
	return uiDataDTO{
		Settings: state.Settings,
		Runtime:  runtimeDTO{Buy: state.BuyRuntime, Sell: state.SellRuntime},
		Market: marketDTO{
			MarketReading:  state.Global.Market,
			PriceDirection: state.Global.PriceDirection(),
			History:        state.Global.PriceHistory,
		},
		LastUpdate: state.LastUpdate.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// controlRequestDTO is the Endpoint D request body; all fields optional.
type controlRequestDTO struct {
	BuySwitch      *bool `json:"buy_switch"`
	SellSwitch     *bool `json:"sell_switch"`
	Cyclic         *bool `json:"cyclic"`
	EmergencyClose *bool `json:"emergency_close"`
}

func (d controlRequestDTO) toCommand() engine.ControlCommand {
	return engine.ControlCommand{
		BuySwitch:      d.BuySwitch,
		SellSwitch:     d.SellSwitch,
		Cyclic:         d.Cyclic,
		EmergencyClose: d.EmergencyClose,
	}
}

// healthDTO is the GET /api/health response body (§3 expansion).
type healthDTO struct {
	Status  string           `json:"status"`
	Error   string           `json:"error"`
	Version string           `json:"version"`
	Buy     domain.SideState `json:"buy"`
	Sell    domain.SideState `json:"sell"`
	Price   decimal.Decimal  `json:"price"`
}
