package domain

import "github.com/shopspring/decimal"

// Position is one broker-reported open position, as delivered in a tick
// payload (Endpoint A, §6).
type Position struct {
	Ticket  int64           `json:"ticket"`
	Type    string          `json:"type"` // "BUY" or "SELL"
	Volume  decimal.Decimal `json:"volume"`
	Price   decimal.Decimal `json:"price"`
	Profit  decimal.Decimal `json:"profit"`
	Comment string          `json:"comment"`
}

// MarketReading is the last-seen market snapshot (§3 Global runtime).
type MarketReading struct {
	AccountID string          `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Ask       decimal.Decimal `json:"ask"`
	Bid       decimal.Decimal `json:"bid"`
	Equity    decimal.Decimal `json:"equity"`
	Balance   decimal.Decimal `json:"balance"`
}

// Mid is the midpoint price used for the price-history ring and direction.
func (m MarketReading) Mid() decimal.Decimal {
	return m.Ask.Add(m.Bid).Div(decimal.NewFromInt(2))
}
