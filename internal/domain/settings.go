package domain

import "github.com/shopspring/decimal"

// GridRow is one planned entry at an offset from the previous row.
// Row 0 is the anchor entry; its DollarGap is never read (I-row0).
type GridRow struct {
	Index     int             `json:"index"`
	DollarGap decimal.Decimal `json:"dollar_gap"`
	Lots      decimal.Decimal `json:"lots"`
	Alert     bool            `json:"alert"`
}

// SideSettings is the user-configurable behavior of one side.
type SideSettings struct {
	LimitPrice decimal.Decimal `json:"limit_price"`
	TPType     TPType          `json:"tp_type"`
	TPValue    decimal.Decimal `json:"tp_value"`
	HedgeValue decimal.Decimal `json:"hedge_value"`
	Rows       []GridRow       `json:"rows"`
}

// NewSideSettings returns the zero-value settings: TP and hedge disabled,
// market-entry (no limit), no rows configured.
func NewSideSettings() SideSettings {
	return SideSettings{
		LimitPrice: decimal.Zero,
		TPType:     TPNone,
		TPValue:    decimal.Zero,
		HedgeValue: decimal.Zero,
		Rows:       nil,
	}
}

// UserSettings is the full per-instance configuration: both sides.
type UserSettings struct {
	Buy  SideSettings `json:"buy"`
	Sell SideSettings `json:"sell"`
}

// NewUserSettings returns settings with both sides at their zero value.
func NewUserSettings() UserSettings {
	return UserSettings{
		Buy:  NewSideSettings(),
		Sell: NewSideSettings(),
	}
}

// Get returns the settings for the given side.
func (u UserSettings) Get(side Side) SideSettings {
	if side == SideBuy {
		return u.Buy
	}
	return u.Sell
}

// With returns a copy of u with the given side's settings replaced.
func (u UserSettings) With(side Side, s SideSettings) UserSettings {
	if side == SideBuy {
		u.Buy = s
	} else {
		u.Sell = s
	}
	return u
}

// ValidateAgainst rejects a settings replacement that would shrink rows
// below the number of rows already executed this session (§6, §7).
func (s SideSettings) ValidateAgainst(execMapSize int) error {
	if s.TPValue.IsNegative() {
		return &ConfigError{Field: "tp_value", Err: errNegative}
	}
	if s.HedgeValue.IsNegative() {
		return &ConfigError{Field: "hedge_value", Err: errNegative}
	}
	if s.LimitPrice.IsNegative() {
		return &ConfigError{Field: "limit_price", Err: errNegative}
	}
	if len(s.Rows) < execMapSize {
		return &ConfigError{Field: "rows", Err: errRowsShrunkPastExec}
	}
	for _, r := range s.Rows {
		if r.Lots.IsNegative() {
			return &ConfigError{Field: "rows.lots", Err: errNegative}
		}
		if r.DollarGap.IsNegative() {
			return &ConfigError{Field: "rows.dollar_gap", Err: errNegative}
		}
	}
	return nil
}
