package domain

import "time"

// SystemState is the full durable aggregate: settings plus runtime for
// both sides, plus the global runtime (§3, §4.2). It is the unit the
// state store reads, mutates, and persists.
type SystemState struct {
	Settings    UserSettings  `json:"settings"`
	BuyRuntime  RuntimeState  `json:"buy_runtime"`
	SellRuntime RuntimeState  `json:"sell_runtime"`
	Global      GlobalRuntime `json:"global"`
	LastUpdate  time.Time     `json:"last_update"`
}

// NewSystemState returns the all-defaults boot state.
func NewSystemState() SystemState {
	return SystemState{
		Settings:    NewUserSettings(),
		BuyRuntime:  NewRuntimeState(),
		SellRuntime: NewRuntimeState(),
		Global:      NewGlobalRuntime(),
	}
}

// Runtime returns the given side's runtime state.
func (s SystemState) Runtime(side Side) RuntimeState {
	if side == SideBuy {
		return s.BuyRuntime
	}
	return s.SellRuntime
}

// WithRuntime returns a copy of s with the given side's runtime replaced.
func (s SystemState) WithRuntime(side Side, r RuntimeState) SystemState {
	if side == SideBuy {
		s.BuyRuntime = r
	} else {
		s.SellRuntime = r
	}
	return s
}

// Clone returns a deep-enough copy safe for concurrent reads (read-model).
func (s SystemState) Clone() SystemState {
	c := s
	c.BuyRuntime = s.BuyRuntime.Clone()
	c.SellRuntime = s.SellRuntime.Clone()
	c.Global.PriceHistory = append([]PriceSample(nil), s.Global.PriceHistory...)
	c.Settings.Buy.Rows = append([]GridRow(nil), s.Settings.Buy.Rows...)
	c.Settings.Sell.Rows = append([]GridRow(nil), s.Settings.Sell.Rows...)
	return c
}
