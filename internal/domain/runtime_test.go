package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRuntimeState_State(t *testing.T) {
	t.Run("idle when no session", func(t *testing.T) {
		r := NewRuntimeState()
		if r.State() != StateIdle {
			t.Errorf("expected idle, got %s", r.State())
		}
	})

	t.Run("waiting_limit when flagged", func(t *testing.T) {
		r := NewRuntimeState()
		r.SessionID = "buy_a1b2c3d4"
		r.WaitingLimit = true
		if r.State() != StateWaitingLimit {
			t.Errorf("expected waiting_limit, got %s", r.State())
		}
	})

	t.Run("armed once a session exists and is not waiting", func(t *testing.T) {
		r := NewRuntimeState()
		r.SessionID = "buy_a1b2c3d4"
		if r.State() != StateArmed {
			t.Errorf("expected armed, got %s", r.State())
		}
	})

	t.Run("closing takes priority over armed", func(t *testing.T) {
		r := NewRuntimeState()
		r.SessionID = "buy_a1b2c3d4"
		r.IsClosing = true
		if r.State() != StateClosing {
			t.Errorf("expected closing, got %s", r.State())
		}
	})

	t.Run("hedge_locked takes priority over closing", func(t *testing.T) {
		r := NewRuntimeState()
		r.SessionID = "buy_a1b2c3d4"
		r.IsClosing = true
		r.HedgeTriggered = true
		if r.State() != StateHedgeLocked {
			t.Errorf("expected hedge_locked, got %s", r.State())
		}
	})
}

func TestRuntimeState_SideProfitAndVolume(t *testing.T) {
	r := NewRuntimeState()
	r.ExecMap[0] = RowExecStats{Index: 0, Profit: decimal.NewFromInt(-10), Lots: decimal.NewFromFloat(0.01)}
	r.ExecMap[1] = RowExecStats{Index: 1, Profit: decimal.NewFromInt(-40), Lots: decimal.NewFromFloat(0.02)}

	if !r.SideProfit().Equal(decimal.NewFromInt(-50)) {
		t.Errorf("expected -50 profit, got %s", r.SideProfit())
	}
	if !r.SideVolume().Equal(decimal.NewFromFloat(0.03)) {
		t.Errorf("expected 0.03 volume, got %s", r.SideVolume())
	}
	if r.NextIndex() != 2 {
		t.Errorf("expected next index 2, got %d", r.NextIndex())
	}
}

func TestRuntimeState_LastExecuted(t *testing.T) {
	t.Run("empty map", func(t *testing.T) {
		r := NewRuntimeState()
		if _, ok := r.LastExecuted(); ok {
			t.Error("expected no last-executed row on empty map")
		}
	})

	t.Run("returns highest index", func(t *testing.T) {
		r := NewRuntimeState()
		r.ExecMap[0] = RowExecStats{Index: 0, EntryPrice: decimal.NewFromInt(100)}
		r.ExecMap[2] = RowExecStats{Index: 2, EntryPrice: decimal.NewFromInt(80)}
		r.ExecMap[1] = RowExecStats{Index: 1, EntryPrice: decimal.NewFromInt(90)}

		last, ok := r.LastExecuted()
		if !ok || last.Index != 2 {
			t.Errorf("expected index 2, got %+v (ok=%v)", last, ok)
		}
	})
}

func TestRuntimeState_Clone_IsIndependent(t *testing.T) {
	r := NewRuntimeState()
	r.ExecMap[0] = RowExecStats{Index: 0}
	c := r.Clone()
	c.ExecMap[1] = RowExecStats{Index: 1}

	if len(r.ExecMap) != 1 {
		t.Errorf("mutating clone's ExecMap should not affect original, original has %d entries", len(r.ExecMap))
	}
}

func TestGlobalRuntime_PriceHistory(t *testing.T) {
	t.Run("neutral with fewer than two samples", func(t *testing.T) {
		g := NewGlobalRuntime()
		if g.PriceDirection() != "neutral" {
			t.Errorf("expected neutral, got %s", g.PriceDirection())
		}
	})

	t.Run("up when price rises", func(t *testing.T) {
		g := NewGlobalRuntime()
		g.PushPriceSample(PriceSample{Mid: decimal.NewFromInt(100), At: time.Unix(1, 0)})
		g.PushPriceSample(PriceSample{Mid: decimal.NewFromInt(101), At: time.Unix(2, 0)})
		if g.PriceDirection() != "up" {
			t.Errorf("expected up, got %s", g.PriceDirection())
		}
	})

	t.Run("down when price falls", func(t *testing.T) {
		g := NewGlobalRuntime()
		g.PushPriceSample(PriceSample{Mid: decimal.NewFromInt(100)})
		g.PushPriceSample(PriceSample{Mid: decimal.NewFromInt(99)})
		if g.PriceDirection() != "down" {
			t.Errorf("expected down, got %s", g.PriceDirection())
		}
	})

	t.Run("ring evicts oldest sample past capacity", func(t *testing.T) {
		g := NewGlobalRuntime()
		for i := 0; i < PriceHistoryCapacity+10; i++ {
			g.PushPriceSample(PriceSample{Mid: decimal.NewFromInt(int64(i))})
		}
		if len(g.PriceHistory) != PriceHistoryCapacity {
			t.Errorf("expected ring capped at %d, got %d", PriceHistoryCapacity, len(g.PriceHistory))
		}
		if !g.PriceHistory[0].Mid.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected oldest retained sample to be 10, got %s", g.PriceHistory[0].Mid)
		}
	})
}
