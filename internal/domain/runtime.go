package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowExecStats is the upserted record of one fired grid row, keyed by
// index in RuntimeState.ExecMap.
type RowExecStats struct {
	Index      int             `json:"index"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Lots       decimal.Decimal `json:"lots"`
	Profit     decimal.Decimal `json:"profit"`
	Timestamp  time.Time       `json:"timestamp"`
}

// RuntimeState is the per-side lifecycle state (§3).
type RuntimeState struct {
	On              bool                 `json:"on"`
	SessionID       string               `json:"session_id"`
	WaitingLimit    bool                 `json:"waiting_limit"`
	IsClosing       bool                 `json:"is_closing"`
	HedgeTriggered  bool                 `json:"hedge_triggered"`
	ExecMap         map[int]RowExecStats `json:"exec_map"`
	StartRef        decimal.Decimal      `json:"start_ref"`
	LastOrderSentAt time.Time            `json:"last_order_sent_at"`
	EquityAtArm     decimal.Decimal      `json:"equity_at_arm"`
}

// NewRuntimeState returns an idle side: off, no session, empty exec map.
func NewRuntimeState() RuntimeState {
	return RuntimeState{
		ExecMap:  make(map[int]RowExecStats),
		StartRef: decimal.Zero,
	}
}

// State derives the C3 lifecycle label from the current flags, for the
// read-model and for tests asserting on lifecycle position.
func (r RuntimeState) State() SideState {
	switch {
	case r.HedgeTriggered:
		return StateHedgeLocked
	case r.IsClosing:
		return StateClosing
	case r.WaitingLimit:
		return StateWaitingLimit
	case r.SessionID != "":
		return StateArmed
	default:
		return StateIdle
	}
}

// SideProfit sums the unrealized profit across every fired row (§4.4 step 4/5).
func (r RuntimeState) SideProfit() decimal.Decimal {
	total := decimal.Zero
	for _, st := range r.ExecMap {
		total = total.Add(st.Profit)
	}
	return total
}

// SideVolume sums the lots across every fired row (§4.4 step 4, the hedge
// controller's V).
func (r RuntimeState) SideVolume() decimal.Decimal {
	total := decimal.Zero
	for _, st := range r.ExecMap {
		total = total.Add(st.Lots)
	}
	return total
}

// NextIndex is the next grid row to fire, k = |exec_map|.
func (r RuntimeState) NextIndex() int {
	return len(r.ExecMap)
}

// LastExecuted returns the stats of the highest-index fired row and true,
// or the zero value and false if nothing has fired yet this session.
func (r RuntimeState) LastExecuted() (RowExecStats, bool) {
	if len(r.ExecMap) == 0 {
		return RowExecStats{}, false
	}
	lastIdx := -1
	for idx := range r.ExecMap {
		if idx > lastIdx {
			lastIdx = idx
		}
	}
	return r.ExecMap[lastIdx], true
}

// Clone returns a deep-enough copy for snapshot/read-model use: the
// ExecMap is copied so callers can't mutate the engine's live state.
func (r RuntimeState) Clone() RuntimeState {
	c := r
	c.ExecMap = make(map[int]RowExecStats, len(r.ExecMap))
	for k, v := range r.ExecMap {
		c.ExecMap[k] = v
	}
	return c
}

// PriceSample is one entry in the bounded price-history ring (§3 expansion).
type PriceSample struct {
	Mid decimal.Decimal `json:"mid"`
	At  time.Time       `json:"ts"`
}

// PriceHistoryCapacity bounds the in-memory ring, matching the original's
// deque(maxlen=100).
const PriceHistoryCapacity = 100

// GlobalRuntime holds state shared by both sides: the cyclic-restart
// toggle, the latched error status, the last market snapshot, and the
// price history ring.
type GlobalRuntime struct {
	CyclicOn     bool          `json:"cyclic_on"`
	ErrorStatus  string        `json:"error_status"`
	Market       MarketReading `json:"market"`
	PriceHistory []PriceSample `json:"price_history"`
}

// NewGlobalRuntime returns a healthy, empty global runtime.
func NewGlobalRuntime() GlobalRuntime {
	return GlobalRuntime{
		PriceHistory: make([]PriceSample, 0, PriceHistoryCapacity),
	}
}

// PushPriceSample appends to the ring, evicting the oldest sample once the
// capacity is exceeded.
func (g *GlobalRuntime) PushPriceSample(s PriceSample) {
	g.PriceHistory = append(g.PriceHistory, s)
	if len(g.PriceHistory) > PriceHistoryCapacity {
		g.PriceHistory = g.PriceHistory[len(g.PriceHistory)-PriceHistoryCapacity:]
	}
}

// PriceDirection reports "up", "down", or "neutral" by comparing the
// newest sample against the one before it, mirroring the original's
// tick-over-tick comparison.
func (g GlobalRuntime) PriceDirection() string {
	n := len(g.PriceHistory)
	if n < 2 {
		return "neutral"
	}
	cur := g.PriceHistory[n-1].Mid
	prev := g.PriceHistory[n-2].Mid
	switch {
	case cur.GreaterThan(prev):
		return "up"
	case cur.LessThan(prev):
		return "down"
	default:
		return "neutral"
	}
}
