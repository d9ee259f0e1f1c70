package infra

import (
	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// sideStateOrdinal encodes domain.SideState as a gauge value, in C3
// lifecycle order.
var sideStateOrdinal = map[domain.SideState]float64{
	domain.StateIdle:         0,
	domain.StateWaitingLimit: 1,
	domain.StateArmed:        2,
	domain.StateClosing:      3,
	domain.StateHedgeLocked:  4,
}

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dca_ticks_total",
		Help: "Ticks processed by the decision engine.",
	})

	actionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dca_actions_total",
		Help: "Actions emitted by the decision engine, by side and action.",
	}, []string{"side", "action"})

	errorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dca_errors_total",
		Help: "Ticks committed with a non-empty error_status.",
	})

	sideState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dca_side_state",
		Help: "Current C3 lifecycle state per side (idle=0, waiting_limit=1, armed=2, closing=3, hedge_locked=4).",
	}, []string{"side"})
)

func init() {
	prometheus.MustRegister(ticksTotal, actionsTotal, errorsTotal, sideState)
}

// Metrics is the prometheus-backed engine.Recorder (C10).
type Metrics struct{}

// NewMetrics returns the process-wide Recorder. The underlying series are
// package-level and registered once in init, matching the pack's
// register-in-init idiom; multiple Metrics values share the same series.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (*Metrics) ObserveTick() {
	ticksTotal.Inc()
}

func (*Metrics) ObserveAction(side domain.Side, action domain.ActionType) {
	actionsTotal.WithLabelValues(string(side), string(action)).Inc()
}

func (*Metrics) ObserveError() {
	errorsTotal.Inc()
}

func (*Metrics) SetSideState(side domain.Side, state domain.SideState) {
	sideState.WithLabelValues(string(side)).Set(sideStateOrdinal[state])
}
