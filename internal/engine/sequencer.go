package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/shopspring/decimal"
)

// Event is the closed sum type accepted by the sequencer's inbox:
// TickRequest, SettingsRequest, or ControlRequest. Grounded on the
// teacher's event.Event marker-interface idiom (crypto_go's
// MarketUpdateEvent/OrderUpdateEvent), generalized to this domain's three
// mutation sources.
type Event interface {
	Kind() string
}

// TickRequest carries one heartbeat (Endpoint A) into the sequencer.
type TickRequest struct {
	Input TickInput
	Reply chan TickReply
}

func (TickRequest) Kind() string { return "tick" }

// TickReply is delivered on TickRequest.Reply exactly once.
type TickReply struct {
	Result Result
}

// SettingsRequest carries a full settings replacement (Endpoint C).
type SettingsRequest struct {
	Settings domain.UserSettings
	Reply    chan SettingsReply
}

func (SettingsRequest) Kind() string { return "settings" }

// SettingsReply is delivered on SettingsRequest.Reply exactly once.
type SettingsReply struct {
	Settings domain.UserSettings
	Err      error
}

// ControlCommand is the optional-field body of Endpoint D; nil fields are
// left untouched. Fields are applied in the order they are declared here
// (buy_switch, sell_switch, cyclic, emergency_close), per §6.
type ControlCommand struct {
	BuySwitch      *bool
	SellSwitch     *bool
	Cyclic         *bool
	EmergencyClose *bool
}

// ControlRequest carries a control mutation (Endpoint D) into the sequencer.
type ControlRequest struct {
	Cmd   ControlCommand
	Reply chan ControlReply
}

func (ControlRequest) Kind() string { return "control" }

// ControlReply is delivered on ControlRequest.Reply exactly once.
type ControlReply struct {
	Status string
}

// Store is the C2 persistence/read-model boundary the sequencer commits
// through. It is the sole writable authority for domain.SystemState;
// everything else — including the sequencer itself between events — only
// ever holds a Clone()'d view.
type Store interface {
	Snapshot() domain.SystemState
	Commit(domain.SystemState) error
}

// Recorder observes engine activity for the metrics surface (C10). infra
// wires a real implementation; NewEngine substitutes a no-op for a nil
// Recorder, so the engine never calls through a nil one.
type Recorder interface {
	ObserveTick()
	ObserveAction(side domain.Side, action domain.ActionType)
	ObserveError()
	SetSideState(side domain.Side, state domain.SideState)
}

// AuditSink appends one record per committed tick to the decision ledger
// (C11). Failures are logged, never fatal — the ledger is a secondary,
// non-authoritative trail.
type AuditSink interface {
	Record(entry AuditEntry)
}

// AuditEntry is one row of the decision ledger. Side is "" for a WAIT
// tick — the ledger records every committed tick, not just emissions.
type AuditEntry struct {
	Side    domain.Side
	Action  domain.ActionType
	Comment string
	Volume  decimal.Decimal
	Profit  decimal.Decimal
	At      time.Time
}

// Engine is the single-writer, serialized event loop (§5). All mutations
// funnel through Inbox and are applied one at a time, in arrival order;
// this is how §3's invariants are maintained without locking the domain
// state itself.
type Engine struct {
	inbox    chan Event
	store    Store
	audit    AuditSink
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine constructs an Engine. audit and recorder may be nil; a nil
// Recorder is replaced with a no-op so callers never need a guard.
func NewEngine(store Store, audit AuditSink, recorder Recorder, logger *slog.Logger) *Engine {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Engine{
		inbox:    make(chan Event, 64),
		store:    store,
		audit:    audit,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Inbox returns the send side of the event channel. HTTP handlers submit
// requests here and block on the request's own Reply channel.
func (e *Engine) Inbox() chan<- Event {
	return e.inbox
}

// Run drains the inbox until ctx is cancelled. It must run in exactly one
// goroutine — this is what makes the domain state single-writer.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("engine started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping")
			return
		case ev := <-e.inbox:
			e.processEvent(ev)
		}
	}
}

func (e *Engine) processEvent(ev Event) {
	switch req := ev.(type) {
	case *TickRequest:
		e.handleTick(req)
	case *SettingsRequest:
		e.handleSettings(req)
	case *ControlRequest:
		e.handleControl(req)
	default:
		e.logger.Warn("unknown event kind", slog.String("kind", ev.Kind()))
	}
}

func (e *Engine) handleTick(req *TickRequest) {
	now := e.now()
	state := e.store.Snapshot()
	newState, result := ProcessTick(state, req.Input, now)

	if err := e.store.Commit(newState); err != nil {
		e.logger.Error("snapshot commit failed", slog.Any("error", err))
	}

	e.recorder.ObserveTick()
	e.recorder.SetSideState(domain.SideBuy, newState.BuyRuntime.State())
	e.recorder.SetSideState(domain.SideSell, newState.SellRuntime.State())
	if newState.Global.ErrorStatus != "" {
		e.recorder.ObserveError()
	}

	var side domain.Side
	switch result.Action {
	case domain.ActionBuy:
		side = domain.SideBuy
	case domain.ActionSell:
		side = domain.SideSell
	case domain.ActionCloseAll:
		if result.Comment == newState.BuyRuntime.SessionID {
			side = domain.SideBuy
		} else if result.Comment == newState.SellRuntime.SessionID {
			side = domain.SideSell
		}
	}
	if result.Action != domain.ActionWait {
		e.recorder.ObserveAction(side, result.Action)
	}
	if e.audit != nil {
		profit := decimal.Zero
		if side != "" {
			profit = newState.Runtime(side).SideProfit()
		}
		e.audit.Record(AuditEntry{Side: side, Action: result.Action, Comment: result.Comment, Volume: result.Volume, Profit: profit, At: now})
	}

	req.Reply <- TickReply{Result: result}
}

func (e *Engine) handleSettings(req *SettingsRequest) {
	state := e.store.Snapshot()
	execCount := func(r domain.RuntimeState) int { return len(r.ExecMap) }

	if err := req.Settings.Buy.ValidateAgainst(execCount(state.BuyRuntime)); err != nil {
		req.Reply <- SettingsReply{Settings: state.Settings, Err: err}
		return
	}
	if err := req.Settings.Sell.ValidateAgainst(execCount(state.SellRuntime)); err != nil {
		req.Reply <- SettingsReply{Settings: state.Settings, Err: err}
		return
	}

	state.Settings = req.Settings
	if err := e.store.Commit(state); err != nil {
		e.logger.Error("snapshot commit failed", slog.Any("error", err))
	}
	req.Reply <- SettingsReply{Settings: state.Settings}
}

func (e *Engine) handleControl(req *ControlRequest) {
	state := e.store.Snapshot()
	cmd := req.Cmd
	status := "ok"

	applyToggle := func(side domain.Side, on bool) {
		rt := state.Runtime(side)
		settings := state.Settings.Get(side)
		switch {
		case on && !rt.On:
			rt.On = true
			rt = ArmFromControl(rt, settings, side)
			rt.IsClosing = false
		case !on && rt.On:
			rt.On = false
			if rt.SessionID != "" {
				rt.IsClosing = true
			}
		}
		state = state.WithRuntime(side, rt)
	}

	if cmd.BuySwitch != nil {
		applyToggle(domain.SideBuy, *cmd.BuySwitch)
	}
	if cmd.SellSwitch != nil {
		applyToggle(domain.SideSell, *cmd.SellSwitch)
	}
	if cmd.Cyclic != nil {
		state.Global.CyclicOn = *cmd.Cyclic
	}
	if cmd.EmergencyClose != nil && *cmd.EmergencyClose {
		status = "emergency"
		state.Global.ErrorStatus = ""
		for _, side := range sides {
			rt := state.Runtime(side)
			rt.On = false
			if rt.SessionID != "" {
				rt.IsClosing = true
			}
			state = state.WithRuntime(side, rt)
		}
		state.Global.CyclicOn = false
	}

	if err := e.store.Commit(state); err != nil {
		e.logger.Error("snapshot commit failed", slog.Any("error", err))
	}
	req.Reply <- ControlReply{Status: status}
}

type noopRecorder struct{}

func (noopRecorder) ObserveTick()                                {}
func (noopRecorder) ObserveAction(domain.Side, domain.ActionType) {}
func (noopRecorder) ObserveError()                                {}
func (noopRecorder) SetSideState(domain.Side, domain.SideState)   {}
