package api

import (
	"net/http"
	"strconv"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/Adikumaw/elastic-dca-trader/internal/engine"
	"github.com/Adikumaw/elastic-dca-trader/internal/store"
	"github.com/gin-gonic/gin"
)

// defaultLedgerLimit bounds GET /api/ledger when no limit query param is
// given.
const defaultLedgerLimit = 50

// Server holds what the handlers need: a way to reach the engine's inbox
// and a way to read the current snapshot for GET endpoints. Handlers
// never touch domain state directly (§4.6).
type Server struct {
	inbox   chan<- engine.Event
	store   engine.Store
	ledger  *store.Ledger
	version string
}

// NewServer wires a Server against a running engine, its store, and the
// decision ledger.
func NewServer(inbox chan<- engine.Event, st engine.Store, ledger *store.Ledger, version string) *Server {
	return &Server{inbox: inbox, store: st, ledger: ledger, version: version}
}

// handleTick is Endpoint A: POST /api/tick.
func (s *Server) handleTick(c *gin.Context) {
	var req tickRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := make(chan engine.TickReply, 1)
	s.inbox <- &engine.TickRequest{Input: req.toInput(), Reply: reply}
	result := <-reply

	c.JSON(http.StatusOK, newTickResponse(result.Result))
}

// handleUIData is Endpoint B: GET /api/ui-data.
func (s *Server) handleUIData(c *gin.Context) {
	c.JSON(http.StatusOK, newUIData(s.store.Snapshot()))
}

// handleUpdateSettings is Endpoint C: POST /api/update-settings.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var settings domain.UserSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := make(chan engine.SettingsReply, 1)
	s.inbox <- &engine.SettingsRequest{Settings: settings, Reply: reply}
	result := <-reply

	if result.Err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": result.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": result.Settings})
}

// handleControl is Endpoint D: POST /api/control.
func (s *Server) handleControl(c *gin.Context) {
	var req controlRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := make(chan engine.ControlReply, 1)
	s.inbox <- &engine.ControlRequest{Cmd: req.toCommand(), Reply: reply}
	result := <-reply

	c.JSON(http.StatusOK, gin.H{"status": result.Status})
}

// handleLedger is GET /api/ledger: a forensic replay read of the C11
// decision ledger, newest first. Accepts an optional ?limit= query param.
func (s *Server) handleLedger(c *gin.Context) {
	limit := defaultLedgerLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.ledger.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// handleHealth is GET /api/health — a cheap liveness probe distinct from
// the full Endpoint B snapshot (§3 expansion).
func (s *Server) handleHealth(c *gin.Context) {
	snap := s.store.Snapshot()
	status := "ok"
	if snap.Global.ErrorStatus != "" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, healthDTO{
		Status:  status,
		Error:   snap.Global.ErrorStatus,
		Version: s.version,
		Buy:     snap.BuyRuntime.State(),
		Sell:    snap.SellRuntime.State(),
		Price:   snap.Global.Market.Mid(),
	})
}
