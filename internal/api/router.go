package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine exposing Endpoints A–D, the health
// probe, and the Prometheus scrape endpoint (§4.6, C10).
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/ui-data", s.handleUIData)
	r.GET("/api/ledger", s.handleLedger)
	r.POST("/api/tick", s.handleTick)
	r.POST("/api/update-settings", s.handleUpdateSettings)
	r.POST("/api/control", s.handleControl)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
