// Package api exposes the agent over HTTP: configuration, on-demand
// cycles, trade listing and the confirm/cancel operations.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tradeagent/internal/agent"
	"tradeagent/internal/market"
	"tradeagent/internal/observ"
	"tradeagent/internal/store"
)

// Server routes HTTP requests to the controller and store.
type Server struct {
	engine    *gin.Engine
	store     *store.Store
	ctrl      *agent.Controller
	scheduler *agent.Scheduler
}

// NewServer builds the router. scheduler may be nil in tests; config
// updates then skip the timer adjustment.
func NewServer(st *store.Store, ctrl *agent.Controller, scheduler *agent.Scheduler) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:    gin.New(),
		store:     st,
		ctrl:      ctrl,
		scheduler: scheduler,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler exposes the router for an http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	api := s.engine.Group("/api/agent")
	api.GET("/config", s.getConfig)
	api.PUT("/config", s.updateConfig)
	api.POST("/run", s.runCycle)
	api.GET("/status", s.getStatus)
	api.GET("/trades", s.listTrades)
	api.POST("/confirm/:id", s.confirmTrade)
	api.POST("/cancel/:id", s.cancelTrade)

	wl := s.engine.Group("/api/watchlist")
	wl.GET("", s.getWatchlist)
	wl.POST("", s.addWatchSymbol)
	wl.DELETE("/:symbol", s.removeWatchSymbol)

	s.engine.GET("/metrics", gin.WrapH(observ.Handler()))
	s.engine.GET("/healthz", gin.WrapH(observ.Health()))
}

func (s *Server) getConfig(c *gin.Context) {
	cfg, err := s.store.LoadConfig(c.Request.Context(), agent.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) updateConfig(c *gin.Context) {
	var update agent.ConfigUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	cfg, err := s.store.LoadConfig(ctx, agent.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated, err := agent.ApplyUpdate(cfg, update)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SaveConfig(ctx, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.scheduler != nil &&
		(updated.Enabled != cfg.Enabled || updated.CheckIntervalSeconds != cfg.CheckIntervalSeconds) {
		s.scheduler.Reschedule(updated.Enabled, time.Duration(updated.CheckIntervalSeconds)*time.Second)
	}
	observ.Log("agent_config_updated", map[string]any{
		"enabled": updated.Enabled, "mode": updated.Mode, "risk_profile": updated.RiskProfile,
	})
	c.JSON(http.StatusOK, updated)
}

func (s *Server) runCycle(c *gin.Context) {
	summary, err := s.ctrl.RunCycle(c.Request.Context())
	if errors.Is(err, agent.ErrCycleInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) getStatus(c *gin.Context) {
	running, last := s.ctrl.Status()
	cfg, err := s.store.LoadConfig(c.Request.Context(), agent.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"running":    running,
		"enabled":    cfg.Enabled,
		"mode":       cfg.Mode,
		"scheduled":  s.scheduler != nil && s.scheduler.Active(),
		"last_cycle": last,
	})
}

func (s *Server) listTrades(c *gin.Context) {
	status := c.Query("status")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	trades, err := s.store.ListTrades(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trades == nil {
		trades = []store.Trade{}
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (s *Server) confirmTrade(c *gin.Context) {
	s.tradeOp(c, s.ctrl.Confirm)
}

func (s *Server) cancelTrade(c *gin.Context) {
	s.tradeOp(c, s.ctrl.Cancel)
}

func (s *Server) tradeOp(c *gin.Context, op func(ctx context.Context, id int64) (store.Trade, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}
	trade, err := op(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isInvalidTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "trade": trade})
	case err != nil:
		// execution failure after a valid confirm: report it with the trade
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "trade": trade})
	default:
		c.JSON(http.StatusOK, trade)
	}
}

func isInvalidTransition(err error) bool {
	var ite *agent.InvalidTransitionError
	return errors.As(err, &ite)
}

func (s *Server) getWatchlist(c *gin.Context) {
	symbols, err := s.store.Watchlist(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols})
}

func (s *Server) addWatchSymbol(c *gin.Context) {
	var body struct {
		Symbol string `json:"symbol"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Symbol) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	symbol := market.NormalizeSymbol(body.Symbol)
	if err := s.store.AddWatchSymbol(c.Request.Context(), symbol); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"symbol": symbol})
}

func (s *Server) removeWatchSymbol(c *gin.Context) {
	symbol := market.NormalizeSymbol(c.Param("symbol"))
	err := s.store.RemoveWatchSymbol(c.Request.Context(), symbol)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"symbol": symbol})
	}
}
