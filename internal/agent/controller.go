package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tradeagent/internal/broker"
	"tradeagent/internal/market"
	"tradeagent/internal/observ"
	"tradeagent/internal/risk"
	"tradeagent/internal/signal"
	"tradeagent/internal/store"
)

// ErrCycleInFlight is returned when a cycle is requested while another is
// still running. Cycles never run in parallel.
var ErrCycleInFlight = errors.New("agent: cycle already in flight")

// Cycle outcome statuses. CycleKilled means the daily-loss kill switch
// tripped; a cycle that dies on a store read reports CycleError instead.
const (
	CycleDisabled  = "disabled"
	CycleNoSymbols = "no_symbols"
	CycleKilled    = "killed"
	CycleBusy      = "busy"
	CycleCompleted = "completed"
	CycleError     = "error"
)

// CycleSummary reports what one trading cycle did.
type CycleSummary struct {
	Status          string    `json:"status"`
	SymbolsAnalyzed int       `json:"symbols_analyzed"`
	Candidates      int       `json:"candidates"`
	Executed        int       `json:"executed"`
	DailyPnL        float64   `json:"daily_pnl"`
	PortfolioValue  float64   `json:"portfolio_value"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Options tune a Controller beyond its collaborators.
type Options struct {
	DefaultPortfolioUSD float64
	MinConfidence       float64
	RiskPerTrade        float64
	HistoryPeriod       string
	NewsWindow          time.Duration
	RecommendationTTL   time.Duration
}

// Controller owns the trading cycle. All collaborator calls happen inside
// RunCycle or the confirm path; at most one cycle runs at a time.
type Controller struct {
	store   *store.Store
	history market.HistoryProvider
	quotes  *market.QuoteCache
	news    market.NewsProvider
	scorer  signal.Scorer
	exec    broker.ExecutionAdapter
	opts    Options
	now     func() time.Time

	mu      sync.Mutex
	running bool
	last    CycleSummary
	recs    map[string]cachedRecommendation
}

type cachedRecommendation struct {
	combined signal.CombinedSignal
	fetched  time.Time
}

// NewController wires the cycle's collaborators together. news may be nil
// when no news source is configured; sentiment then always reads neutral.
func NewController(st *store.Store, history market.HistoryProvider, quotes *market.QuoteCache,
	news market.NewsProvider, scorer signal.Scorer, exec broker.ExecutionAdapter, opts Options) *Controller {
	if opts.DefaultPortfolioUSD <= 0 {
		opts.DefaultPortfolioUSD = 10000
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = 0.3
	}
	if opts.RiskPerTrade <= 0 {
		opts.RiskPerTrade = risk.DefaultRiskPerTrade
	}
	if opts.HistoryPeriod == "" {
		opts.HistoryPeriod = "3mo"
	}
	if opts.NewsWindow <= 0 {
		opts.NewsWindow = 7 * 24 * time.Hour
	}
	if opts.RecommendationTTL <= 0 {
		opts.RecommendationTTL = 5 * time.Minute
	}
	return &Controller{
		store:   st,
		history: history,
		quotes:  quotes,
		news:    news,
		scorer:  scorer,
		exec:    exec,
		opts:    opts,
		now:     time.Now,
		recs:    map[string]cachedRecommendation{},
	}
}

// RunCycle executes one full trading cycle. A concurrent call while a
// cycle is in flight returns a busy summary and ErrCycleInFlight.
func (c *Controller) RunCycle(ctx context.Context) (CycleSummary, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return CycleSummary{Status: CycleBusy}, ErrCycleInFlight
	}
	c.running = true
	c.mu.Unlock()

	started := c.now()
	summary, err := c.runCycle(ctx)
	summary.StartedAt = started
	summary.FinishedAt = c.now()

	c.mu.Lock()
	c.running = false
	c.last = summary
	c.mu.Unlock()

	observ.ObserveDuration("agent_cycle", summary.FinishedAt.Sub(started), map[string]string{"status": summary.Status})
	observ.Log("agent_cycle_done", map[string]any{
		"status": summary.Status, "symbols": summary.SymbolsAnalyzed,
		"candidates": summary.Candidates, "executed": summary.Executed,
		"daily_pnl": summary.DailyPnL,
	})
	return summary, err
}

func (c *Controller) runCycle(ctx context.Context) (CycleSummary, error) {
	cfg, err := c.store.LoadConfig(ctx, DefaultConfig())
	if err != nil {
		return CycleSummary{Status: CycleError}, err
	}
	if !cfg.Enabled {
		return CycleSummary{Status: CycleDisabled}, nil
	}

	symbols, err := c.resolveSymbols(ctx, cfg)
	if err != nil {
		return CycleSummary{Status: CycleError}, err
	}
	if len(symbols) == 0 {
		return CycleSummary{Status: CycleNoSymbols}, nil
	}

	// Portfolio value and daily P&L are read once and treated as a stable
	// snapshot for the whole cycle.
	portfolioValue := c.resolvePortfolioValue(ctx, cfg)
	pnl, err := c.store.RealizedPnLSince(ctx, dayStart(c.now()))
	if err != nil {
		return CycleSummary{Status: CycleError}, err
	}
	lossLimit := cfg.DailyLossLimitPct / 100 * portfolioValue
	if pnl < -lossLimit {
		observ.IncCounter("agent_kill_switch_trips_total", nil)
		observ.Log("agent_kill_switch", map[string]any{
			"daily_pnl": pnl, "limit": lossLimit, "portfolio_value": portfolioValue,
		})
		return CycleSummary{Status: CycleKilled, DailyPnL: pnl, PortfolioValue: portfolioValue}, nil
	}

	summary := CycleSummary{Status: CycleCompleted, DailyPnL: pnl, PortfolioValue: portfolioValue}
	for _, symbol := range symbols {
		summary.SymbolsAnalyzed++
		trade, executed, err := c.analyzeAndTrade(ctx, cfg, symbol, portfolioValue)
		if err != nil {
			observ.IncCounter("agent_symbol_errors_total", map[string]string{"symbol": symbol})
			observ.LogError("agent_symbol_skipped", err, map[string]any{"symbol": symbol})
			continue
		}
		if trade != nil {
			summary.Candidates++
		}
		if executed {
			summary.Executed++
		}
	}
	return summary, nil
}

func (c *Controller) resolveSymbols(ctx context.Context, cfg store.AgentConfig) ([]string, error) {
	watchlist, err := c.store.Watchlist(ctx)
	if err != nil {
		return nil, err
	}
	if len(cfg.Whitelist) == 0 {
		return watchlist, nil
	}
	allowed := make(map[string]bool, len(cfg.Whitelist))
	for _, s := range cfg.Whitelist {
		allowed[market.NormalizeSymbol(s)] = true
	}
	var out []string
	for _, s := range watchlist {
		if allowed[market.NormalizeSymbol(s)] {
			out = append(out, s)
		}
	}
	return out, nil
}

// resolvePortfolioValue asks the execution adapter for account value in
// paper/live mode, falling back to the configured default when the call
// fails. Advisory mode always uses the default.
func (c *Controller) resolvePortfolioValue(ctx context.Context, cfg store.AgentConfig) float64 {
	if cfg.Mode == ModeAdvisory || c.exec == nil {
		return c.opts.DefaultPortfolioUSD
	}
	v, err := c.exec.AccountValue(ctx)
	if err != nil || v <= 0 {
		observ.LogError("agent_account_value_fallback", err, map[string]any{
			"default": c.opts.DefaultPortfolioUSD,
		})
		return c.opts.DefaultPortfolioUSD
	}
	return v
}

// analyzeAndTrade runs the signal pipeline for one symbol and, when it
// produces an actionable candidate, persists and possibly executes the
// trade. Returns the created trade (nil when the symbol was skipped) and
// whether it was executed.
func (c *Controller) analyzeAndTrade(ctx context.Context, cfg store.AgentConfig, symbol string, portfolioValue float64) (*store.Trade, bool, error) {
	combined, price, err := c.recommend(ctx, symbol)
	if err != nil {
		return nil, false, err
	}
	if combined.FinalSignal == signal.Hold || combined.FinalConfidence < c.opts.MinConfidence {
		return nil, false, nil
	}
	if price <= 0 {
		return nil, false, fmt.Errorf("quote %s: non-positive price %v", symbol, price)
	}

	quantity := int64(cfg.MaxTradePct / 100 * portfolioValue / price)
	if quantity < 1 {
		return nil, false, nil
	}
	// risk-based cap: never size beyond what a stop-out at the derived
	// stop level keeps within the per-trade risk budget
	levels := risk.ExitLevels(combined.FinalSignal, price, 0, 0)
	sizing, err := risk.SizePosition(symbol, portfolioValue, c.opts.RiskPerTrade, price, levels.StopLoss)
	if err != nil {
		return nil, false, err
	}
	if sizing.RecommendedQuantity < quantity {
		quantity = sizing.RecommendedQuantity
	}
	if quantity < 1 {
		return nil, false, nil
	}

	validation := risk.ValidateTrade(risk.TradeProposal{
		Symbol:         symbol,
		Signal:         combined.FinalSignal,
		Quantity:       quantity,
		EntryPrice:     price,
		Confidence:     combined.FinalConfidence,
		PortfolioValue: portfolioValue,
	}, risk.Limits{MaxPositionPct: cfg.MaxPositionPct, MinConfidence: c.opts.MinConfidence})
	if !validation.Approved {
		observ.Log("agent_trade_rejected", map[string]any{
			"symbol": symbol, "status": string(validation.Status), "reason": validation.Reason,
		})
		return nil, false, nil
	}

	action := "buy"
	if combined.FinalSignal.IsSell() {
		action = "sell"
	}
	total := float64(quantity) * price

	status := StatusReady
	switch {
	case cfg.Mode == ModeAdvisory:
		status = StatusAdvisory
	case total > cfg.ConfirmAboveUSD:
		status = StatusPending
	}

	rationale := combined.Rationale
	if validation.Status == risk.StatusApprovedWithWarnings {
		rationale = fmt.Sprintf("%s [%s]", rationale, validation.Reason)
	}
	trade := &store.Trade{
		Symbol:    symbol,
		Action:    action,
		Quantity:  quantity,
		Price:     price,
		Total:     total,
		Status:    status,
		Mode:      cfg.Mode,
		Rationale: rationale,
	}
	if err := c.store.InsertTrade(ctx, trade); err != nil {
		return nil, false, err
	}
	observ.IncCounter("agent_trades_created_total", map[string]string{"status": status, "action": action})

	if status != StatusReady {
		return trade, false, nil
	}
	execErr := c.execute(ctx, trade)
	return trade, execErr == nil, nil
}

// recommend produces the combined signal and reference price for a symbol.
// Only the signal is served from the recommendation cache; the price is
// always read through the quote cache so sizing and the confirmation gate
// track the freshest quote available.
func (c *Controller) recommend(ctx context.Context, symbol string) (signal.CombinedSignal, float64, error) {
	symbol = market.NormalizeSymbol(symbol)

	quote, err := c.quotes.Quote(ctx, symbol)
	if err != nil {
		return signal.CombinedSignal{}, 0, fmt.Errorf("quote %s: %w", symbol, err)
	}

	c.mu.Lock()
	if rec, ok := c.recs[symbol]; ok && c.now().Sub(rec.fetched) < c.opts.RecommendationTTL {
		c.mu.Unlock()
		observ.IncCounter("agent_recommendation_cache_hits_total", nil)
		return rec.combined, quote.Price, nil
	}
	c.mu.Unlock()

	bars, err := c.history.History(ctx, symbol, c.opts.HistoryPeriod)
	if err != nil {
		return signal.CombinedSignal{}, 0, fmt.Errorf("history %s: %w", symbol, err)
	}
	tech := signal.AnalyzeTechnical(symbol, bars)

	var items []market.NewsItem
	if c.news != nil {
		items, err = c.news.News(ctx, symbol, c.opts.NewsWindow)
		if err != nil {
			// news is optional input; sentiment degrades to neutral
			observ.LogError("agent_news_unavailable", err, map[string]any{"symbol": symbol})
			items = nil
		}
	}
	sent := signal.AnalyzeSentiment(ctx, c.scorer, symbol, items)
	combined := signal.Combine(tech, sent)

	c.mu.Lock()
	c.recs[symbol] = cachedRecommendation{combined: combined, fetched: c.now()}
	c.mu.Unlock()
	return combined, quote.Price, nil
}

// execute makes the single order attempt for a ready trade and moves it to
// executed or failed. Execution is never retried.
func (c *Controller) execute(ctx context.Context, trade *store.Trade) error {
	err := c.exec.PlaceOrder(ctx, broker.Order{
		Symbol:   trade.Symbol,
		Action:   trade.Action,
		Quantity: trade.Quantity,
		Price:    trade.Price,
	})
	if err != nil {
		trade.Status = StatusFailed
		if uerr := c.store.UpdateTradeStatus(ctx, trade.ID, StatusFailed, nil); uerr != nil {
			observ.LogError("agent_trade_status_update_failed", uerr, map[string]any{"trade_id": trade.ID})
		}
		observ.IncCounter("agent_trades_failed_total", map[string]string{"symbol": trade.Symbol})
		observ.LogError("agent_trade_failed", err, map[string]any{"trade_id": trade.ID, "symbol": trade.Symbol})
		return err
	}
	now := c.now()
	trade.Status = StatusExecuted
	trade.ExecutedAt = &now
	if uerr := c.store.UpdateTradeStatus(ctx, trade.ID, StatusExecuted, &now); uerr != nil {
		observ.LogError("agent_trade_status_update_failed", uerr, map[string]any{"trade_id": trade.ID})
	}
	observ.IncCounter("agent_trades_executed_total", map[string]string{"symbol": trade.Symbol, "action": trade.Action})
	observ.Log("agent_trade_executed", map[string]any{
		"trade_id": trade.ID, "symbol": trade.Symbol, "action": trade.Action,
		"quantity": trade.Quantity, "total": trade.Total,
	})
	return nil
}

// Confirm advances a pending trade to ready and executes it immediately.
// The execution outcome is surfaced to the caller: the returned trade is
// executed or failed, with the order error attached in the failed case.
func (c *Controller) Confirm(ctx context.Context, id int64) (store.Trade, error) {
	trade, err := c.store.GetTrade(ctx, id)
	if err != nil {
		return store.Trade{}, err
	}
	if !canConfirm(trade.Status) {
		return trade, &InvalidTransitionError{TradeID: id, Status: trade.Status, Op: "confirm"}
	}
	if err := c.store.UpdateTradeStatus(ctx, id, StatusReady, nil); err != nil {
		return trade, err
	}
	trade.Status = StatusReady
	if err := c.execute(ctx, &trade); err != nil {
		return trade, err
	}
	return trade, nil
}

// Cancel moves a pending, ready or advisory trade to cancelled.
func (c *Controller) Cancel(ctx context.Context, id int64) (store.Trade, error) {
	trade, err := c.store.GetTrade(ctx, id)
	if err != nil {
		return store.Trade{}, err
	}
	if !canCancel(trade.Status) {
		return trade, &InvalidTransitionError{TradeID: id, Status: trade.Status, Op: "cancel"}
	}
	if err := c.store.UpdateTradeStatus(ctx, id, StatusCancelled, nil); err != nil {
		return trade, err
	}
	trade.Status = StatusCancelled
	observ.IncCounter("agent_trades_cancelled_total", nil)
	return trade, nil
}

// Status reports whether a cycle is running and the last cycle summary.
func (c *Controller) Status() (bool, CycleSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running, c.last
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
