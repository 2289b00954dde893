// Package store persists trades, agent configuration and the watchlist in
// a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Trade is one persisted trade record. ExecutedAt is nil until the trade
// reaches a terminal executed state.
type Trade struct {
	ID         int64      `json:"id"`
	Symbol     string     `json:"symbol"`
	Action     string     `json:"action"` // buy | sell
	Quantity   int64      `json:"quantity"`
	Price      float64    `json:"price"`
	Total      float64    `json:"total"`
	Status     string     `json:"status"`
	Mode       string     `json:"mode"` // live | paper | advisory
	Rationale  string     `json:"rationale"`
	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
}

// AgentConfig is the persisted agent configuration singleton.
type AgentConfig struct {
	Enabled              bool      `json:"enabled"`
	Mode                 string    `json:"mode"` // advisory | autonomous
	RiskProfile          string    `json:"risk_profile"`
	MaxTradePct          float64   `json:"max_trade_pct"`
	MaxPositionPct       float64   `json:"max_position_pct"`
	DailyLossLimitPct    float64   `json:"daily_loss_limit_pct"`
	ConfirmAboveUSD      float64   `json:"confirm_above_usd"`
	Whitelist            []string  `json:"symbol_whitelist"` // empty = no filter
	CheckIntervalSeconds int       `json:"check_interval_seconds"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Store wraps the SQLite handle. Safe for concurrent use; the driver
// serializes writers.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed, applies
// pragmas and migrates the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price REAL NOT NULL,
			total REAL NOT NULL,
			status TEXT NOT NULL,
			mode TEXT NOT NULL,
			rationale TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			executed_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status, created_at);`,
		`CREATE TABLE IF NOT EXISTS agent_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			enabled INTEGER NOT NULL,
			mode TEXT NOT NULL,
			risk_profile TEXT NOT NULL,
			max_trade_pct REAL NOT NULL,
			max_position_pct REAL NOT NULL,
			daily_loss_limit_pct REAL NOT NULL,
			confirm_above_usd REAL NOT NULL,
			whitelist TEXT NOT NULL DEFAULT '[]',
			check_interval_seconds INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			symbol TEXT PRIMARY KEY,
			added_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// InsertTrade persists a new trade and fills in its ID and CreatedAt.
func (s *Store) InsertTrade(ctx context.Context, t *Trade) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	var executedAt any
	if t.ExecutedAt != nil {
		executedAt = t.ExecutedAt.Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (symbol, action, quantity, price, total, status, mode, rationale, created_at, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Symbol, t.Action, t.Quantity, t.Price, t.Total, t.Status, t.Mode, t.Rationale,
		t.CreatedAt.Unix(), executedAt)
	if err != nil {
		return fmt.Errorf("store: insert trade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: insert trade id: %w", err)
	}
	t.ID = id
	return nil
}

// GetTrade loads one trade by ID.
func (s *Store) GetTrade(ctx context.Context, id int64) (Trade, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, action, quantity, price, total, status, mode, rationale, created_at, executed_at
		 FROM trades WHERE id = ?`, id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Trade{}, fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	return t, err
}

// UpdateTradeStatus moves a trade to a new status, stamping executed_at
// when one is given.
func (s *Store) UpdateTradeStatus(ctx context.Context, id int64, status string, executedAt *time.Time) error {
	var ts any
	if executedAt != nil {
		ts = executedAt.Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE trades SET status = ?, executed_at = COALESCE(?, executed_at) WHERE id = ?`,
		status, ts, id)
	if err != nil {
		return fmt.Errorf("store: update trade %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update trade %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("trade %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTrades returns trades newest first, optionally filtered by status.
// A limit <= 0 defaults to 50.
func (s *Store) ListTrades(ctx context.Context, status string, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, symbol, action, quantity, price, total, status, mode, rationale, created_at, executed_at
		 FROM trades`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list trades: %w", err)
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RealizedPnLSince sums signed cash flow of executed, non-advisory trades
// created since t: sells add, buys subtract. A net negative result is a
// realized loss for the window.
func (s *Store) RealizedPnLSince(ctx context.Context, t time.Time) (float64, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN action = 'sell' THEN total ELSE -total END), 0)
		 FROM trades
		 WHERE status = 'executed' AND mode != 'advisory' AND created_at >= ?`,
		t.Unix())
	var pnl float64
	if err := row.Scan(&pnl); err != nil {
		return 0, fmt.Errorf("store: realized pnl: %w", err)
	}
	return pnl, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (Trade, error) {
	var t Trade
	var createdAt int64
	var executedAt sql.NullInt64
	err := row.Scan(&t.ID, &t.Symbol, &t.Action, &t.Quantity, &t.Price, &t.Total,
		&t.Status, &t.Mode, &t.Rationale, &createdAt, &executedAt)
	if err != nil {
		return Trade{}, err
	}
	t.CreatedAt = time.Unix(createdAt, 0)
	if executedAt.Valid {
		ts := time.Unix(executedAt.Int64, 0)
		t.ExecutedAt = &ts
	}
	return t, nil
}

// LoadConfig returns the persisted agent configuration, creating the given
// default row on first use.
func (s *Store) LoadConfig(ctx context.Context, def AgentConfig) (AgentConfig, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT enabled, mode, risk_profile, max_trade_pct, max_position_pct,
		        daily_loss_limit_pct, confirm_above_usd, whitelist, check_interval_seconds, updated_at
		 FROM agent_config WHERE id = 1`)
	var cfg AgentConfig
	var enabled int
	var whitelist string
	var updatedAt int64
	err := row.Scan(&enabled, &cfg.Mode, &cfg.RiskProfile, &cfg.MaxTradePct, &cfg.MaxPositionPct,
		&cfg.DailyLossLimitPct, &cfg.ConfirmAboveUSD, &whitelist, &cfg.CheckIntervalSeconds, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.SaveConfig(ctx, def); err != nil {
			return AgentConfig{}, err
		}
		return s.LoadConfig(ctx, def)
	}
	if err != nil {
		return AgentConfig{}, fmt.Errorf("store: load config: %w", err)
	}
	cfg.Enabled = enabled != 0
	if err := json.Unmarshal([]byte(whitelist), &cfg.Whitelist); err != nil {
		return AgentConfig{}, fmt.Errorf("store: load config whitelist: %w", err)
	}
	cfg.UpdatedAt = time.Unix(updatedAt, 0)
	return cfg, nil
}

// SaveConfig upserts the configuration singleton.
func (s *Store) SaveConfig(ctx context.Context, cfg AgentConfig) error {
	enabled := 0
	if cfg.Enabled {
		enabled = 1
	}
	if cfg.Whitelist == nil {
		cfg.Whitelist = []string{}
	}
	whitelist, err := json.Marshal(cfg.Whitelist)
	if err != nil {
		return fmt.Errorf("store: save config whitelist: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_config (id, enabled, mode, risk_profile, max_trade_pct, max_position_pct,
		                           daily_loss_limit_pct, confirm_above_usd, whitelist, check_interval_seconds, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   enabled = excluded.enabled,
		   mode = excluded.mode,
		   risk_profile = excluded.risk_profile,
		   max_trade_pct = excluded.max_trade_pct,
		   max_position_pct = excluded.max_position_pct,
		   daily_loss_limit_pct = excluded.daily_loss_limit_pct,
		   confirm_above_usd = excluded.confirm_above_usd,
		   whitelist = excluded.whitelist,
		   check_interval_seconds = excluded.check_interval_seconds,
		   updated_at = excluded.updated_at`,
		enabled, cfg.Mode, cfg.RiskProfile, cfg.MaxTradePct, cfg.MaxPositionPct,
		cfg.DailyLossLimitPct, cfg.ConfirmAboveUSD, string(whitelist), cfg.CheckIntervalSeconds, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store: save config: %w", err)
	}
	return nil
}

// Watchlist returns all watched symbols in insertion order.
func (s *Store) Watchlist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM watchlist ORDER BY added_at, symbol`)
	if err != nil {
		return nil, fmt.Errorf("store: watchlist: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// AddWatchSymbol adds a symbol to the watchlist. Adding an existing symbol
// is a no-op.
func (s *Store) AddWatchSymbol(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist (symbol, added_at) VALUES (?, ?) ON CONFLICT(symbol) DO NOTHING`,
		symbol, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("store: add watch symbol %s: %w", symbol, err)
	}
	return nil
}

// RemoveWatchSymbol removes a symbol; removing an unknown symbol returns
// ErrNotFound.
func (s *Store) RemoveWatchSymbol(ctx context.Context, symbol string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("store: remove watch symbol %s: %w", symbol, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: remove watch symbol %s: %w", symbol, err)
	}
	if n == 0 {
		return fmt.Errorf("watch symbol %s: %w", symbol, ErrNotFound)
	}
	return nil
}
