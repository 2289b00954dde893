// Package agent runs the trading decision loop: it turns watchlist
// symbols into signals, sizes and validates trades, and drives each trade
// through its lifecycle.
package agent

import (
	"fmt"

	"tradeagent/internal/store"
)

// Modes the agent can run in. Advisory never executes; paper and live
// route orders through the configured execution adapter.
const (
	ModeAdvisory = "advisory"
	ModePaper    = "paper"
	ModeLive     = "live"
)

// Risk profiles. Selecting one overwrites the four numeric thresholds
// from the preset table in a single step.
const (
	ProfileConservative = "conservative"
	ProfileModerate     = "moderate"
	ProfileAggressive   = "aggressive"
)

type profilePreset struct {
	MaxTradePct       float64
	MaxPositionPct    float64
	DailyLossLimitPct float64
	ConfirmAboveUSD   float64
}

var profilePresets = map[string]profilePreset{
	ProfileConservative: {MaxTradePct: 5, MaxPositionPct: 10, DailyLossLimitPct: 2, ConfirmAboveUSD: 100},
	ProfileModerate:     {MaxTradePct: 10, MaxPositionPct: 20, DailyLossLimitPct: 5, ConfirmAboveUSD: 500},
	ProfileAggressive:   {MaxTradePct: 20, MaxPositionPct: 40, DailyLossLimitPct: 10, ConfirmAboveUSD: 2000},
}

// DefaultConfig is the configuration created on first run: disabled,
// advisory, moderate thresholds, five-minute cycle.
func DefaultConfig() store.AgentConfig {
	p := profilePresets[ProfileModerate]
	return store.AgentConfig{
		Enabled:              false,
		Mode:                 ModeAdvisory,
		RiskProfile:          ProfileModerate,
		MaxTradePct:          p.MaxTradePct,
		MaxPositionPct:       p.MaxPositionPct,
		DailyLossLimitPct:    p.DailyLossLimitPct,
		ConfirmAboveUSD:      p.ConfirmAboveUSD,
		Whitelist:            []string{},
		CheckIntervalSeconds: 300,
	}
}

// ConfigUpdate is a partial configuration change; nil fields are left
// untouched. A RiskProfile change applies its preset before any explicit
// threshold overrides in the same update.
type ConfigUpdate struct {
	Enabled              *bool     `json:"enabled,omitempty"`
	Mode                 *string   `json:"mode,omitempty"`
	RiskProfile          *string   `json:"risk_profile,omitempty"`
	MaxTradePct          *float64  `json:"max_trade_pct,omitempty"`
	MaxPositionPct       *float64  `json:"max_position_pct,omitempty"`
	DailyLossLimitPct    *float64  `json:"daily_loss_limit_pct,omitempty"`
	ConfirmAboveUSD      *float64  `json:"confirm_above_usd,omitempty"`
	Whitelist            *[]string `json:"symbol_whitelist,omitempty"`
	CheckIntervalSeconds *int      `json:"check_interval_seconds,omitempty"`
}

// ApplyUpdate validates and applies an update to a configuration snapshot.
// The input is not modified; invalid updates leave the stored config
// unchanged because the caller only persists on success.
func ApplyUpdate(cfg store.AgentConfig, u ConfigUpdate) (store.AgentConfig, error) {
	if u.Mode != nil {
		switch *u.Mode {
		case ModeAdvisory, ModePaper, ModeLive:
			cfg.Mode = *u.Mode
		default:
			return store.AgentConfig{}, fmt.Errorf("invalid mode %q", *u.Mode)
		}
	}
	if u.RiskProfile != nil {
		p, ok := profilePresets[*u.RiskProfile]
		if !ok {
			return store.AgentConfig{}, fmt.Errorf("invalid risk profile %q", *u.RiskProfile)
		}
		cfg.RiskProfile = *u.RiskProfile
		cfg.MaxTradePct = p.MaxTradePct
		cfg.MaxPositionPct = p.MaxPositionPct
		cfg.DailyLossLimitPct = p.DailyLossLimitPct
		cfg.ConfirmAboveUSD = p.ConfirmAboveUSD
	}
	if u.Enabled != nil {
		cfg.Enabled = *u.Enabled
	}
	if u.MaxTradePct != nil {
		if *u.MaxTradePct <= 0 || *u.MaxTradePct > 100 {
			return store.AgentConfig{}, fmt.Errorf("max_trade_pct %v out of range (0, 100]", *u.MaxTradePct)
		}
		cfg.MaxTradePct = *u.MaxTradePct
	}
	if u.MaxPositionPct != nil {
		if *u.MaxPositionPct <= 0 || *u.MaxPositionPct > 100 {
			return store.AgentConfig{}, fmt.Errorf("max_position_pct %v out of range (0, 100]", *u.MaxPositionPct)
		}
		cfg.MaxPositionPct = *u.MaxPositionPct
	}
	if u.DailyLossLimitPct != nil {
		if *u.DailyLossLimitPct <= 0 || *u.DailyLossLimitPct > 100 {
			return store.AgentConfig{}, fmt.Errorf("daily_loss_limit_pct %v out of range (0, 100]", *u.DailyLossLimitPct)
		}
		cfg.DailyLossLimitPct = *u.DailyLossLimitPct
	}
	if u.ConfirmAboveUSD != nil {
		if *u.ConfirmAboveUSD < 0 {
			return store.AgentConfig{}, fmt.Errorf("confirm_above_usd must be non-negative")
		}
		cfg.ConfirmAboveUSD = *u.ConfirmAboveUSD
	}
	if u.Whitelist != nil {
		cfg.Whitelist = append([]string{}, *u.Whitelist...)
	}
	if u.CheckIntervalSeconds != nil {
		if *u.CheckIntervalSeconds < 10 {
			return store.AgentConfig{}, fmt.Errorf("check_interval_seconds must be at least 10")
		}
		cfg.CheckIntervalSeconds = *u.CheckIntervalSeconds
	}
	return cfg, nil
}
