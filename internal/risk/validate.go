package risk

import (
	"fmt"
	"strings"

	"tradeagent/internal/signal"
)

// ValidationStatus is the outcome of a pre-trade risk check.
type ValidationStatus string

const (
	StatusNoTrade              ValidationStatus = "NO_TRADE"
	StatusRejected             ValidationStatus = "REJECTED"
	StatusApproved             ValidationStatus = "APPROVED"
	StatusApprovedWithWarnings ValidationStatus = "APPROVED_WITH_WARNINGS"
)

// TradeProposal is a candidate order awaiting risk review.
type TradeProposal struct {
	Symbol         string      `json:"symbol"`
	Signal         signal.Type `json:"signal"`
	Quantity       int64       `json:"quantity"`
	EntryPrice     float64     `json:"entry_price"`
	Confidence     float64     `json:"confidence"`
	PortfolioValue float64     `json:"portfolio_value"`
}

// Limits are the thresholds a proposal is validated against.
type Limits struct {
	MaxPositionPct float64 `json:"max_position_pct"`
	MinConfidence  float64 `json:"min_confidence"`
}

// Validation is the result of checking a proposal. Approved is true for
// both clean approvals and warning-only ones; hard violations reject.
type Validation struct {
	Approved    bool             `json:"approved"`
	Status      ValidationStatus `json:"status"`
	Reason      string           `json:"reason"`
	Violations  []string         `json:"violations,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	TradeValue  float64          `json:"trade_value"`
	PositionPct float64          `json:"position_pct"`
}

// ValidateTrade checks a proposal against position-size limits and a
// confidence floor. Size breaches reject the trade; low confidence only
// warns. A HOLD signal never trades.
func ValidateTrade(p TradeProposal, limits Limits) Validation {
	if p.Signal == signal.Hold {
		return Validation{
			Status: StatusNoTrade,
			Reason: "signal is HOLD, no trade needed",
		}
	}

	tradeValue := float64(p.Quantity) * p.EntryPrice
	var positionPct float64
	if p.PortfolioValue > 0 {
		positionPct = tradeValue / p.PortfolioValue * 100
	}

	var violations, warnings []string
	if positionPct > limits.MaxPositionPct {
		violations = append(violations,
			fmt.Sprintf("position size %.1f%% exceeds max %.1f%%", positionPct, limits.MaxPositionPct))
	}
	if p.PortfolioValue > 0 && tradeValue > p.PortfolioValue {
		violations = append(violations, "trade value exceeds total portfolio value")
	}
	if p.Confidence < limits.MinConfidence {
		warnings = append(warnings,
			fmt.Sprintf("low confidence %.2f < %.2f", p.Confidence, limits.MinConfidence))
	}

	v := Validation{
		Violations:  violations,
		Warnings:    warnings,
		TradeValue:  tradeValue,
		PositionPct: positionPct,
	}
	switch {
	case len(violations) > 0:
		v.Status = StatusRejected
		v.Reason = strings.Join(violations, "; ")
	case len(warnings) > 0:
		v.Approved = true
		v.Status = StatusApprovedWithWarnings
		v.Reason = strings.Join(warnings, "; ")
	default:
		v.Approved = true
		v.Status = StatusApproved
		v.Reason = "all risk checks passed"
	}
	return v
}
