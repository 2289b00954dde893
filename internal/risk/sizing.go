package risk

import (
	"fmt"
	"math"
)

// Default risk assumptions, matching the conservative sizing rules the
// cycle controller relies on.
const (
	DefaultRiskPerTrade   = 0.02 // fraction of portfolio risked per trade
	DefaultAssumedRiskPct = 0.05 // assumed per-unit risk when no stop given
	DefaultRewardRatio    = 2.0
	DefaultVolatilityPct  = 0.02
)

// PositionSizing is the result of a sizing calculation. RecommendedQuantity
// is always a non-negative whole number; zero means no position should be
// opened.
type PositionSizing struct {
	Symbol              string  `json:"symbol"`
	RecommendedQuantity int64   `json:"recommended_quantity"`
	PositionValue       float64 `json:"position_value"`
	PositionPct         float64 `json:"position_pct"`
	RiskAmount          float64 `json:"risk_amount"`
	RiskPerUnit         float64 `json:"risk_per_unit"`
	EntryPrice          float64 `json:"entry_price"`
	StopLoss            float64 `json:"stop_loss"`
}

// SizePosition computes how many units to buy so that a stop-out loses at
// most riskPerTrade of the portfolio. With no stop price a default 5%
// per-unit risk is assumed. Fails on non-positive portfolio value or entry.
func SizePosition(symbol string, portfolioValue, riskPerTrade, entryPrice, stopLoss float64) (PositionSizing, error) {
	if portfolioValue <= 0 {
		return PositionSizing{}, fmt.Errorf("size %s: invalid portfolio value %.2f", symbol, portfolioValue)
	}
	if entryPrice <= 0 {
		return PositionSizing{}, fmt.Errorf("size %s: invalid entry price %.2f", symbol, entryPrice)
	}
	if riskPerTrade <= 0 {
		riskPerTrade = DefaultRiskPerTrade
	}

	riskAmount := portfolioValue * riskPerTrade

	var riskPerUnit float64
	if stopLoss > 0 {
		riskPerUnit = math.Abs(entryPrice - stopLoss)
	} else {
		riskPerUnit = entryPrice * DefaultAssumedRiskPct
	}

	var qty int64
	if riskPerUnit > 0 {
		qty = int64(math.Floor(riskAmount / riskPerUnit))
	}
	if qty < 0 {
		qty = 0
	}

	positionValue := float64(qty) * entryPrice
	return PositionSizing{
		Symbol:              symbol,
		RecommendedQuantity: qty,
		PositionValue:       positionValue,
		PositionPct:         positionValue / portfolioValue * 100,
		RiskAmount:          riskAmount,
		RiskPerUnit:         riskPerUnit,
		EntryPrice:          entryPrice,
		StopLoss:            stopLoss,
	}, nil
}
