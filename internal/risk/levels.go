package risk

import (
	"math"

	"tradeagent/internal/signal"
)

// Levels are the exit prices for a proposed entry. Set is false for HOLD
// style signals where no position is opened.
type Levels struct {
	Set           bool    `json:"set"`
	StopLoss      float64 `json:"stop_loss,omitempty"`
	TakeProfit    float64 `json:"take_profit,omitempty"`
	StopLossPct   float64 `json:"stop_loss_pct,omitempty"`
	TakeProfitPct float64 `json:"take_profit_pct,omitempty"`
}

// ExitLevels derives stop-loss and take-profit prices from recent price
// volatility. The stop sits two volatility units away from entry and the
// target rewardRatio times further in the trade's direction. A zero
// volatility falls back to 2% of entry; a zero rewardRatio to 2:1.
func ExitLevels(sig signal.Type, entryPrice, volatility, rewardRatio float64) Levels {
	if entryPrice <= 0 {
		return Levels{}
	}
	if volatility <= 0 {
		volatility = entryPrice * DefaultVolatilityPct
	}
	if rewardRatio <= 0 {
		rewardRatio = DefaultRewardRatio
	}

	risk := 2 * volatility
	var stop, target float64
	switch {
	case sig.IsBuy():
		stop, target = entryPrice-risk, entryPrice+risk*rewardRatio
	case sig.IsSell():
		stop, target = entryPrice+risk, entryPrice-risk*rewardRatio
	default:
		return Levels{}
	}
	return Levels{
		Set:           true,
		StopLoss:      stop,
		TakeProfit:    target,
		StopLossPct:   math.Abs((stop - entryPrice) / entryPrice * 100),
		TakeProfitPct: math.Abs((target - entryPrice) / entryPrice * 100),
	}
}
