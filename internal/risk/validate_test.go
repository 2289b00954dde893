package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradeagent/internal/signal"
)

func proposal(sig signal.Type, qty int64, price, conf float64) TradeProposal {
	return TradeProposal{
		Symbol:         "AAPL",
		Signal:         sig,
		Quantity:       qty,
		EntryPrice:     price,
		Confidence:     conf,
		PortfolioValue: 10000,
	}
}

func TestValidateTrade_HoldIsNoTrade(t *testing.T) {
	v := ValidateTrade(proposal(signal.Hold, 100, 50, 0.9), Limits{MaxPositionPct: 20, MinConfidence: 0.3})
	assert.False(t, v.Approved)
	assert.Equal(t, StatusNoTrade, v.Status)
}

func TestValidateTrade_CleanApproval(t *testing.T) {
	// 10 * 100 = $1000 = 10% of portfolio, under the 20% cap
	v := ValidateTrade(proposal(signal.Buy, 10, 100, 0.8), Limits{MaxPositionPct: 20, MinConfidence: 0.3})
	assert.True(t, v.Approved)
	assert.Equal(t, StatusApproved, v.Status)
	assert.Empty(t, v.Violations)
	assert.Empty(t, v.Warnings)
	assert.Equal(t, 1000.0, v.TradeValue)
	assert.Equal(t, 10.0, v.PositionPct)
}

func TestValidateTrade_OversizedPositionRejects(t *testing.T) {
	// 30 * 100 = 30% of portfolio against a 20% cap
	v := ValidateTrade(proposal(signal.Buy, 30, 100, 0.9), Limits{MaxPositionPct: 20, MinConfidence: 0.3})
	assert.False(t, v.Approved)
	assert.Equal(t, StatusRejected, v.Status)
	assert.Len(t, v.Violations, 1)
}

func TestValidateTrade_TradeBiggerThanPortfolioRejects(t *testing.T) {
	v := ValidateTrade(proposal(signal.Buy, 200, 100, 0.9), Limits{MaxPositionPct: 500, MinConfidence: 0.3})
	assert.Equal(t, StatusRejected, v.Status)
	assert.Contains(t, v.Reason, "exceeds total portfolio value")
}

func TestValidateTrade_LowConfidenceOnlyWarns(t *testing.T) {
	v := ValidateTrade(proposal(signal.Buy, 10, 100, 0.1), Limits{MaxPositionPct: 20, MinConfidence: 0.3})
	assert.True(t, v.Approved)
	assert.Equal(t, StatusApprovedWithWarnings, v.Status)
	assert.Len(t, v.Warnings, 1)
}

func TestValidateTrade_ViolationsOutrankWarnings(t *testing.T) {
	// both oversized and low confidence: rejection wins
	v := ValidateTrade(proposal(signal.Sell, 30, 100, 0.1), Limits{MaxPositionPct: 20, MinConfidence: 0.3})
	assert.False(t, v.Approved)
	assert.Equal(t, StatusRejected, v.Status)
	assert.NotEmpty(t, v.Warnings, "warnings are still reported alongside the rejection")
}

func TestAssessPortfolio_Empty(t *testing.T) {
	got := AssessPortfolio(nil, 20)
	assert.Equal(t, RiskLow, got.Level)
	assert.Zero(t, got.Score)
}

func TestAssessPortfolio_ConcentrationEscalates(t *testing.T) {
	// one position is 60% of the book and its sector 60% > 40% cap:
	// 2*1 + 1.5*1 = 3.5 => MODERATE
	holdings := []Holding{
		{Symbol: "AAPL", Sector: "tech", Value: 6000},
		{Symbol: "XOM", Sector: "energy", Value: 2000},
		{Symbol: "JPM", Sector: "finance", Value: 2000},
	}
	got := AssessPortfolio(holdings, 20)
	assert.Equal(t, 3.5, got.Score)
	assert.Equal(t, RiskModerate, got.Level)
	assert.Equal(t, []string{"AAPL"}, got.FlaggedPositions)
	assert.Equal(t, []string{"tech"}, got.FlaggedSectors)
	assert.InDelta(t, 60.0, got.SectorExposure["tech"], 1e-9)
	assert.InDelta(t, 20.0, got.SectorExposure["energy"], 1e-9)
}

func TestAssessPortfolio_ScoreCapsAtTen(t *testing.T) {
	var holdings []Holding
	sectors := []string{"a", "b", "c", "d", "e", "f"}
	for _, s := range sectors {
		holdings = append(holdings, Holding{Symbol: s, Sector: s, Value: 1000})
	}
	// every position is 16.7% > 10% cap and every sector > 20%
	got := AssessPortfolio(holdings, 10)
	assert.Equal(t, 10.0, got.Score)
	assert.Equal(t, RiskCritical, got.Level)
}
