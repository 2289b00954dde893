package signal

import (
	"fmt"
	"strings"
	"time"

	"tradeagent/internal/indicator"
	"tradeagent/internal/market"
)

const minBars = 30

// AnalyzeTechnical scores a price history against a fixed indicator rule set
// and maps the accumulated score to a directional signal. Fewer than 30 bars
// yields HOLD with zero confidence and an explicit rationale; short data is
// never an error. Indicators that are undefined at the latest bar contribute
// no score term.
func AnalyzeTechnical(symbol string, bars []market.PriceBar) TechnicalSignal {
	symbol = market.NormalizeSymbol(symbol)

	if len(bars) < minBars {
		return TechnicalSignal{
			Symbol:     symbol,
			Signal:     Hold,
			Confidence: 0,
			Rationale:  fmt.Sprintf("Insufficient data for technical analysis (%d of %d bars)", len(bars), minBars),
			Timestamp:  time.Now().UTC(),
		}
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
	}
	price := closes[len(closes)-1]

	sma20 := indicator.SMA(closes, 20)
	sma50 := indicator.SMA(closes, 50)
	rsi := indicator.RSI(closes, 14)
	macdLine, macdSig, _ := indicator.MACD(closes, 12, 26, 9)
	bollUpper, _, bollLower := indicator.Bollinger(closes, 20, 2)
	volAvg := indicator.SMA(volumes, 20)

	var notes []string
	score := 0.0
	snap := IndicatorSnapshot{Price: price}

	// trend: price vs SMA20 vs SMA50
	if s20, ok20 := indicator.Last(sma20); ok20 {
		snap.SMA20 = &s20
		if s50, ok50 := indicator.Last(sma50); ok50 {
			snap.SMA50 = &s50
			if price > s20 && s20 > s50 {
				notes = append(notes, "Bullish: price above SMA20 and SMA50")
				score += 1.0
			} else if price < s20 && s20 < s50 {
				notes = append(notes, "Bearish: price below SMA20 and SMA50")
				score -= 1.0
			}
		}
	}

	// momentum: RSI extremes
	if r, ok := indicator.Last(rsi); ok {
		snap.RSI = &r
		if r < 30 {
			notes = append(notes, fmt.Sprintf("Oversold: RSI at %.1f (< 30)", r))
			score += 1.5
		} else if r > 70 {
			notes = append(notes, fmt.Sprintf("Overbought: RSI at %.1f (> 70)", r))
			score -= 1.5
		}
	}

	// trend-momentum: MACD vs its signal line
	if m, okM := indicator.Last(macdLine); okM {
		snap.MACD = &m
		if s, okS := indicator.Last(macdSig); okS {
			if m > s && m > 0 {
				notes = append(notes, "Bullish: MACD above signal line")
				score += 1.0
			} else if m < s && m < 0 {
				notes = append(notes, "Bearish: MACD below signal line")
				score -= 1.0
			}
		}
	}

	// volatility envelope: Bollinger band breaks
	if lo, okLo := indicator.Last(bollLower); okLo {
		if hi, okHi := indicator.Last(bollUpper); okHi {
			if price < lo {
				notes = append(notes, "Oversold: price below lower Bollinger band")
				score += 1.0
			} else if price > hi {
				notes = append(notes, "Overbought: price above upper Bollinger band")
				score -= 1.0
			}
		}
	}

	// participation: volume surge vs trailing 20-bar average
	if avg, ok := indicator.Last(volAvg); ok && avg > 0 {
		ratio := volumes[len(volumes)-1] / avg
		snap.VolumeRatio = &ratio
		if ratio > 1.5 {
			notes = append(notes, "High volume: potential breakout")
			score += 0.5
		}
	}

	sig, confidence := mapTechnicalScore(score)
	rationale := strings.Join(notes, "; ")
	if rationale == "" {
		rationale = "No indicator produced a directional reading"
	}

	return TechnicalSignal{
		Symbol:     symbol,
		Signal:     sig,
		Confidence: confidence,
		Score:      score,
		Rationale:  rationale,
		Indicators: snap,
		Timestamp:  time.Now().UTC(),
	}
}

func mapTechnicalScore(score float64) (Type, float64) {
	confidence := score / 5
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 1 {
		confidence = 1
	}
	switch {
	case score > 2.0:
		return StrongBuy, confidence
	case score > 0.5:
		return Buy, confidence
	case score < -2.0:
		return StrongSell, confidence
	case score < -0.5:
		return Sell, confidence
	default:
		return Hold, 0.5
	}
}
