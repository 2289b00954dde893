package signal

import (
	"fmt"
	"math"
	"strings"
)

// Fixed fusion weights: charts lead, news corroborates.
const (
	technicalWeight   = 0.6
	fundamentalWeight = 0.4
)

// Combine fuses the technical and fundamental views into one recommendation.
// It is a pure function of its inputs: the result timestamp is taken from the
// technical signal so identical inputs always produce identical output.
func Combine(tech TechnicalSignal, fund SentimentSignal) CombinedSignal {
	techScore := tech.Signal.Score()
	fundScore := fund.Signal.Score()

	combinedScore := techScore*tech.Confidence*technicalWeight +
		fundScore*fund.Confidence*fundamentalWeight
	combinedConfidence := tech.Confidence*technicalWeight + fund.Confidence*fundamentalWeight

	var final Type
	switch {
	case combinedScore > 1.5:
		final = StrongBuy
	case combinedScore > 0.5:
		final = Buy
	case combinedScore > 0.2:
		final = WeakBuy
	case combinedScore < -1.5:
		final = StrongSell
	case combinedScore < -0.5:
		final = Sell
	case combinedScore < -0.2:
		final = WeakSell
	default:
		final = Hold
	}

	spread := math.Abs(techScore - fundScore)
	agreement := AgreementLow
	if spread < 0.5 {
		agreement = AgreementHigh
	} else if spread < 1.5 {
		agreement = AgreementModerate
	}

	parts := []string{
		fmt.Sprintf("Technical: %s (%.0f%% confident)", tech.Signal, tech.Confidence*100),
		fmt.Sprintf("Fundamental: %s (%.0f%% confident)", fund.Signal, fund.Confidence*100),
	}
	if techScore > 0 && fundScore > 0 {
		parts = append(parts, "Both views agree on a bullish outlook")
	} else if techScore < 0 && fundScore < 0 {
		parts = append(parts, "Both views agree on a bearish outlook")
	} else if spread > 1.5 {
		parts = append(parts, "Significant disagreement between technical and fundamental views")
	}

	return CombinedSignal{
		Symbol:            tech.Symbol,
		FinalSignal:       final,
		FinalConfidence:   combinedConfidence,
		CombinedScore:     combinedScore,
		TechnicalWeight:   technicalWeight,
		FundamentalWeight: fundamentalWeight,
		Agreement:         agreement,
		Rationale:         strings.Join(parts, ". "),
		Timestamp:         tech.Timestamp,
	}
}
