package risk

import (
	"fmt"
	"strings"
)

// RiskLevel buckets an assessment score into an operator-facing severity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Holding is one open position as the assessor sees it.
type Holding struct {
	Symbol string  `json:"symbol"`
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
}

// PortfolioAssessment summarizes concentration risk across open holdings.
// SectorExposure maps each sector to its share of total value in percent.
type PortfolioAssessment struct {
	Score            float64            `json:"score"`
	Level            RiskLevel          `json:"level"`
	FlaggedPositions []string           `json:"flagged_positions"`
	FlaggedSectors   []string           `json:"flagged_sectors"`
	SectorExposure   map[string]float64 `json:"sector_exposure"`
	Summary          string             `json:"summary"`
}

// AssessPortfolio flags positions above maxPositionPct of total value and
// sectors above twice that, then scores the result on a 0..10 scale:
// 2 points per flagged position, 1.5 per flagged sector.
func AssessPortfolio(holdings []Holding, maxPositionPct float64) PortfolioAssessment {
	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	if total <= 0 || len(holdings) == 0 {
		return PortfolioAssessment{Level: RiskLow, Summary: "no open positions"}
	}

	var flaggedPositions []string
	sectorValue := map[string]float64{}
	for _, h := range holdings {
		if h.Value/total*100 > maxPositionPct {
			flaggedPositions = append(flaggedPositions, h.Symbol)
		}
		sector := h.Sector
		if sector == "" {
			sector = "unknown"
		}
		sectorValue[sector] += h.Value
	}

	var flaggedSectors []string
	exposure := make(map[string]float64, len(sectorValue))
	for sector, v := range sectorValue {
		pct := v / total * 100
		exposure[sector] = pct
		if pct > maxPositionPct*2 {
			flaggedSectors = append(flaggedSectors, sector)
		}
	}

	score := 2*float64(len(flaggedPositions)) + 1.5*float64(len(flaggedSectors))
	if score > 10 {
		score = 10
	}

	var level RiskLevel
	switch {
	case score < 3:
		level = RiskLow
	case score < 6:
		level = RiskModerate
	case score < 8:
		level = RiskHigh
	default:
		level = RiskCritical
	}

	summary := fmt.Sprintf("%d positions, %d concentrated", len(holdings), len(flaggedPositions))
	if len(flaggedSectors) > 0 {
		summary += ", heavy sectors: " + strings.Join(flaggedSectors, ", ")
	}

	return PortfolioAssessment{
		Score:            score,
		Level:            level,
		FlaggedPositions: flaggedPositions,
		FlaggedSectors:   flaggedSectors,
		SectorExposure:   exposure,
		Summary:          summary,
	}
}
