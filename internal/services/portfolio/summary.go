package portfolio

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/folio/internal/models"
)

// Risk thresholds on the mean absolute gain percentage. Both are strict:
// a mean of exactly 8 is Low, exactly 15 is Moderate.
const (
	riskHighThreshold     = 15.0
	riskModerateThreshold = 8.0

	maxDiversificationScore = 10
	pointsPerSector         = 2
)

// ComputeSummary derives portfolio totals, best and worst performers,
// diversification score and risk level.
//
// Performers are picked from a stable sort on gain percentage, so ties
// resolve to the holding that appears first in the input, for both the top
// and the worst performer. An empty input yields a zeroed summary with nil
// performers.
func ComputeSummary(holdings []models.Holding) (*models.PortfolioSummary, error) {
	if err := models.ValidateHoldings(holdings); err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	totalInvested := decimal.Zero
	for _, h := range holdings {
		totalValue = totalValue.Add(h.ValueDecimal())
		totalInvested = totalInvested.Add(h.CostBasisDecimal())
	}
	totalGain := totalValue.Sub(totalInvested)

	summary := &models.PortfolioSummary{
		TotalValue:           totalValue.InexactFloat64(),
		TotalInvested:        totalInvested.InexactFloat64(),
		TotalGainLoss:        totalGain.InexactFloat64(),
		TotalGainLossPercent: models.PercentOf(totalGain, totalInvested),
		DiversificationScore: DiversificationScore(countSectors(holdings)),
		RiskLevel:            models.RiskLow,
		HoldingsCount:        len(holdings),
	}
	if len(holdings) == 0 {
		return summary, nil
	}

	top, worst := performers(holdings)
	summary.TopPerformer = top
	summary.WorstPerformer = worst
	summary.RiskLevel = RiskLevelFor(meanAbsoluteGainPercent(holdings))

	return summary, nil
}

// DiversificationScore scores sector spread: two points per distinct sector,
// capped at 10.
func DiversificationScore(sectors int) int {
	return min(maxDiversificationScore, sectors*pointsPerSector)
}

// RiskLevelFor maps the mean absolute gain percentage to a risk label.
func RiskLevelFor(meanAbsGainPct float64) models.RiskLevel {
	switch {
	case meanAbsGainPct > riskHighThreshold:
		return models.RiskHigh
	case meanAbsGainPct > riskModerateThreshold:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

type rankedHolding struct {
	holding models.Holding
	gainPct float64
}

// performers returns the first-seen maximum and first-seen minimum by gain
// percentage. holdings must be non-empty.
func performers(holdings []models.Holding) (top, worst *models.Performer) {
	ranked := make([]rankedHolding, len(holdings))
	for i, h := range holdings {
		ranked[i] = rankedHolding{holding: h, gainPct: h.GainLossPercent()}
	}
	slices.SortStableFunc(ranked, func(a, b rankedHolding) int {
		switch {
		case a.gainPct > b.gainPct:
			return -1
		case a.gainPct < b.gainPct:
			return 1
		}
		return 0
	})

	// The stable sort keeps equal minima in input order at the tail, so walk
	// back to the start of that run.
	last := len(ranked) - 1
	for last > 0 && ranked[last-1].gainPct == ranked[last].gainPct {
		last--
	}

	return toPerformer(ranked[0]), toPerformer(ranked[last])
}

func toPerformer(r rankedHolding) *models.Performer {
	return &models.Performer{
		Symbol:      r.holding.Symbol,
		Name:        r.holding.Name,
		GainPercent: r.gainPct,
	}
}

func countSectors(holdings []models.Holding) int {
	sectors := make(map[string]struct{})
	for _, h := range holdings {
		sectors[h.Sector] = struct{}{}
	}
	return len(sectors)
}

func meanAbsoluteGainPercent(holdings []models.Holding) float64 {
	abs := make([]float64, len(holdings))
	for i, h := range holdings {
		abs[i] = math.Abs(h.GainLossPercent())
	}
	return stat.Mean(abs, nil)
}
