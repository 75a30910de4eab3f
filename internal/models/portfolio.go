// Package models defines data structures for folio
package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MarketCapTier is the capitalisation bucket a holding is tagged with.
// The common tiers are listed below but the set is not closed.
type MarketCapTier string

const (
	MarketCapLarge MarketCapTier = "Large"
	MarketCapMid   MarketCapTier = "Mid"
	MarketCapSmall MarketCapTier = "Small"
)

// RiskLevel is the heuristic risk label of a portfolio.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

var hundred = decimal.NewFromInt(100)

// Holding is a single owned instrument. Value and gain fields are derived
// on read from quantity and prices so they can never drift.
type Holding struct {
	Symbol       string        `json:"symbol"`
	Name         string        `json:"name"`
	Quantity     int64         `json:"quantity"`
	AvgPrice     float64       `json:"avgPrice"`
	CurrentPrice float64       `json:"currentPrice"`
	Sector       string        `json:"sector"`
	MarketCap    MarketCapTier `json:"marketCap"`
}

// ValueDecimal returns quantity * currentPrice.
func (h Holding) ValueDecimal() decimal.Decimal {
	return decimal.NewFromFloat(h.CurrentPrice).Mul(decimal.NewFromInt(h.Quantity))
}

// CostBasisDecimal returns quantity * avgPrice.
func (h Holding) CostBasisDecimal() decimal.Decimal {
	return decimal.NewFromFloat(h.AvgPrice).Mul(decimal.NewFromInt(h.Quantity))
}

// GainLossDecimal returns value - cost basis.
func (h Holding) GainLossDecimal() decimal.Decimal {
	return h.ValueDecimal().Sub(h.CostBasisDecimal())
}

// Value returns the current market value of the holding.
func (h Holding) Value() float64 {
	return h.ValueDecimal().InexactFloat64()
}

// CostBasis returns the amount invested in the holding.
func (h Holding) CostBasis() float64 {
	return h.CostBasisDecimal().InexactFloat64()
}

// GainLoss returns the unrealised gain (negative for a loss).
func (h Holding) GainLoss() float64 {
	return h.GainLossDecimal().InexactFloat64()
}

// GainLossPercent returns the gain as a percentage of cost basis.
// A zero cost basis yields 0.
func (h Holding) GainLossPercent() float64 {
	return PercentOf(h.GainLossDecimal(), h.CostBasisDecimal())
}

// PercentOf returns part / whole * 100, or 0 when whole is zero.
func PercentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

// MarshalJSON includes the derived value and gain fields.
func (h Holding) MarshalJSON() ([]byte, error) {
	type plain Holding
	return json.Marshal(struct {
		plain
		Value           float64 `json:"value"`
		GainLoss        float64 `json:"gainLoss"`
		GainLossPercent float64 `json:"gainLossPercent"`
	}{
		plain:           plain(h),
		Value:           h.Value(),
		GainLoss:        h.GainLoss(),
		GainLossPercent: h.GainLossPercent(),
	})
}

// Performer identifies the best or worst holding by gain percentage.
type Performer struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	GainPercent float64 `json:"gainPercent"`
}

// PortfolioSummary holds portfolio-wide totals and heuristics.
// Performers are nil for an empty portfolio.
type PortfolioSummary struct {
	TotalValue           float64    `json:"totalValue"`
	TotalInvested        float64    `json:"totalInvested"`
	TotalGainLoss        float64    `json:"totalGainLoss"`
	TotalGainLossPercent float64    `json:"totalGainLossPercent"`
	TopPerformer         *Performer `json:"topPerformer"`
	WorstPerformer       *Performer `json:"worstPerformer"`
	DiversificationScore int        `json:"diversificationScore"`
	RiskLevel            RiskLevel  `json:"riskLevel"`
	HoldingsCount        int        `json:"holdingsCount"`
}
