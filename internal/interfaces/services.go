// Package interfaces defines service contracts for folio
package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// PortfolioService exposes the read-only portfolio views.
// Every call recomputes from the holding store.
type PortfolioService interface {
	// GetHoldings returns the raw holdings in store order
	GetHoldings(ctx context.Context) ([]models.Holding, error)

	// GetSummary computes totals, performers, diversification and risk
	GetSummary(ctx context.Context) (*models.PortfolioSummary, error)

	// GetAllocation computes the sector and market-cap breakdowns
	GetAllocation(ctx context.Context) (*models.AllocationBreakdown, error)

	// GetPerformance returns the static benchmark timeline and returns
	GetPerformance(ctx context.Context) (*models.Performance, error)

	// GetInsights produces the narrative, falling back to the heuristic
	// formatter whenever the text generator is absent or fails
	GetInsights(ctx context.Context) (*models.InsightNarrative, error)
}
