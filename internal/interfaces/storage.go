package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// HoldingStore is the immutable source of holdings.
type HoldingStore interface {
	// Holdings returns a copy of all holdings in load order
	Holdings(ctx context.Context) ([]models.Holding, error)

	// Performance returns a copy of the static performance comparison
	Performance(ctx context.Context) (*models.Performance, error)
}
