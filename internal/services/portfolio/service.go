// Package portfolio provides the portfolio analytics services
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// Service implements PortfolioService over an immutable holding store.
// It keeps no state between calls.
type Service struct {
	store          interfaces.HoldingStore
	generator      interfaces.TextGenerator
	currency       string
	insightTimeout time.Duration
	logger         *common.Logger
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithTextGenerator sets the external narrative generator
func WithTextGenerator(g interfaces.TextGenerator) ServiceOption {
	return func(s *Service) {
		s.generator = g
	}
}

// WithCurrency sets the currency used in narrative amounts
func WithCurrency(code string) ServiceOption {
	return func(s *Service) {
		s.currency = code
	}
}

// WithInsightTimeout bounds each text generator call
func WithInsightTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.insightTimeout = d
	}
}

// NewService creates a new portfolio service
func NewService(store interfaces.HoldingStore, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:          store,
		currency:       DefaultCurrency,
		insightTimeout: DefaultInsightTimeout,
		logger:         logger,
	}
	if s.logger == nil {
		s.logger = common.NewSilentLogger()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHoldings returns the raw holdings
func (s *Service) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	holdings, err := s.store.Holdings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	return holdings, nil
}

// GetSummary computes the portfolio summary
func (s *Service) GetSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	holdings, err := s.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := ComputeSummary(holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	return summary, nil
}

// GetAllocation computes the allocation breakdown
func (s *Service) GetAllocation(ctx context.Context) (*models.AllocationBreakdown, error) {
	holdings, err := s.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}
	allocation, err := ComputeAllocation(holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to compute allocation: %w", err)
	}
	return allocation, nil
}

// GetPerformance returns the static performance comparison
func (s *Service) GetPerformance(ctx context.Context) (*models.Performance, error) {
	perf, err := s.store.Performance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read performance: %w", err)
	}
	return perf, nil
}

// GetInsights composes summary and allocation into the narrative
func (s *Service) GetInsights(ctx context.Context) (*models.InsightNarrative, error) {
	holdings, err := s.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := ComputeSummary(holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	allocation, err := ComputeAllocation(holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to compute allocation: %w", err)
	}

	narrative := FormatInsights(ctx, summary, allocation, s.generator, InsightOptions{
		Currency: s.currency,
		Timeout:  s.insightTimeout,
		Logger:   s.logger,
	})
	s.logger.Debug().Str("source", string(narrative.Source)).Msg("Insights generated")
	return narrative, nil
}

var _ interfaces.PortfolioService = (*Service)(nil)
