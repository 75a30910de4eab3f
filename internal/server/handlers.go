package server

import (
	"net/http"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/portfolio"
)

// handleHoldings handles GET /api/portfolio/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.app.PortfolioService.GetHoldings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch portfolio holdings")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch portfolio holdings")
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	WriteJSON(w, http.StatusOK, holdings)
}

// handleAllocation handles GET /api/portfolio/allocation.
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	allocation, err := s.app.PortfolioService.GetAllocation(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to calculate portfolio allocation")
		WriteError(w, http.StatusInternalServerError, "Failed to calculate portfolio allocation")
		return
	}
	WriteJSON(w, http.StatusOK, allocation)
}

// handlePerformance handles GET /api/portfolio/performance.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := s.app.PortfolioService.GetPerformance(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch performance data")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch performance data")
		return
	}
	WriteJSON(w, http.StatusOK, perf)
}

// handlePerformanceChart handles GET /api/portfolio/performance/chart.
func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	perf, err := s.app.PortfolioService.GetPerformance(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch performance data")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch performance data")
		return
	}
	png, err := portfolio.RenderPerformanceChart(perf)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render performance chart")
		WriteError(w, http.StatusInternalServerError, "Failed to render performance chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleSummary handles GET /api/portfolio/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.app.PortfolioService.GetSummary(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to calculate portfolio summary")
		WriteError(w, http.StatusInternalServerError, "Failed to calculate portfolio summary")
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// handleInsights handles GET /api/portfolio/ai-insights. The narrative
// falls back to the heuristic internally, so only store failures reach here.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	narrative, err := s.app.PortfolioService.GetInsights(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate insights")
		WriteError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}
	WriteJSON(w, http.StatusOK, narrative)
}
