package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/storage"
)

// mockPortfolioService implements interfaces.PortfolioService for testing.
// Unset functions delegate to a real service over the seed portfolio.
type mockPortfolioService struct {
	seed          *portfolio.Service
	getHoldings   func(ctx context.Context) ([]models.Holding, error)
	getSummary    func(ctx context.Context) (*models.PortfolioSummary, error)
	getAllocation func(ctx context.Context) (*models.AllocationBreakdown, error)
	getPerf       func(ctx context.Context) (*models.Performance, error)
	getInsights   func(ctx context.Context) (*models.InsightNarrative, error)
}

func newMockService(t *testing.T) *mockPortfolioService {
	t.Helper()
	store, err := storage.NewHoldingStore("")
	require.NoError(t, err)
	return &mockPortfolioService{seed: portfolio.NewService(store, common.NewSilentLogger())}
}

func (m *mockPortfolioService) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	if m.getHoldings != nil {
		return m.getHoldings(ctx)
	}
	return m.seed.GetHoldings(ctx)
}

func (m *mockPortfolioService) GetSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	if m.getSummary != nil {
		return m.getSummary(ctx)
	}
	return m.seed.GetSummary(ctx)
}

func (m *mockPortfolioService) GetAllocation(ctx context.Context) (*models.AllocationBreakdown, error) {
	if m.getAllocation != nil {
		return m.getAllocation(ctx)
	}
	return m.seed.GetAllocation(ctx)
}

func (m *mockPortfolioService) GetPerformance(ctx context.Context) (*models.Performance, error) {
	if m.getPerf != nil {
		return m.getPerf(ctx)
	}
	return m.seed.GetPerformance(ctx)
}

func (m *mockPortfolioService) GetInsights(ctx context.Context) (*models.InsightNarrative, error) {
	if m.getInsights != nil {
		return m.getInsights(ctx)
	}
	return m.seed.GetInsights(ctx)
}

func newTestServer(svc *mockPortfolioService) *Server {
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		PortfolioService: svc,
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

var errBoom = errors.New("boom")

func TestRoot(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Portfolio Analytics API is running!"}`, rec.Body.String())
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(newMockService(t))

	rec := doRequest(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = doRequest(t, srv, http.MethodHead, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	var v map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, common.GetVersion(), v["version"])
}

func TestHandleHoldings(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/holdings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var holdings []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdings))
	require.Len(t, holdings, 15)
	assert.Equal(t, "RELIANCE", holdings[0]["symbol"])
	assert.Contains(t, holdings[0], "value")
	assert.Contains(t, holdings[0], "gainLossPercent")
}

func TestHandleHoldings_EmptyIsArray(t *testing.T) {
	svc := newMockService(t)
	svc.getHoldings = func(ctx context.Context) ([]models.Holding, error) { return nil, nil }

	rec := doRequest(t, newTestServer(svc), http.MethodGet, "/api/portfolio/holdings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleSummary(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.InDelta(t, 4148068.75, summary.TotalValue, 1e-6)
	assert.Equal(t, "TATAMOTORS", summary.TopPerformer.Symbol)
	assert.Equal(t, "HDFC", summary.WorstPerformer.Symbol)
	assert.Equal(t, models.RiskModerate, summary.RiskLevel)
	assert.Equal(t, 10, summary.DiversificationScore)
}

func TestHandleAllocation(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/allocation")
	require.Equal(t, http.StatusOK, rec.Code)

	var allocation models.AllocationBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &allocation))
	assert.Equal(t, "Energy", allocation.BySector.Labels()[0])
	assert.Equal(t, []string{"Large"}, allocation.ByMarketCap.Labels())
}

func TestHandlePerformance(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/performance")
	require.Equal(t, http.StatusOK, rec.Code)

	var perf models.Performance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &perf))
	assert.Len(t, perf.Timeline, 6)
	assert.Equal(t, 8.9, perf.Returns["gold"]["1year"])
}

func TestHandlePerformanceChart(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/performance/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
}

func TestHandlePerformanceChart_TooFewPoints(t *testing.T) {
	svc := newMockService(t)
	svc.getPerf = func(ctx context.Context) (*models.Performance, error) {
		return &models.Performance{}, nil
	}
	rec := doRequest(t, newTestServer(svc), http.MethodGet, "/api/portfolio/performance/chart")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to render performance chart", decodeError(t, rec).Error)
}

func TestHandleInsights(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/ai-insights")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "heuristic", body["source"])
	assert.Contains(t, body["insights"], "Banking")
}

func TestPortfolioHandlers_ServiceErrors(t *testing.T) {
	svc := newMockService(t)
	svc.getHoldings = func(ctx context.Context) ([]models.Holding, error) { return nil, errBoom }
	svc.getAllocation = func(ctx context.Context) (*models.AllocationBreakdown, error) { return nil, errBoom }
	svc.getPerf = func(ctx context.Context) (*models.Performance, error) { return nil, errBoom }
	svc.getSummary = func(ctx context.Context) (*models.PortfolioSummary, error) { return nil, errBoom }
	svc.getInsights = func(ctx context.Context) (*models.InsightNarrative, error) { return nil, errBoom }
	srv := newTestServer(svc)

	tests := map[string]string{
		"/api/portfolio/holdings":          "Failed to fetch portfolio holdings",
		"/api/portfolio/allocation":        "Failed to calculate portfolio allocation",
		"/api/portfolio/performance":       "Failed to fetch performance data",
		"/api/portfolio/performance/chart": "Failed to fetch performance data",
		"/api/portfolio/summary":           "Failed to calculate portfolio summary",
		"/api/portfolio/ai-insights":       "Failed to generate insights",
	}
	for path, msg := range tests {
		rec := doRequest(t, srv, http.MethodGet, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Equal(t, msg, decodeError(t, rec).Error, path)
		assert.NotContains(t, rec.Body.String(), "boom", "internal detail leaked on %s", path)
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/portfolio/unknown")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", decodeError(t, rec).Error)
}

func TestWrongMethod(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodPost, "/api/portfolio/summary")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", decodeError(t, rec).Error)
}

func TestPanicRecovery(t *testing.T) {
	svc := newMockService(t)
	svc.getSummary = func(ctx context.Context) (*models.PortfolioSummary, error) { panic("unexpected") }

	rec := doRequest(t, newTestServer(svc), http.MethodGet, "/api/portfolio/summary")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong!", decodeError(t, rec).Error)
}

func TestHandleConfig_MasksKey(t *testing.T) {
	srv := newTestServer(newMockService(t))
	srv.app.Config.Clients.Gemini.APIKey = "AIzaSecretValue"

	rec := doRequest(t, srv, http.MethodGet, "/api/config")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "SecretValue")
	assert.Contains(t, rec.Body.String(), "AIza****")
	assert.Contains(t, rec.Body.String(), `"source":"heuristic"`)
}

func TestHandleDiagnostics(t *testing.T) {
	rec := doRequest(t, newTestServer(newMockService(t)), http.MethodGet, "/api/diagnostics?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "version")
}

func TestHandleShutdown(t *testing.T) {
	srv := newTestServer(newMockService(t))
	ch := make(chan struct{}, 1)
	srv.SetShutdownChannel(ch)

	rec := doRequest(t, srv, http.MethodPost, "/api/shutdown")
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown was not signalled")
	}
}

func TestHandleShutdown_RepeatedRequestsDoNotBlock(t *testing.T) {
	srv := newTestServer(newMockService(t))
	ch := make(chan struct{}, 1)
	srv.SetShutdownChannel(ch)

	for i := 0; i < 3; i++ {
		rec := doRequest(t, srv, http.MethodPost, "/api/shutdown")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	time.Sleep(500 * time.Millisecond)
	require.Len(t, ch, 1)
	<-ch

	// A sender still blocked on the channel would deliver here.
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ch)
}

func TestHandleShutdown_ProductionForbidden(t *testing.T) {
	srv := newTestServer(newMockService(t))
	srv.app.Config.Environment = "production"
	ch := make(chan struct{}, 1)
	srv.SetShutdownChannel(ch)

	rec := doRequest(t, srv, http.MethodPost, "/api/shutdown")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, ch)
}
