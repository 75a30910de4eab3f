package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/folio/internal/common"
)

// newRouter builds the chi router with middleware, REST routes and MCP.
func (s *Server) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareStack(s.logger)...)
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorWithCode(w, http.StatusNotFound, "Endpoint not found", "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorWithCode(w, http.StatusMethodNotAllowed, "Method not allowed", "method_not_allowed")
	})

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		// System
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/config", s.handleConfig)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Post("/shutdown", s.handleShutdown)

		// Portfolio
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/holdings", s.handleHoldings)
			r.Get("/allocation", s.handleAllocation)
			r.Get("/performance", s.handlePerformance)
			r.Get("/performance/chart", s.handlePerformanceChart)
			r.Get("/summary", s.handleSummary)
			r.Get("/ai-insights", s.handleInsights)
		})
	})

	// MCP over Streamable HTTP
	if s.app.MCPServer != nil {
		r.Handle("/mcp", server.NewStreamableHTTPServer(s.app.MCPServer,
			server.WithStateLess(true),
		))
	}

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Portfolio Analytics API is running!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig reports the effective runtime configuration with secrets masked.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config
	dataSource := cfg.Portfolio.DataPath
	if dataSource == "" {
		dataSource = "embedded"
	}

	insights := "heuristic"
	model := ""
	if s.app.GeminiClient != nil {
		insights = "external"
		model = s.app.GeminiClient.Model()
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment": cfg.Environment,
		"portfolio": map[string]string{
			"name":     cfg.Portfolio.Name,
			"data":     dataSource,
			"currency": cfg.Portfolio.Currency,
		},
		"insights": map[string]string{
			"source":  insights,
			"model":   model,
			"api_key": maskSecret(cfg.Clients.Gemini.APIKey),
			"timeout": cfg.Clients.Gemini.GetTimeout().String(),
		},
		"logging": map[string]interface{}{
			"level":   cfg.Logging.Level,
			"outputs": cfg.Logging.Outputs,
		},
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	correlationID := r.URL.Query().Get("correlation_id")
	limit := 50
	if v, err := parseLimit(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}

	resp := map[string]interface{}{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"commit":     common.GetGitCommit(),
		"uptime":     time.Since(s.app.StartupTime).Round(time.Second).String(),
		"started_at": s.app.StartupTime,
	}

	if correlationID != "" {
		if logs, err := s.app.Logger.GetMemoryLogsForCorrelation(correlationID); err == nil {
			resp["correlation_logs"] = logs
		}
	}
	if logs, err := s.app.Logger.GetMemoryLogsWithLimit(limit); err == nil {
		resp["recent_logs"] = logs
	}

	WriteJSON(w, http.StatusOK, resp)
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			select {
			case s.shutdownChan <- struct{}{}:
			default:
				s.logger.Debug().Msg("Shutdown already pending")
			}
		}()
	}
}
