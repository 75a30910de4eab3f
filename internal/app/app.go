// Package app wires configuration, storage, clients and services into the
// shared core used by cmd/folio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/folio/internal/clients/gemini"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            *storage.HoldingStore
	GeminiClient     *gemini.Client
	PortfolioService interfaces.PortfolioService
	MCPServer        *server.MCPServer
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, FOLIO_CONFIG, then the binary
// dir, then the development fallback.
func resolveConfigPath(configPath, binDir string) string {
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}
	return configPath
}

// NewApp initializes configuration, the holding store, the optional Gemini
// client, the portfolio service and the MCP server. A holding set that fails
// validation aborts startup.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()
	config, err := common.LoadConfig(resolveConfigPath(configPath, binDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return newApp(context.Background(), config, logger, startupStart)
}

// newApp builds the App from an already loaded config. Tests call it
// directly to skip file and environment resolution.
func newApp(ctx context.Context, config *common.Config, logger *common.Logger, startupStart time.Time) (*App, error) {
	store, err := storage.NewHoldingStore(config.Portfolio.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize holding store: %w", err)
	}
	logger.Info().Str("source", store.Source()).Int("holdings", store.Len()).Msg("Holdings loaded")

	var geminiClient *gemini.Client
	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - insights will use the built-in heuristic")
	} else {
		gc := config.Clients.Gemini
		geminiClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(gc.Model),
			gemini.WithRateLimit(gc.RateLimit),
			gemini.WithTemperature(gc.Temperature),
			gemini.WithMaxOutputTokens(gc.MaxOutputTokens),
			gemini.WithSystemInstruction(gc.SystemInstruction),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			geminiClient = nil
		}
	}

	opts := []portfolio.ServiceOption{
		portfolio.WithCurrency(config.Portfolio.Currency),
		portfolio.WithInsightTimeout(config.Clients.Gemini.GetTimeout()),
	}
	// Only set when non-nil so the service never holds a typed-nil generator.
	if geminiClient != nil {
		opts = append(opts, portfolio.WithTextGenerator(geminiClient))
	}
	portfolioService := portfolio.NewService(store, logger, opts...)

	mcpServer := server.NewMCPServer(
		"folio",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		GeminiClient:     geminiClient,
		PortfolioService: portfolioService,
		MCPServer:        mcpServer,
		StartupTime:      startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// InsightSource describes where narratives come from, for the banner.
func (a *App) InsightSource() string {
	if a.GeminiClient == nil {
		return "heuristic"
	}
	return "gemini (" + a.GeminiClient.Model() + ")"
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	svc := a.PortfolioService
	name := a.Config.Portfolio.Name
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion(a.StartupTime))
	s.AddTool(createGetHoldingsTool(), handleGetHoldings(svc, name, logger))
	s.AddTool(createGetPortfolioSummaryTool(), handleGetPortfolioSummary(svc, name, a.Config.Portfolio.Currency, logger))
	s.AddTool(createGetAllocationTool(), handleGetAllocation(svc, name, logger))
	s.AddTool(createGetPerformanceTool(), handleGetPerformance(svc, logger))
	s.AddTool(createGetPerformanceChartTool(), handleGetPerformanceChart(svc, logger))
	s.AddTool(createGetPortfolioInsightsTool(), handleGetPortfolioInsights(svc, logger))
}
