package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/portfolio"
)

// handleGetVersion implements the get_version tool
func handleGetVersion(startedAt time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Folio MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nUptime: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit(),
			time.Since(startedAt).Round(time.Second))
		return textResult(result), nil
	}
}

// handleGetHoldings implements the get_holdings tool
func handleGetHoldings(svc interfaces.PortfolioService, portfolioName string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		holdings, err := svc.GetHoldings(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("get_holdings failed")
			return errorResult(fmt.Sprintf("Holdings error: %v", err)), nil
		}

		if sector := strings.TrimSpace(request.GetString("sector", "")); sector != "" {
			filtered := holdings[:0:0]
			for _, h := range holdings {
				if strings.EqualFold(h.Sector, sector) {
					filtered = append(filtered, h)
				}
			}
			holdings = filtered
		}

		return textResult(formatHoldings(portfolioName, holdings)), nil
	}
}

// handleGetPortfolioSummary implements the get_portfolio_summary tool
func handleGetPortfolioSummary(svc interfaces.PortfolioService, portfolioName, currency string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, err := svc.GetSummary(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("get_portfolio_summary failed")
			return errorResult(fmt.Sprintf("Summary error: %v", err)), nil
		}
		return textResult(formatSummary(portfolioName, currency, summary)), nil
	}
}

// handleGetAllocation implements the get_allocation tool
func handleGetAllocation(svc interfaces.PortfolioService, portfolioName string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		allocation, err := svc.GetAllocation(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("get_allocation failed")
			return errorResult(fmt.Sprintf("Allocation error: %v", err)), nil
		}
		return textResult(formatAllocation(portfolioName, allocation)), nil
	}
}

// handleGetPerformance implements the get_performance tool
func handleGetPerformance(svc interfaces.PortfolioService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		perf, err := svc.GetPerformance(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("get_performance failed")
			return errorResult(fmt.Sprintf("Performance error: %v", err)), nil
		}
		return textResult(formatPerformance(perf)), nil
	}
}

// handleGetPerformanceChart implements the get_performance_chart tool
func handleGetPerformanceChart(svc interfaces.PortfolioService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		perf, err := svc.GetPerformance(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("get_performance_chart failed")
			return errorResult(fmt.Sprintf("Performance error: %v", err)), nil
		}
		png, err := portfolio.RenderPerformanceChart(perf)
		if err != nil {
			logger.Error().Err(err).Msg("get_performance_chart render failed")
			return errorResult(fmt.Sprintf("Chart error: %v", err)), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png"),
			},
		}, nil
	}
}

// handleGetPortfolioInsights implements the get_portfolio_insights tool
func handleGetPortfolioInsights(svc interfaces.PortfolioService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		narrative, err := svc.GetInsights(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("get_portfolio_insights failed")
			return errorResult(fmt.Sprintf("Insights error: %v", err)), nil
		}
		return textResult(formatInsights(narrative)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
