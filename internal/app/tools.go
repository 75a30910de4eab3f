package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the folio server version and uptime. Use this to verify connectivity."),
	)
}

// createGetHoldingsTool returns the get_holdings tool definition
func createGetHoldingsTool() mcp.Tool {
	return mcp.NewTool("get_holdings",
		mcp.WithDescription("List every holding with quantity, average and current price, value, and gain/loss."),
		mcp.WithString("sector",
			mcp.Description("Only list holdings in this sector (e.g., 'Banking', 'Technology')"),
		),
	)
}

// createGetPortfolioSummaryTool returns the get_portfolio_summary tool definition
func createGetPortfolioSummaryTool() mcp.Tool {
	return mcp.NewTool("get_portfolio_summary",
		mcp.WithDescription("Get portfolio totals, top and worst performers, diversification score, and risk level."),
	)
}

// createGetAllocationTool returns the get_allocation tool definition
func createGetAllocationTool() mcp.Tool {
	return mcp.NewTool("get_allocation",
		mcp.WithDescription("Get the allocation of portfolio value by sector and by market-cap tier."),
	)
}

// createGetPerformanceTool returns the get_performance tool definition
func createGetPerformanceTool() mcp.Tool {
	return mcp.NewTool("get_performance",
		mcp.WithDescription("Get the monthly portfolio timeline against the Nifty 50 and gold, with period returns."),
	)
}

// createGetPerformanceChartTool returns the get_performance_chart tool definition
func createGetPerformanceChartTool() mcp.Tool {
	return mcp.NewTool("get_performance_chart",
		mcp.WithDescription("Render the portfolio, Nifty 50 and gold timeline as a PNG line chart, each rebased to 100 at the first month."),
	)
}

// createGetPortfolioInsightsTool returns the get_portfolio_insights tool definition
func createGetPortfolioInsightsTool() mcp.Tool {
	return mcp.NewTool("get_portfolio_insights",
		mcp.WithDescription("Get a short narrative commentary on the portfolio. Falls back to a rule-based summary when no language model is configured."),
	)
}
