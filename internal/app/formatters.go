package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/portfolio"
)

// Series and periods are listed in dashboard order; unknown keys follow
// alphabetically.
var (
	seriesOrder = []string{"portfolio", "nifty50", "gold"}
	periodOrder = []string{"1month", "3months", "1year"}
)

func formatSignedPct(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// formatHoldings formats holdings as a markdown table
func formatHoldings(portfolioName string, holdings []models.Holding) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Holdings: %s\n\n", portfolioName))
	if len(holdings) == 0 {
		sb.WriteString("No holdings.\n")
		return sb.String()
	}

	sb.WriteString("| Symbol | Name | Qty | Avg Price | Current | Value | Gain/Loss | Gain % | Sector | Cap |\n")
	sb.WriteString("|--------|------|-----|-----------|---------|-------|-----------|--------|--------|-----|\n")
	for _, h := range holdings {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.2f | %.2f | %.2f | %.2f | %s | %s | %s |\n",
			h.Symbol, h.Name, h.Quantity, h.AvgPrice, h.CurrentPrice,
			h.Value(), h.GainLoss(), formatSignedPct(h.GainLossPercent()),
			h.Sector, h.MarketCap))
	}
	return sb.String()
}

func formatPerformer(p *models.Performer) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s) %s", p.Symbol, p.Name, formatSignedPct(p.GainPercent))
}

// formatSummary formats the portfolio summary as markdown
func formatSummary(portfolioName, currency string, s *models.PortfolioSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Portfolio Summary: %s\n\n", portfolioName))
	sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", portfolio.FormatAmount(s.TotalValue, currency)))
	sb.WriteString(fmt.Sprintf("**Total Invested:** %s\n", portfolio.FormatAmount(s.TotalInvested, currency)))
	sb.WriteString(fmt.Sprintf("**Total Gain/Loss:** %s (%s)\n", portfolio.FormatAmount(s.TotalGainLoss, currency), formatSignedPct(s.TotalGainLossPercent)))
	sb.WriteString(fmt.Sprintf("**Holdings:** %d\n\n", s.HoldingsCount))
	sb.WriteString(fmt.Sprintf("**Top Performer:** %s\n", formatPerformer(s.TopPerformer)))
	sb.WriteString(fmt.Sprintf("**Worst Performer:** %s\n", formatPerformer(s.WorstPerformer)))
	sb.WriteString(fmt.Sprintf("**Diversification Score:** %d/10\n", s.DiversificationScore))
	sb.WriteString(fmt.Sprintf("**Risk Level:** %s\n", s.RiskLevel))
	return sb.String()
}

func writeAllocationTable(sb *strings.Builder, title string, g models.AllocationGroup) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	if g.Len() == 0 {
		sb.WriteString("No data.\n\n")
		return
	}
	sb.WriteString("| Category | Value | Weight |\n")
	sb.WriteString("|----------|-------|--------|\n")
	for _, e := range g.Entries() {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f%% |\n", e.Label, e.Value, e.Percentage))
	}
	sb.WriteString("\n")
}

// formatAllocation formats the allocation breakdown as markdown
func formatAllocation(portfolioName string, a *models.AllocationBreakdown) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Allocation: %s\n\n", portfolioName))
	writeAllocationTable(&sb, "By Sector", a.BySector)
	writeAllocationTable(&sb, "By Market Cap", a.ByMarketCap)
	return sb.String()
}

// orderedKeys returns the preferred keys that are present, then the rest sorted.
func orderedKeys[V any](m map[string]V, preferred []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(preferred))
	for _, k := range preferred {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// formatPerformance formats the benchmark comparison as markdown
func formatPerformance(p *models.Performance) string {
	var sb strings.Builder

	sb.WriteString("# Performance\n\n")
	sb.WriteString("## Timeline\n\n")
	sb.WriteString("| Date | Portfolio | Nifty 50 | Gold |\n")
	sb.WriteString("|------|-----------|----------|------|\n")
	for _, pt := range p.Timeline {
		sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %.0f |\n", pt.Date, pt.Portfolio, pt.Nifty50, pt.Gold))
	}

	sb.WriteString("\n## Returns\n\n")
	for _, series := range orderedKeys(p.Returns, seriesOrder) {
		periods := p.Returns[series]
		parts := make([]string, 0, len(periods))
		for _, period := range orderedKeys(periods, periodOrder) {
			parts = append(parts, fmt.Sprintf("%s %s", period, formatSignedPct(periods[period])))
		}
		sb.WriteString(fmt.Sprintf("- **%s:** %s\n", series, strings.Join(parts, ", ")))
	}
	return sb.String()
}

// formatInsights formats the narrative with its source
func formatInsights(n *models.InsightNarrative) string {
	return fmt.Sprintf("# Portfolio Insights\n\n_Source: %s_\n\n%s\n", n.Source, n.Text)
}
