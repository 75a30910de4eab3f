package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

const (
	// DefaultCurrency is used when no valid currency code is configured.
	DefaultCurrency = money.INR

	// DefaultInsightTimeout bounds a single call to the text generator.
	DefaultInsightTimeout = 20 * time.Second

	// overweightSectorPct is the sector weight above which the heuristic
	// narrative recommends rebalancing.
	overweightSectorPct = 35.0

	promptTopSectors = 3
)

var errEmptyInsight = errors.New("text generator returned no text")

// InsightOptions configures FormatInsights.
type InsightOptions struct {
	Currency string        // ISO currency code for amounts, default INR
	Timeout  time.Duration // per-call generator timeout, default 20s
	Logger   *common.Logger
}

func (o InsightOptions) withDefaults() InsightOptions {
	if money.GetCurrency(o.Currency) == nil {
		o.Currency = DefaultCurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultInsightTimeout
	}
	if o.Logger == nil {
		o.Logger = common.NewSilentLogger()
	}
	return o
}

// FormatInsights produces the portfolio narrative. When a generator is
// supplied it is asked first; any failure, timeout or empty reply falls
// through to HeuristicInsights without retry. It never returns an error.
func FormatInsights(ctx context.Context, summary *models.PortfolioSummary, allocation *models.AllocationBreakdown, generator interfaces.TextGenerator, opts InsightOptions) *models.InsightNarrative {
	opts = opts.withDefaults()

	if generator != nil {
		text, err := generateExternal(ctx, summary, allocation, generator, opts)
		if err == nil {
			return &models.InsightNarrative{Source: models.InsightSourceExternal, Text: text}
		}
		opts.Logger.Warn().Err(err).Msg("External insight generation failed, using heuristic narrative")
	}

	return &models.InsightNarrative{
		Source: models.InsightSourceHeuristic,
		Text:   HeuristicInsights(summary, allocation, opts.Currency),
	}
}

func generateExternal(ctx context.Context, summary *models.PortfolioSummary, allocation *models.AllocationBreakdown, generator interfaces.TextGenerator, opts InsightOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	text, err := generator.GenerateContent(ctx, BuildInsightPrompt(summary, allocation, opts.Currency))
	if err != nil {
		return "", fmt.Errorf("generate insights: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyInsight
	}
	return text, nil
}

// BuildInsightPrompt renders the structured analyst prompt sent to the
// text generator.
func BuildInsightPrompt(summary *models.PortfolioSummary, allocation *models.AllocationBreakdown, currency string) string {
	var sb strings.Builder
	sb.WriteString("You are a portfolio analyst. Analyze the following equity portfolio and give a concise, actionable summary (4-6 bullet points):\n\n")
	fmt.Fprintf(&sb, "Summary: totalValue=%s, totalInvested=%s, totalGainLoss=%s (%.2f%%).\n",
		FormatAmount(summary.TotalValue, currency),
		FormatAmount(summary.TotalInvested, currency),
		FormatAmount(summary.TotalGainLoss, currency),
		summary.TotalGainLossPercent,
	)
	fmt.Fprintf(&sb, "Top Performer: %s.\n", describePerformer(summary.TopPerformer))
	fmt.Fprintf(&sb, "Worst Performer: %s.\n", describePerformer(summary.WorstPerformer))
	fmt.Fprintf(&sb, "Risk Level: %s, Diversification Score: %d/10.\n", summary.RiskLevel, summary.DiversificationScore)

	top := allocation.BySector.TopByValue(promptTopSectors)
	sectors := make([]string, len(top))
	for i, e := range top {
		sectors[i] = fmt.Sprintf("%s %.1f%%", e.Label, e.Percentage)
	}
	fmt.Fprintf(&sb, "Sector Allocation (top %d): %s.\n", promptTopSectors, strings.Join(sectors, ", "))
	sb.WriteString("Provide: portfolio health, concentration risk, rebalancing suggestion, and 1-2 specific actions.")
	return sb.String()
}

// HeuristicInsights renders the deterministic bullet-list narrative. The
// lines are always in the same order: overall gain, largest sector,
// market-cap mix, performers, risk and diversification, suggestion.
func HeuristicInsights(summary *models.PortfolioSummary, allocation *models.AllocationBreakdown, currency string) string {
	direction := "up"
	if summary.TotalGainLoss < 0 {
		direction = "down"
	}

	largest := "N/A"
	if e, ok := allocation.BySector.Largest(); ok {
		largest = fmt.Sprintf("%s (%.1f%%)", e.Label, e.Percentage)
	}

	tierPct := func(tier models.MarketCapTier) float64 {
		s, _ := allocation.ByMarketCap.Get(string(tier))
		return s.Percentage
	}

	performers := "Top performer: N/A; worst: N/A."
	if summary.TopPerformer != nil && summary.WorstPerformer != nil {
		performers = fmt.Sprintf("Top performer: %s at %.2f%%; worst: %s at %.2f%%.",
			summary.TopPerformer.Symbol, summary.TopPerformer.GainPercent,
			summary.WorstPerformer.Symbol, summary.WorstPerformer.GainPercent)
	}

	suggestion := "Suggestion: Keep each sector below 35% and review the allocation periodically to stay diversified."
	if hasOverweightSector(allocation) {
		suggestion = "Suggestion: Trim overweight sectors above 35% and rebalance toward underweight areas; stagger buys in laggards if fundamentals hold."
	}

	lines := []string{
		fmt.Sprintf("Portfolio is %s %.2f%% versus cost; total value around %s.",
			direction, math.Abs(summary.TotalGainLossPercent), FormatAmount(summary.TotalValue, currency)),
		fmt.Sprintf("Largest sector weight: %s.", largest),
		fmt.Sprintf("Market-cap mix ~ Large %.1f%%, Mid %.1f%%, Small %.1f%%.",
			tierPct(models.MarketCapLarge), tierPct(models.MarketCapMid), tierPct(models.MarketCapSmall)),
		performers,
		fmt.Sprintf("Risk labeled %s with diversification score %d/10.", summary.RiskLevel, summary.DiversificationScore),
		suggestion,
	}
	return "- " + strings.Join(lines, "\n- ")
}

func hasOverweightSector(allocation *models.AllocationBreakdown) bool {
	for _, e := range allocation.BySector.Entries() {
		if e.Percentage > overweightSectorPct {
			return true
		}
	}
	return false
}

func describePerformer(p *models.Performer) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s) at %.2f%%", p.Symbol, p.Name, p.GainPercent)
}

// FormatAmount rounds to whole currency units and renders with the
// currency symbol, e.g. ₹4,148,069.00.
func FormatAmount(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		currency = DefaultCurrency
		cur = money.GetCurrency(currency)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Round(0).Mul(factor).IntPart()
	return money.New(minor, currency).Display()
}
