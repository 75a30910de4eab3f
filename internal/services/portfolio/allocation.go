package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/folio/internal/models"
)

// ComputeAllocation groups portfolio value by sector and by market-cap tier.
// Categories come from the data in first-seen order. Percentages are taken
// against the grand total in a second pass; a zero total gives 0% for every
// category.
func ComputeAllocation(holdings []models.Holding) (*models.AllocationBreakdown, error) {
	if err := models.ValidateHoldings(holdings); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.ValueDecimal())
	}

	return &models.AllocationBreakdown{
		BySector: groupBy(holdings, total, func(h models.Holding) string {
			return h.Sector
		}),
		ByMarketCap: groupBy(holdings, total, func(h models.Holding) string {
			return string(h.MarketCap)
		}),
	}, nil
}

func groupBy(holdings []models.Holding, total decimal.Decimal, key func(models.Holding) string) models.AllocationGroup {
	var labels []string
	values := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		k := key(h)
		v, ok := values[k]
		if !ok {
			labels = append(labels, k)
			v = decimal.Zero
		}
		values[k] = v.Add(h.ValueDecimal())
	}

	var group models.AllocationGroup
	for _, label := range labels {
		v := values[label]
		group.Set(label, models.AllocationSlice{
			Value:      v.InexactFloat64(),
			Percentage: models.PercentOf(v, total),
		})
	}
	return group
}
