// Package storage provides the read-only holding store for folio
package storage

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

//go:embed data/portfolio.toml
var seedPortfolio []byte

type portfolioFile struct {
	Holdings    []map[string]interface{} `toml:"holdings"`
	Performance models.Performance       `toml:"performance"`
}

// HoldingStore is an immutable, validated collection of holdings plus the
// static performance comparison. It is safe for concurrent use.
type HoldingStore struct {
	source      string
	holdings    []models.Holding
	performance *models.Performance
}

// NewHoldingStore loads holdings from the TOML file at path, or from the
// embedded seed portfolio when path is empty. Malformed data returns a
// *models.ValidationError.
func NewHoldingStore(path string) (*HoldingStore, error) {
	data := seedPortfolio
	source := "embedded"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read holdings file %s: %w", path, err)
		}
		data = b
		source = path
	}

	store, err := parseHoldingStore(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings from %s: %w", source, err)
	}
	store.source = source
	return store, nil
}

func parseHoldingStore(data []byte) (*HoldingStore, error) {
	var file portfolioFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse holdings: %w", err)
	}

	holdings := make([]models.Holding, 0, len(file.Holdings))
	for i, table := range file.Holdings {
		h, err := holdingFromTable(i, table)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	if err := models.ValidateHoldings(holdings); err != nil {
		return nil, err
	}

	perf := file.Performance
	if perf.Returns == nil {
		perf.Returns = map[string]map[string]float64{}
	}

	return &HoldingStore{
		holdings:    holdings,
		performance: &perf,
	}, nil
}

// holdingFromTable converts one [[holdings]] table. Holdings are decoded
// loosely so a missing key and a value of the wrong TOML type both surface
// as a *models.ValidationError naming the field.
func holdingFromTable(index int, t map[string]interface{}) (models.Holding, error) {
	symbol, _ := t["symbol"].(string)
	invalid := func(field, reason string) error {
		if symbol == "" {
			return &models.ValidationError{Field: field, Reason: fmt.Sprintf("%s (holding #%d)", reason, index+1)}
		}
		return &models.ValidationError{Symbol: symbol, Field: field, Reason: reason}
	}

	str := func(key, field string) (string, error) {
		v, ok := t[key]
		if !ok {
			return "", invalid(field, "is missing")
		}
		s, ok := v.(string)
		if !ok {
			return "", invalid(field, fmt.Sprintf("must be a string, got %T", v))
		}
		if s == "" && key != "name" {
			return "", invalid(field, "is missing")
		}
		return s, nil
	}
	price := func(key, field string) (float64, error) {
		v, ok := t[key]
		if !ok {
			return 0, invalid(field, "is missing")
		}
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		}
		return 0, invalid(field, fmt.Sprintf("must be a number, got %T", v))
	}

	var h models.Holding
	var err error
	if h.Symbol, err = str("symbol", "symbol"); err != nil {
		return models.Holding{}, err
	}
	if h.Name, err = str("name", "name"); err != nil {
		return models.Holding{}, err
	}
	switch q := t["quantity"].(type) {
	case nil:
		return models.Holding{}, invalid("quantity", "is missing")
	case int64:
		h.Quantity = q
	default:
		return models.Holding{}, invalid("quantity", fmt.Sprintf("must be a whole number, got %v", q))
	}
	if h.AvgPrice, err = price("avg_price", "avgPrice"); err != nil {
		return models.Holding{}, err
	}
	if h.CurrentPrice, err = price("current_price", "currentPrice"); err != nil {
		return models.Holding{}, err
	}
	if h.Sector, err = str("sector", "sector"); err != nil {
		return models.Holding{}, err
	}
	marketCap, err := str("market_cap", "marketCap")
	if err != nil {
		return models.Holding{}, err
	}
	h.MarketCap = models.MarketCapTier(marketCap)
	return h, nil
}

// Source describes where the holdings were loaded from.
func (s *HoldingStore) Source() string {
	return s.source
}

// Len returns the number of holdings.
func (s *HoldingStore) Len() int {
	return len(s.holdings)
}

// Holdings returns a copy of the holdings in load order.
func (s *HoldingStore) Holdings(ctx context.Context) ([]models.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Holding, len(s.holdings))
	copy(out, s.holdings)
	return out, nil
}

// Performance returns a copy of the static performance comparison.
func (s *HoldingStore) Performance(ctx context.Context) (*models.Performance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.performance.Clone(), nil
}

var _ interfaces.HoldingStore = (*HoldingStore)(nil)
