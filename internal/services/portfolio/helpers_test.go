package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/storage"
)

func seedHoldings(t *testing.T) []models.Holding {
	t.Helper()
	store, err := storage.NewHoldingStore("")
	require.NoError(t, err)
	holdings, err := store.Holdings(context.Background())
	require.NoError(t, err)
	return holdings
}

func holding(symbol, sector string, qty int64, avg, current float64) models.Holding {
	return models.Holding{
		Symbol:       symbol,
		Name:         symbol + " Ltd",
		Quantity:     qty,
		AvgPrice:     avg,
		CurrentPrice: current,
		Sector:       sector,
		MarketCap:    models.MarketCapLarge,
	}
}

// fakeGenerator is a scripted interfaces.TextGenerator.
type fakeGenerator struct {
	text    string
	err     error
	block   bool
	prompts []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

// fakeStore is an interfaces.HoldingStore over fixed data.
type fakeStore struct {
	holdings []models.Holding
	perf     *models.Performance
	err      error
}

var errStoreDown = errors.New("store unavailable")

func (f *fakeStore) Holdings(ctx context.Context) ([]models.Holding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Holding(nil), f.holdings...), nil
}

func (f *fakeStore) Performance(ctx context.Context) (*models.Performance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.perf.Clone(), nil
}
