package portfolio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/folio/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderPerformanceChart_Seed(t *testing.T) {
	perf := &models.Performance{Timeline: []models.TimelinePoint{
		{Date: "2024-01-01", Portfolio: 650000, Nifty50: 21000, Gold: 62000},
		{Date: "2024-02-01", Portfolio: 665000, Nifty50: 21500, Gold: 62500},
		{Date: "2024-03-01", Portfolio: 680000, Nifty50: 22100, Gold: 64500},
	}}

	png, err := RenderPerformanceChart(perf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderPerformanceChart_TooFewPoints(t *testing.T) {
	_, err := RenderPerformanceChart(&models.Performance{Timeline: []models.TimelinePoint{
		{Date: "2024-01-01", Portfolio: 1, Nifty50: 1, Gold: 1},
	}})
	assert.ErrorContains(t, err, "got 1")

	_, err = RenderPerformanceChart(nil)
	assert.ErrorContains(t, err, "got 0")
}

func TestRenderPerformanceChart_BadDate(t *testing.T) {
	_, err := RenderPerformanceChart(&models.Performance{Timeline: []models.TimelinePoint{
		{Date: "2024-01-01", Portfolio: 1, Nifty50: 1, Gold: 1},
		{Date: "Feb 2024", Portfolio: 2, Nifty50: 2, Gold: 2},
	}})
	assert.ErrorContains(t, err, `invalid date "Feb 2024"`)
}

func TestRebase(t *testing.T) {
	assert.Equal(t, []float64{100, 110, 95}, rebase([]float64{200, 220, 190}))
	assert.Equal(t, []float64{0, 0}, rebase([]float64{0, 5}))
	assert.Empty(t, rebase(nil))
}
