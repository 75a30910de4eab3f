package portfolio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/folio/internal/models"
)

const timelineDateLayout = "2006-01-02"

// rebase scales a series so its first value is 100.
func rebase(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || values[0] == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / values[0] * 100
	}
	return out
}

// RenderPerformanceChart renders the benchmark timeline as a PNG line chart.
// Each series is rebased to 100 at the first month so the portfolio, Nifty 50
// and gold lines share one axis. Returns raw PNG bytes.
func RenderPerformanceChart(perf *models.Performance) ([]byte, error) {
	if perf == nil || len(perf.Timeline) < 2 {
		n := 0
		if perf != nil {
			n = len(perf.Timeline)
		}
		return nil, fmt.Errorf("need at least 2 timeline points, got %d", n)
	}

	xValues := make([]time.Time, len(perf.Timeline))
	portfolioY := make([]float64, len(perf.Timeline))
	niftyY := make([]float64, len(perf.Timeline))
	goldY := make([]float64, len(perf.Timeline))

	for i, p := range perf.Timeline {
		d, err := time.Parse(timelineDateLayout, p.Date)
		if err != nil {
			return nil, fmt.Errorf("timeline point %d: invalid date %q", i, p.Date)
		}
		xValues[i] = d
		portfolioY[i] = p.Portfolio
		niftyY[i] = p.Nifty50
		goldY[i] = p.Gold
	}

	graph := chart.Chart{
		Title:  "Portfolio vs Benchmarks",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Portfolio",
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("2563eb"), StrokeWidth: 2.5},
				XValues: xValues,
				YValues: rebase(portfolioY),
			},
			chart.TimeSeries{
				Name:    "Nifty 50",
				Style:   chart.Style{StrokeColor: drawing.ColorFromHex("16a34a"), StrokeWidth: 1.5},
				XValues: xValues,
				YValues: rebase(niftyY),
			},
			chart.TimeSeries{
				Name: "Gold",
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("ca8a04"),
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				},
				XValues: xValues,
				YValues: rebase(goldY),
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
