package report

import (
	"bytes"
	"fmt"

	"github.com/alpvest/alpvest/internal/engine"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderProjectionChart renders a PNG line chart of per-owner cash flow over
// the projection horizon. Two series: pre-tax (blue solid) and after-tax
// (gray dashed). Returns raw PNG bytes.
func RenderProjectionChart(projection []engine.YearSnapshot) ([]byte, error) {
	if len(projection) < 2 {
		return nil, fmt.Errorf("need at least 2 projection years, got %d", len(projection))
	}

	xValues := make([]float64, len(projection))
	preTaxY := make([]float64, len(projection))
	afterTaxY := make([]float64, len(projection))
	for i, year := range projection {
		xValues[i] = float64(year.Year)
		preTaxY[i] = year.CashFlowPerOwner
		afterTaxY[i] = year.AfterTaxCashFlowPerOwner
	}

	preTaxSeries := chart.ContinuousSeries{
		Name: "Cash Flow per Owner",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: preTaxY,
	}

	afterTaxSeries := chart.ContinuousSeries{
		Name: "After-Tax Cash Flow per Owner",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: afterTaxY,
	}

	graph := chart.Chart{
		Title:  "Projected Cash Flow",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("CHF %.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			preTaxSeries,
			afterTaxSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderNPVHistogram renders a PNG bar chart of the NPV distribution from a
// Monte Carlo run, bucketed into bins equal-width buckets.
func RenderNPVHistogram(npvs []float64, bins int) ([]byte, error) {
	if len(npvs) == 0 {
		return nil, fmt.Errorf("no NPV values to chart")
	}
	if bins <= 0 {
		bins = 40
	}

	min, max := npvs[0], npvs[0]
	for _, v := range npvs[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		max = min + 1
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range npvs {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	values := make([]chart.Value, bins)
	for i, count := range counts {
		center := min + (float64(i)+0.5)*width
		label := ""
		// Label every fifth bucket to keep the axis readable.
		if i%5 == 0 {
			label = fmt.Sprintf("%.0fk", center/1000)
		}
		values[i] = chart.Value{
			Value: float64(count),
			Label: label,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("667eea"),
				StrokeColor: drawing.ColorFromHex("667eea"),
			},
		}
	}

	graph := chart.BarChart{
		Title:    "NPV Distribution",
		Width:    900,
		Height:   400,
		BarWidth: maxInt(900/(bins+4), 2),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("histogram render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
