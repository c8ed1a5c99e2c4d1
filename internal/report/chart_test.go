package report

import (
	"bytes"
	"testing"

	"github.com/alpvest/alpvest/internal/engine"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestRenderProjectionChartTooFewYears(t *testing.T) {
	tests := []struct {
		name       string
		projection []engine.YearSnapshot
	}{
		{name: "Empty projection", projection: nil},
		{name: "Single year", projection: []engine.YearSnapshot{{Year: 2026}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RenderProjectionChart(tt.projection); err == nil {
				t.Error("expected error for projection with fewer than 2 years")
			}
		})
	}
}

func TestRenderProjectionChartProducesPNG(t *testing.T) {
	projection := []engine.YearSnapshot{
		{Year: 2026, CashFlowPerOwner: -1200, AfterTaxCashFlowPerOwner: -1500},
		{Year: 2027, CashFlowPerOwner: -800, AfterTaxCashFlowPerOwner: -1100},
		{Year: 2028, CashFlowPerOwner: -300, AfterTaxCashFlowPerOwner: -650},
		{Year: 2029, CashFlowPerOwner: 250, AfterTaxCashFlowPerOwner: -100},
		{Year: 2030, CashFlowPerOwner: 900, AfterTaxCashFlowPerOwner: 400},
	}

	data, err := RenderProjectionChart(projection)
	if err != nil {
		t.Fatalf("RenderProjectionChart failed: %v", err)
	}
	if !bytes.HasPrefix(data, pngHeader) {
		t.Error("rendered chart is not a PNG")
	}
}

func TestRenderNPVHistogramEmpty(t *testing.T) {
	if _, err := RenderNPVHistogram(nil, 40); err == nil {
		t.Error("expected error for empty NPV slice")
	}
}

func TestRenderNPVHistogramProducesPNG(t *testing.T) {
	npvs := make([]float64, 0, 300)
	for i := 0; i < 300; i++ {
		npvs = append(npvs, float64(i%37)*1000-15000)
	}

	data, err := RenderNPVHistogram(npvs, 20)
	if err != nil {
		t.Fatalf("RenderNPVHistogram failed: %v", err)
	}
	if !bytes.HasPrefix(data, pngHeader) {
		t.Error("rendered histogram is not a PNG")
	}
}

func TestRenderNPVHistogramIdenticalValues(t *testing.T) {
	// A degenerate run where every simulation lands on the same NPV must
	// still render instead of dividing by a zero-width bucket.
	data, err := RenderNPVHistogram([]float64{5000, 5000, 5000}, 10)
	if err != nil {
		t.Fatalf("RenderNPVHistogram failed on identical values: %v", err)
	}
	if !bytes.HasPrefix(data, pngHeader) {
		t.Error("rendered histogram is not a PNG")
	}
}
