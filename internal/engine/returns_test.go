package engine

import (
	"math"
	"testing"
)

// A single cash flow of 110 against an outlay of 100 is the textbook 10%
// case; the solver must land within 1e-6.
func TestInternalRateOfReturnRoundTrip(t *testing.T) {
	got := InternalRateOfReturn([]float64{110}, 100, 0)
	if math.Abs(got-0.10) > 1e-6 {
		t.Errorf("IRR = %v, want 0.10 within 1e-6", got)
	}
}

func TestInternalRateOfReturnMultiYear(t *testing.T) {
	// Five equal flows of 25 on an outlay of 100: IRR must satisfy
	// NPV(r) = 0 when recomputed independently.
	flows := []float64{25, 25, 25, 25, 25}
	rate := InternalRateOfReturn(flows, 100, 0)

	npv := -100.0
	for i, cf := range flows {
		npv += cf / math.Pow(1+rate, float64(i+1))
	}
	if math.Abs(npv) > 1e-6 {
		t.Errorf("NPV at solved rate %v = %v, want ~0", rate, npv)
	}
}

// Sale proceeds are added to the final flow only; the solved rate must
// exceed the no-sale rate.
func TestInternalRateOfReturnSaleProceeds(t *testing.T) {
	flows := []float64{5, 5, 5}
	withSale := InternalRateOfReturn(flows, 100, 120)
	withoutSale := InternalRateOfReturn(flows, 100, 0)

	if withSale <= withoutSale {
		t.Errorf("IRR with sale %v not above IRR without sale %v", withSale, withoutSale)
	}
}

// All-negative flows admit no root anywhere: the solver must fall back to
// 0.0 instead of returning a bracket endpoint.
func TestInternalRateOfReturnNoRoot(t *testing.T) {
	got := InternalRateOfReturn([]float64{-10, -10, -10}, 100, 0)
	if got != 0.0 {
		t.Errorf("IRR with no root = %v, want 0.0", got)
	}
}

func TestInternalRateOfReturnNegativeRate(t *testing.T) {
	// Recovering only 90 of 100 is a -10% return.
	got := InternalRateOfReturn([]float64{90}, 100, 0)
	if math.Abs(got-(-0.10)) > 1e-6 {
		t.Errorf("IRR = %v, want -0.10 within 1e-6", got)
	}
}

func TestNetPresentValueClosedForm(t *testing.T) {
	tests := []struct {
		name              string
		cashFlows         []float64
		initialInvestment float64
		saleProceeds      float64
		discountRate      float64
		want              float64
	}{
		{
			name:              "Single year with terminal sale",
			cashFlows:         []float64{50},
			initialInvestment: 100,
			saleProceeds:      200,
			discountRate:      0.05,
			want:              -100 + 50/1.05 + 200/1.05,
		},
		{
			name:              "Two years no sale",
			cashFlows:         []float64{30, 40},
			initialInvestment: 50,
			discountRate:      0.10,
			want:              -50 + 30/1.1 + 40/1.21,
		},
		{
			name:              "Zero discount rate sums the flows",
			cashFlows:         []float64{10, 10, 10},
			initialInvestment: 25,
			saleProceeds:      5,
			want:              10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetPresentValue(tt.cashFlows, tt.initialInvestment, tt.saleProceeds, tt.discountRate)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NPV = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaybackPeriod(t *testing.T) {
	tests := []struct {
		name         string
		cashFlows    []float64
		equity       float64
		saleProceeds float64
		want         *int
	}{
		{
			name:      "Pays back in year 3",
			cashFlows: []float64{40, 40, 40},
			equity:    100,
			want:      intPtr(3),
		},
		{
			name:         "Pays back only through the sale",
			cashFlows:    []float64{1, 1, 1},
			equity:       100,
			saleProceeds: 150,
			want:         intPtr(3),
		},
		{
			name:      "Never pays back",
			cashFlows: []float64{-5, -5},
			equity:    100,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paybackPeriod(tt.cashFlows, tt.equity, tt.saleProceeds)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("payback = %d, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("payback = nil, want %d", *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("payback = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}

func TestReturnsFromProjection(t *testing.T) {
	cfg := chaletConfig()
	projection := Project(cfg, Assumptions{
		StartYear:        2026,
		Years:            15,
		InflationRate:    0.01,
		AppreciationRate: 0.025,
	})

	last := projection[len(projection)-1]
	metrics := Returns(projection, ReturnInput{
		InitialEquityPerOwner: cfg.Financing.EquityPerOwner(),
		FinalPropertyValue:    last.PropertyValue,
		FinalLoanBalance:      last.RemainingLoanBalance,
		NumOwners:             4,
		PurchasePrice:         cfg.Financing.PurchasePrice,
		SellingCostsRate:      0.078,
		DiscountRate:          0.05,
	})

	// Sale breakdown arithmetic.
	wantSellingCosts := last.PropertyValue * 0.078
	if !almostEqual(metrics.SellingCosts, wantSellingCosts) {
		t.Errorf("selling costs = %v, want %v", metrics.SellingCosts, wantSellingCosts)
	}
	wantProceeds := (last.PropertyValue - wantSellingCosts - last.RemainingLoanBalance) / 4
	if !almostEqual(metrics.SaleProceedsPerOwner, wantProceeds) {
		t.Errorf("sale proceeds per owner = %v, want %v", metrics.SaleProceedsPerOwner, wantProceeds)
	}

	// A sale-inclusive IRR always dominates its no-sale counterpart when the
	// sale nets positive proceeds.
	if wantProceeds > 0 && metrics.EquityIRRWithSalePct <= metrics.EquityIRRWithoutSalePct {
		t.Errorf("IRR with sale %v not above IRR without sale %v",
			metrics.EquityIRRWithSalePct, metrics.EquityIRRWithoutSalePct)
	}

	// NPV must agree with an independent recomputation.
	flows := make([]float64, len(projection))
	for i, year := range projection {
		flows[i] = year.CashFlowPerOwner
	}
	wantNPV := NetPresentValue(flows, cfg.Financing.EquityPerOwner(), wantProceeds, 0.05)
	if !almostEqual(metrics.NPV, wantNPV) {
		t.Errorf("NPV = %v, want %v", metrics.NPV, wantNPV)
	}

	// MOIC = (sum of flows + sale) / equity.
	total := wantProceeds
	for _, cf := range flows {
		total += cf
	}
	wantMOIC := total / cfg.Financing.EquityPerOwner()
	if math.Abs(metrics.MOIC-wantMOIC) > 1e-9 {
		t.Errorf("MOIC = %v, want %v", metrics.MOIC, wantMOIC)
	}
}
