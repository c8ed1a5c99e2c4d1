package engine

import (
	"math"
)

// IRR solver bounds and tolerances.
const (
	irrBracketLow    = -0.99
	irrBracketHigh   = 9.99
	irrTolerance     = 1e-8
	irrMaxIterations = 200

	// scanAcceptTolerance accepts a scanned candidate rate whose NPV
	// magnitude is within this share of the initial investment.
	scanAcceptTolerance = 0.01

	// sanityGateTolerance rejects a bisection result whose NPV magnitude
	// still exceeds this share of the initial investment.
	sanityGateTolerance = 0.1
)

// scanRates is the coarse candidate list used when the bracket holds no root.
var scanRates = []float64{-0.5, -0.2, -0.1, 0.0, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0}

// ReturnInput carries the terminal values and per-owner equity needed to
// derive return metrics from a projection.
type ReturnInput struct {
	InitialEquityPerOwner float64
	FinalPropertyValue    float64
	FinalLoanBalance      float64
	NumOwners             int
	PurchasePrice         float64
	SellingCostsRate      float64
	DiscountRate          float64
}

// ReturnMetrics holds all investor-return figures for one projection.
// IRR fields are percentages; NPV and sale figures are CHF per owner unless
// named otherwise. PaybackPeriodYears is nil when the investment never pays
// back, even with the terminal sale.
type ReturnMetrics struct {
	EquityIRRWithSalePct            float64 `json:"equityIrrWithSalePct"`
	EquityIRRWithoutSalePct         float64 `json:"equityIrrWithoutSalePct"`
	ProjectIRRWithSalePct           float64 `json:"projectIrrWithSalePct"`
	ProjectIRRWithoutSalePct        float64 `json:"projectIrrWithoutSalePct"`
	AfterTaxEquityIRRWithSalePct    float64 `json:"afterTaxEquityIrrWithSalePct"`
	AfterTaxEquityIRRWithoutSalePct float64 `json:"afterTaxEquityIrrWithoutSalePct"`

	NPV                float64 `json:"npv"`
	MOIC               float64 `json:"moic"`
	PaybackPeriodYears *int    `json:"paybackPeriodYears"`

	GrossSalePrice       float64 `json:"grossSalePrice"`
	SellingCosts         float64 `json:"sellingCosts"`
	NetSalePrice         float64 `json:"netSalePrice"`
	SellingCostsRatePct  float64 `json:"sellingCostsRatePct"`
	SaleProceedsPerOwner float64 `json:"saleProceedsPerOwner"`
	FinalPropertyValue   float64 `json:"finalPropertyValue"`
	FinalLoanBalance     float64 `json:"finalLoanBalance"`
}

// Returns derives equity and project IRRs (with and without a terminal
// sale), NPV at the supplied discount rate, MOIC, payback period, and the
// sale-cost breakdown from a projection.
func Returns(projection []YearSnapshot, in ReturnInput) ReturnMetrics {
	owners := float64(in.NumOwners)

	equityFlows := make([]float64, len(projection))
	afterTaxFlows := make([]float64, len(projection))
	unleveredFlows := make([]float64, len(projection))
	for i, year := range projection {
		equityFlows[i] = year.CashFlowPerOwner
		afterTaxFlows[i] = year.AfterTaxCashFlowPerOwner
		unleveredFlows[i] = year.NetOperatingIncome / owners
	}

	sellingCosts := in.FinalPropertyValue * in.SellingCostsRate
	netSalePrice := in.FinalPropertyValue - sellingCosts
	saleProceedsPerOwner := (netSalePrice - in.FinalLoanBalance) / owners
	unleveredSalePerOwner := netSalePrice / owners

	metrics := ReturnMetrics{
		EquityIRRWithSalePct:            InternalRateOfReturn(equityFlows, in.InitialEquityPerOwner, saleProceedsPerOwner) * 100,
		EquityIRRWithoutSalePct:         InternalRateOfReturn(equityFlows, in.InitialEquityPerOwner, 0) * 100,
		AfterTaxEquityIRRWithSalePct:    InternalRateOfReturn(afterTaxFlows, in.InitialEquityPerOwner, saleProceedsPerOwner) * 100,
		AfterTaxEquityIRRWithoutSalePct: InternalRateOfReturn(afterTaxFlows, in.InitialEquityPerOwner, 0) * 100,

		GrossSalePrice:       in.FinalPropertyValue,
		SellingCosts:         sellingCosts,
		NetSalePrice:         netSalePrice,
		SellingCostsRatePct:  in.SellingCostsRate * 100,
		SaleProceedsPerOwner: saleProceedsPerOwner,
		FinalPropertyValue:   in.FinalPropertyValue,
		FinalLoanBalance:     in.FinalLoanBalance,
	}

	// Unlevered ("project") IRR: NOI flows against a purchase-price-per-owner
	// outlay, with no loan payoff subtracted at exit.
	if in.PurchasePrice > 0 {
		outlayPerOwner := in.PurchasePrice / owners
		metrics.ProjectIRRWithSalePct = InternalRateOfReturn(unleveredFlows, outlayPerOwner, unleveredSalePerOwner) * 100
		metrics.ProjectIRRWithoutSalePct = InternalRateOfReturn(unleveredFlows, outlayPerOwner, 0) * 100
	}

	metrics.NPV = NetPresentValue(equityFlows, in.InitialEquityPerOwner, saleProceedsPerOwner, in.DiscountRate)

	totalReturned := saleProceedsPerOwner
	for _, cf := range equityFlows {
		totalReturned += cf
	}
	if in.InitialEquityPerOwner > 0 {
		metrics.MOIC = totalReturned / in.InitialEquityPerOwner
	}

	metrics.PaybackPeriodYears = paybackPeriod(equityFlows, in.InitialEquityPerOwner, saleProceedsPerOwner)

	return metrics
}

// NetPresentValue discounts the periodic flows and the terminal sale
// proceeds at the given rate against the initial investment.
func NetPresentValue(cashFlows []float64, initialInvestment, saleProceeds, discountRate float64) float64 {
	npv := -initialInvestment
	for i, cf := range cashFlows {
		npv += cf / math.Pow(1+discountRate, float64(i+1))
	}
	npv += saleProceeds / math.Pow(1+discountRate, float64(len(cashFlows)))
	return npv
}

// InternalRateOfReturn solves NPV(r) = 0 for the cash-flow vector
// [-initialInvestment, cf_1, ..., cf_n + saleProceeds] by bracketed
// bisection. When the bracket holds no sign change it falls back to a
// coarse scan, and when neither yields a numerically sound rate it returns
// 0.0 rather than an unstable result.
func InternalRateOfReturn(cashFlows []float64, initialInvestment, saleProceeds float64) float64 {
	flows := make([]float64, 0, len(cashFlows)+1)
	flows = append(flows, -initialInvestment)
	flows = append(flows, cashFlows...)
	if saleProceeds > 0 && len(flows) > 1 {
		flows[len(flows)-1] += saleProceeds
	}

	npv := func(rate float64) float64 {
		var total float64
		for i, cf := range flows {
			total += cf / math.Pow(1+rate, float64(i))
		}
		return total
	}

	npvLow := npv(irrBracketLow)
	npvHigh := npv(irrBracketHigh)

	// No sign change means no root in the bracket: scan for a rate whose
	// NPV is close enough to zero, else settle for 0.0.
	if (npvLow > 0) == (npvHigh > 0) {
		for _, rate := range scanRates {
			if math.Abs(npv(rate)) < math.Abs(initialInvestment)*scanAcceptTolerance {
				return rate
			}
		}
		return 0.0
	}

	low, high := irrBracketLow, irrBracketHigh
	for i := 0; i < irrMaxIterations; i++ {
		mid := (low + high) / 2
		npvMid := npv(mid)

		if math.Abs(npvMid) < irrTolerance {
			return mid
		}
		if npvMid > 0 {
			low = mid
		} else {
			high = mid
		}
		if high-low < irrTolerance {
			break
		}
	}

	rate := (low + high) / 2
	if math.Abs(npv(rate)) > math.Abs(initialInvestment)*sanityGateTolerance {
		return 0.0
	}
	return rate
}

// paybackPeriod returns the first period at which cumulative cash flow
// (starting at -initialEquity) turns non-negative. If the periodic flows
// alone never close the gap, payback is attributed to the sale period when
// the sale proceeds do; otherwise nil.
func paybackPeriod(cashFlows []float64, initialEquity, saleProceeds float64) *int {
	cumulative := -initialEquity
	for i, cf := range cashFlows {
		cumulative += cf
		if cumulative >= 0 {
			period := i + 1
			return &period
		}
	}
	cumulative += saleProceeds
	if cumulative >= 0 && len(cashFlows) > 0 {
		period := len(cashFlows)
		return &period
	}
	return nil
}
