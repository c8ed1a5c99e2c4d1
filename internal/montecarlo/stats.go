package montecarlo

import (
	"github.com/alpvest/alpvest/pkg/mathutil"
)

// Metric keys reported in Result.Stats.
const (
	StatNPV                = "npv"
	StatEquityIRRWithSale  = "equityIrrWithSalePct"
	StatAnnualCashFlow     = "annualCashFlow"
	StatCashFlowPerOwner   = "cashFlowPerOwner"
	StatGrossRentalIncome  = "grossRentalIncome"
	StatNetOperatingIncome = "netOperatingIncome"
	StatAfterTaxCashFlow   = "afterTaxCashFlow"
)

// aggregate computes descriptive statistics for every tracked metric.
func aggregate(outcomes []Outcome) map[string]Stats {
	series := map[string][]float64{
		StatNPV:                make([]float64, len(outcomes)),
		StatEquityIRRWithSale:  make([]float64, len(outcomes)),
		StatAnnualCashFlow:     make([]float64, len(outcomes)),
		StatCashFlowPerOwner:   make([]float64, len(outcomes)),
		StatGrossRentalIncome:  make([]float64, len(outcomes)),
		StatNetOperatingIncome: make([]float64, len(outcomes)),
		StatAfterTaxCashFlow:   make([]float64, len(outcomes)),
	}

	for i, o := range outcomes {
		series[StatNPV][i] = o.NPV
		series[StatEquityIRRWithSale][i] = o.EquityIRRWithSale
		series[StatAnnualCashFlow][i] = o.AnnualCashFlow
		series[StatCashFlowPerOwner][i] = o.CashFlowPerOwner
		series[StatGrossRentalIncome][i] = o.GrossRentalIncome
		series[StatNetOperatingIncome][i] = o.NetOperatingIncome
		series[StatAfterTaxCashFlow][i] = o.AfterTaxCashFlow
	}

	stats := make(map[string]Stats, len(series))
	for key, values := range series {
		stats[key] = describe(values)
	}
	return stats
}

func describe(values []float64) Stats {
	min, max := mathutil.MinMax(values)
	return Stats{
		Mean:         mathutil.Mean(values),
		Median:       mathutil.Median(values),
		Std:          mathutil.StdDev(values),
		Min:          min,
		Max:          max,
		P5:           mathutil.Quantile(values, 0.05),
		P10:          mathutil.Quantile(values, 0.10),
		P25:          mathutil.Quantile(values, 0.25),
		P75:          mathutil.Quantile(values, 0.75),
		P90:          mathutil.Quantile(values, 0.90),
		P95:          mathutil.Quantile(values, 0.95),
		PositiveProb: mathutil.PositiveShare(values),
	}
}
