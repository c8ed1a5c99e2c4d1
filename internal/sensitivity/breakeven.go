package sensitivity

import (
	"math"

	"github.com/alpvest/alpvest/internal/engine"
	"go.uber.org/zap"
)

const (
	breakEvenMaxIterations = 100
	breakEvenTolerance     = 0.01 // CHF on annual cash flow
)

// BreakEvenResult reports where a single parameter drives the Year-1 cash
// flow after debt service to zero, holding everything else at the base case.
type BreakEvenResult struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	BaseValue      float64 `json:"baseValue"`
	BreakEvenValue float64 `json:"breakEvenValue"`
	Margin         float64 `json:"margin"`
	Found          bool    `json:"found"`
	AboveBreakEven bool    `json:"aboveBreakEven"`
}

// breakEvenKeys names the parameters worth a break-even solve: the ones an
// owner can realistically negotiate or that the market sets.
var breakEvenKeys = map[string]bool{
	"occupancy":        true,
	"averageDailyRate": true,
	"managementFee":    true,
	"interestRate":     true,
	"purchasePrice":    true,
}

// BreakEven solves, for each selected parameter, the value at which Year-1
// cash flow after debt service crosses zero. Parameters whose sweep range
// never produces a sign change are reported with Found set to false.
func (r *Runner) BreakEven() []BreakEvenResult {
	results := make([]BreakEvenResult, 0, len(breakEvenKeys))

	for _, param := range Parameters() {
		if !breakEvenKeys[param.Key] {
			continue
		}

		base := param.BaseValue(r.base)
		low := clampValue(base*param.LowFactor, param.ClampMin, param.ClampMax)
		high := clampValue(base*param.HighFactor, param.ClampMin, param.ClampMax)

		baseCashFlow := r.cashFlow(param, base)

		result := BreakEvenResult{
			Key:            param.Key,
			Name:           param.Name,
			BaseValue:      base,
			AboveBreakEven: baseCashFlow >= 0,
		}

		cfLow := r.cashFlow(param, low)
		cfHigh := r.cashFlow(param, high)
		if (cfLow >= 0) == (cfHigh >= 0) {
			r.logger.Debug("no break-even crossing in range",
				zap.String("op", "sensitivity.BreakEven"),
				zap.String("parameter", param.Key),
			)
			results = append(results, result)
			continue
		}

		value := r.bisectCashFlowZero(param, low, high, cfLow)
		result.BreakEvenValue = value
		result.Margin = base - value
		result.Found = true
		results = append(results, result)
	}

	return results
}

// bisectCashFlowZero finds the zero crossing of Year-1 cash flow between low
// and high. cfLow is the cash flow at the low end, used for orientation.
func (r *Runner) bisectCashFlowZero(param Parameter, low, high, cfLow float64) float64 {
	lowNegative := cfLow < 0

	for i := 0; i < breakEvenMaxIterations; i++ {
		mid := (low + high) / 2
		cf := r.cashFlow(param, mid)

		if math.Abs(cf) < breakEvenTolerance {
			return mid
		}
		if (cf < 0) == lowNegative {
			low = mid
		} else {
			high = mid
		}
	}
	return (low + high) / 2
}

func (r *Runner) cashFlow(param Parameter, value float64) float64 {
	variant := param.Modify(r.base, value)
	return engine.Analyze(variant).CashFlowAfterDebtService
}
