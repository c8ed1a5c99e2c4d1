// Package sensitivity runs one-at-a-time parameter sweeps over the base
// configuration and solves for break-even parameter values. Every variant is
// produced through the model override helper so derived analyses stay
// comparable to the base case.
package sensitivity

import (
	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/model"
	"go.uber.org/zap"
)

// Metric keys reported for every sweep point.
const (
	MetricCashFlowPerOwner  = "cashFlowPerOwner"
	MetricCashOnCashPct     = "cashOnCashReturnPct"
	MetricEquityIRRPct      = "equityIrrWithSalePct"
	MetricNPV               = "npv"
	MetricNOI               = "netOperatingIncome"
	MetricDebtCoverageRatio = "debtCoverageRatio"
)

// Parameter describes one sweepable input: how to read its base value, the
// sweep range as factors of that base, optional clamps, and how to apply a
// candidate value to a configuration.
type Parameter struct {
	Key        string
	Name       string
	BaseValue  func(model.Config) float64
	LowFactor  float64
	HighFactor float64
	ClampMin   *float64
	ClampMax   *float64
	Modify     func(model.Config, float64) model.Config
}

// Parameters returns the sweep table. Ranges follow the calibrated
// per-parameter spreads of the underlying market model rather than one
// uniform percentage.
func Parameters() []Parameter {
	zero := 0.0
	one := 1.0
	return []Parameter{
		{
			Key:        "occupancy",
			Name:       "Occupancy Rate",
			BaseValue:  func(c model.Config) float64 { return c.Rental.EffectiveOccupancy() },
			LowFactor:  0.90,
			HighFactor: 1.10,
			ClampMin:   &zero,
			ClampMax:   &one,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{Occupancy: model.Float(v)})
			},
		},
		{
			Key:        "averageDailyRate",
			Name:       "Average Daily Rate",
			BaseValue:  func(c model.Config) float64 { return c.Rental.EffectiveDailyRate() },
			LowFactor:  0.80,
			HighFactor: 1.20,
			ClampMin:   &zero,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{DailyRate: model.Float(v)})
			},
		},
		{
			Key:        "managementFee",
			Name:       "Property Management Fee",
			BaseValue:  func(c model.Config) float64 { return c.Expenses.ManagementFeeRate },
			LowFactor:  0.75,
			HighFactor: 1.25,
			ClampMin:   &zero,
			ClampMax:   &one,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{ManagementFee: model.Float(v)})
			},
		},
		{
			Key:        "interestRate",
			Name:       "Interest Rate",
			BaseValue:  func(c model.Config) float64 { return c.Financing.InterestRate },
			LowFactor:  0.25,
			HighFactor: 1.75,
			ClampMin:   &zero,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{InterestRate: model.Float(v)})
			},
		},
		{
			Key:        "purchasePrice",
			Name:       "Purchase Price",
			BaseValue:  func(c model.Config) float64 { return c.Financing.PurchasePrice },
			LowFactor:  0.90,
			HighFactor: 1.10,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{PurchasePrice: model.Float(v)})
			},
		},
		{
			Key:        "maintenanceRate",
			Name:       "Maintenance Reserve Rate",
			BaseValue:  func(c model.Config) float64 { return c.Expenses.MaintenanceRate },
			LowFactor:  0.0,
			HighFactor: 2.0,
			ClampMin:   &zero,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{MaintenanceRate: model.Float(v)})
			},
		},
		{
			Key:        "amortizationRate",
			Name:       "Amortization Rate",
			BaseValue:  func(c model.Config) float64 { return c.Financing.AmortizationRate },
			LowFactor:  0.0,
			HighFactor: 2.0,
			ClampMin:   &zero,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{AmortizationRate: model.Float(v)})
			},
		},
		{
			Key:        "cleaningCostPerStay",
			Name:       "Cleaning Cost per Stay",
			BaseValue:  func(c model.Config) float64 { return c.Expenses.CleaningCostPerStay },
			LowFactor:  0.75,
			HighFactor: 1.65,
			ClampMin:   &zero,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{CleaningCostPerStay: model.Float(v)})
			},
		},
		{
			Key:        "ltv",
			Name:       "Loan-to-Value Ratio",
			BaseValue:  func(c model.Config) float64 { return c.Financing.LTV },
			LowFactor:  0.80,
			HighFactor: 1.10,
			ClampMin:   &zero,
			ClampMax:   &one,
			Modify: func(c model.Config, v float64) model.Config {
				return c.Apply(model.Override{LTV: model.Float(v)})
			},
		},
	}
}

// Point is one sweep evaluation: the parameter value and the metrics it yields.
type Point struct {
	Value   float64            `json:"value"`
	Metrics map[string]float64 `json:"metrics"`
}

// Curve is the full sweep for one parameter.
type Curve struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	BaseValue   float64            `json:"baseValue"`
	BaseMetrics map[string]float64 `json:"baseMetrics"`
	Points      []Point            `json:"points"`
}

// Runner evaluates sweeps against a fixed base configuration and projection
// assumptions.
type Runner struct {
	logger           *zap.Logger
	base             model.Config
	assumptions      engine.Assumptions
	discountRate     float64
	sellingCostsRate float64
}

// NewRunner constructs a Runner. A nil logger is replaced with a no-op one.
func NewRunner(logger *zap.Logger, base model.Config, assumptions engine.Assumptions, discountRate, sellingCostsRate float64) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:           logger,
		base:             base,
		assumptions:      assumptions,
		discountRate:     discountRate,
		sellingCostsRate: sellingCostsRate,
	}
}

// Sweep evaluates every parameter across steps evenly spaced values between
// its low and high factor. Steps below 2 are raised to 2 so each curve has
// at least its endpoints.
func (r *Runner) Sweep(steps int) []Curve {
	if steps < 2 {
		steps = 2
	}

	baseMetrics := r.Evaluate(r.base)
	curves := make([]Curve, 0, len(Parameters()))

	for _, param := range Parameters() {
		base := param.BaseValue(r.base)
		low := clampValue(base*param.LowFactor, param.ClampMin, param.ClampMax)
		high := clampValue(base*param.HighFactor, param.ClampMin, param.ClampMax)

		curve := Curve{
			Key:         param.Key,
			Name:        param.Name,
			BaseValue:   base,
			BaseMetrics: baseMetrics,
			Points:      make([]Point, 0, steps),
		}

		for i := 0; i < steps; i++ {
			value := low + (high-low)*float64(i)/float64(steps-1)
			variant := param.Modify(r.base, value)
			curve.Points = append(curve.Points, Point{
				Value:   value,
				Metrics: r.Evaluate(variant),
			})
		}

		r.logger.Debug("sensitivity sweep complete",
			zap.String("op", "sensitivity.Sweep"),
			zap.String("parameter", param.Key),
			zap.Int("points", len(curve.Points)),
		)
		curves = append(curves, curve)
	}

	return curves
}

// Evaluate runs the full calculator/projection/solver pipeline for one
// configuration and returns the tracked metrics.
func (r *Runner) Evaluate(cfg model.Config) map[string]float64 {
	annual := engine.Analyze(cfg)
	projection := engine.Project(cfg, r.assumptions)

	metrics := map[string]float64{
		MetricCashFlowPerOwner:  annual.CashFlowPerOwner,
		MetricCashOnCashPct:     annual.CashOnCashReturnPct,
		MetricNOI:               annual.NetOperatingIncome,
		MetricDebtCoverageRatio: annual.DebtCoverageRatio,
	}

	if len(projection) == 0 {
		return metrics
	}

	last := projection[len(projection)-1]
	returns := engine.Returns(projection, engine.ReturnInput{
		InitialEquityPerOwner: cfg.Financing.EquityPerOwner(),
		FinalPropertyValue:    last.PropertyValue,
		FinalLoanBalance:      last.RemainingLoanBalance,
		NumOwners:             cfg.Financing.NumOwners,
		PurchasePrice:         cfg.Financing.PurchasePrice,
		SellingCostsRate:      r.sellingCostsRate,
		DiscountRate:          r.discountRate,
	})
	metrics[MetricEquityIRRPct] = returns.EquityIRRWithSalePct
	metrics[MetricNPV] = returns.NPV

	return metrics
}

func clampValue(v float64, min, max *float64) float64 {
	if min != nil && v < *min {
		return *min
	}
	if max != nil && v > *max {
		return *max
	}
	return v
}
