package montecarlo

import (
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/model"
	"github.com/alpvest/alpvest/pkg/constants"
	"go.uber.org/zap"
)

// Sampled-parameter keys.
const (
	ParamOccupancy        = "occupancy"
	ParamDailyRate        = "dailyRate"
	ParamOTABookingShare  = "otaBookingShare"
	ParamOTAFeeRate       = "otaFeeRate"
	ParamLengthOfStay     = "averageLengthOfStay"
	ParamGuestsPerNight   = "avgGuestsPerNight"
	ParamCleaningCost     = "cleaningCostPerStay"
	ParamMarginalTaxRate  = "marginalTaxRate"
	ParamDiscountRate     = "discountRate"
	ParamInflationRate    = "inflationRate"
	ParamAppreciationRate = "appreciationRate"
)

// Options controls a Monte Carlo run.
type Options struct {
	Simulations      int
	Seed             int64
	Workers          int
	Assumptions      engine.Assumptions
	SellingCostsRate float64
}

// Outcome records one simulation: sampled inputs plus the resulting metrics.
type Outcome struct {
	Index   int                `json:"index"`
	Samples map[string]float64 `json:"samples"`

	NPV                float64 `json:"npv"`
	EquityIRRWithSale  float64 `json:"equityIrrWithSalePct"`
	AnnualCashFlow     float64 `json:"annualCashFlow"`
	CashFlowPerOwner   float64 `json:"cashFlowPerOwner"`
	GrossRentalIncome  float64 `json:"grossRentalIncome"`
	NetOperatingIncome float64 `json:"netOperatingIncome"`
	AfterTaxCashFlow   float64 `json:"afterTaxCashFlow"`
}

// Stats summarizes one metric across all simulations.
type Stats struct {
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Std          float64 `json:"std"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	P5           float64 `json:"p5"`
	P10          float64 `json:"p10"`
	P25          float64 `json:"p25"`
	P75          float64 `json:"p75"`
	P90          float64 `json:"p90"`
	P95          float64 `json:"p95"`
	PositiveProb float64 `json:"positiveProb"`
}

// Result is the full Monte Carlo output.
type Result struct {
	Simulations int              `json:"simulations"`
	Seed        int64            `json:"seed"`
	Outcomes    []Outcome        `json:"outcomes"`
	Stats       map[string]Stats `json:"stats"`
}

// DefaultDistributions builds the standard input distributions, calibrated
// as spreads around the base configuration's values.
func DefaultDistributions(base model.Config) map[string]Distribution {
	occupancy := base.Rental.EffectiveOccupancy()
	dailyRate := base.Rental.EffectiveDailyRate()
	e := base.Expenses

	return map[string]Distribution{
		ParamOccupancy: {
			Type: Triangular, Min: occupancy * 0.75, Mode: occupancy, Max: occupancy * 1.15,
			BoundMin: bound(0), BoundMax: bound(1),
		},
		ParamDailyRate: {
			Type: Triangular, Min: dailyRate * 0.80, Mode: dailyRate, Max: dailyRate * 1.20,
			BoundMin: bound(0),
		},
		ParamOTABookingShare: {
			Type: Triangular, Min: e.OTABookingShare * 0.6, Mode: e.OTABookingShare, Max: minFloat(e.OTABookingShare*1.4, 1),
			BoundMin: bound(0), BoundMax: bound(1),
		},
		ParamOTAFeeRate: {
			Type: Triangular, Min: e.OTAFeeRate * 0.8, Mode: e.OTAFeeRate, Max: minFloat(e.OTAFeeRate*1.2, 1),
			BoundMin: bound(0), BoundMax: bound(1),
		},
		ParamLengthOfStay: {
			Type: Triangular, Min: e.AverageLengthOfStay * 0.8, Mode: e.AverageLengthOfStay, Max: e.AverageLengthOfStay * 1.5,
			BoundMin: bound(1),
		},
		ParamGuestsPerNight: {
			Type: Triangular, Min: e.AvgGuestsPerNight * 0.75, Mode: e.AvgGuestsPerNight, Max: e.AvgGuestsPerNight * 1.5,
			BoundMin: bound(1),
		},
		ParamCleaningCost: {
			Type: Triangular, Min: e.CleaningCostPerStay * 0.75, Mode: e.CleaningCostPerStay, Max: e.CleaningCostPerStay * 1.65,
			BoundMin: bound(0),
		},
		ParamMarginalTaxRate: {
			Type: Normal, Mean: base.Tax.MarginalRate, Std: 0.02,
			BoundMin: bound(0.10), BoundMax: bound(0.40),
		},
		ParamDiscountRate: {
			Type: Uniform, Min: 0.03, Max: 0.07,
		},
		ParamInflationRate: {
			Type: Triangular, Min: 0.0, Mode: constants.DefaultInflationRate, Max: 0.03,
			BoundMin: bound(0), BoundMax: bound(0.03),
		},
		ParamAppreciationRate: {
			Type: Triangular, Min: -0.02, Mode: constants.DefaultAppreciationRate, Max: 0.09,
			BoundMin: bound(-0.02), BoundMax: bound(0.09),
		},
	}
}

// Run draws one sample set per simulation from the distributions, evaluates
// each perturbed configuration through the full engine pipeline on a worker
// pool, and aggregates statistics. Sampling happens up front on a single
// seeded source so a fixed seed reproduces the run exactly regardless of
// worker count.
func Run(logger *zap.Logger, base model.Config, dists map[string]Distribution, opts Options) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Simulations <= 0 {
		opts.Simulations = constants.DefaultSimulations
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Assumptions.Years == 0 {
		opts.Assumptions = engine.DefaultAssumptions()
	}
	if opts.SellingCostsRate == 0 {
		opts.SellingCostsRate = constants.DefaultSellingCostsRate
	}

	for key, d := range dists {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("distribution %q: %w", key, err)
		}
	}

	// Draw in sorted key order; map iteration order would consume the seeded
	// source differently on every run.
	keys := make([]string, 0, len(dists))
	for key := range dists {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(opts.Seed))
	samples := make([]map[string]float64, opts.Simulations)
	for i := range samples {
		set := make(map[string]float64, len(dists))
		for _, key := range keys {
			set[key] = dists[key].Sample(rng)
		}
		samples[i] = set
	}

	logger.Info("starting Monte Carlo run",
		zap.String("op", "montecarlo.Run"),
		zap.Int("simulations", opts.Simulations),
		zap.Int("workers", opts.Workers),
		zap.Int64("seed", opts.Seed),
	)

	outcomes := make([]Outcome, opts.Simulations)
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = simulate(base, samples[i], i, opts)
			}
		}()
	}
	for i := 0; i < opts.Simulations; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := &Result{
		Simulations: opts.Simulations,
		Seed:        opts.Seed,
		Outcomes:    outcomes,
		Stats:       aggregate(outcomes),
	}

	logger.Info("Monte Carlo run complete",
		zap.String("op", "montecarlo.Run"),
		zap.Float64("meanNpv", result.Stats["npv"].Mean),
		zap.Float64("positiveNpvProb", result.Stats["npv"].PositiveProb),
	)

	return result, nil
}

// simulate evaluates one sampled parameter set. Each invocation works on its
// own configuration copy, so simulations share no state.
func simulate(base model.Config, sample map[string]float64, index int, opts Options) Outcome {
	override := model.Override{}
	if v, ok := sample[ParamOccupancy]; ok {
		override.Occupancy = model.Float(v)
	}
	if v, ok := sample[ParamDailyRate]; ok {
		override.DailyRate = model.Float(v)
	}
	if v, ok := sample[ParamOTABookingShare]; ok {
		override.OTABookingShare = model.Float(v)
	}
	if v, ok := sample[ParamOTAFeeRate]; ok {
		override.OTAFeeRate = model.Float(v)
	}
	if v, ok := sample[ParamLengthOfStay]; ok {
		override.AverageLengthOfStay = model.Float(v)
	}
	if v, ok := sample[ParamGuestsPerNight]; ok {
		override.AvgGuestsPerNight = model.Float(v)
	}
	if v, ok := sample[ParamCleaningCost]; ok {
		override.CleaningCostPerStay = model.Float(v)
	}
	if v, ok := sample[ParamMarginalTaxRate]; ok {
		override.MarginalTaxRate = model.Float(v)
	}

	cfg := base.Apply(override)

	assumptions := opts.Assumptions
	if v, ok := sample[ParamInflationRate]; ok {
		assumptions.InflationRate = v
	}
	if v, ok := sample[ParamAppreciationRate]; ok {
		assumptions.AppreciationRate = v
	}

	discountRate := constants.DefaultDiscountRate
	if v, ok := sample[ParamDiscountRate]; ok {
		discountRate = v
	}

	annual := engine.Analyze(cfg)
	projection := engine.Project(cfg, assumptions)

	outcome := Outcome{
		Index:              index,
		Samples:            sample,
		AnnualCashFlow:     annual.CashFlowAfterDebtService,
		CashFlowPerOwner:   annual.CashFlowPerOwner,
		GrossRentalIncome:  annual.GrossRentalIncome,
		NetOperatingIncome: annual.NetOperatingIncome,
		AfterTaxCashFlow:   annual.AfterTaxCashFlow,
	}

	if len(projection) > 0 {
		last := projection[len(projection)-1]
		returns := engine.Returns(projection, engine.ReturnInput{
			InitialEquityPerOwner: cfg.Financing.EquityPerOwner(),
			FinalPropertyValue:    last.PropertyValue,
			FinalLoanBalance:      last.RemainingLoanBalance,
			NumOwners:             cfg.Financing.NumOwners,
			PurchasePrice:         cfg.Financing.PurchasePrice,
			SellingCostsRate:      opts.SellingCostsRate,
			DiscountRate:          discountRate,
		})
		outcome.NPV = returns.NPV
		outcome.EquityIRRWithSale = returns.EquityIRRWithSalePct
	}

	return outcome
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
