package montecarlo

import (
	"math"
	"testing"

	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/model"
)

func testConfig() model.Config {
	return model.Config{
		Financing: model.Financing{
			PurchasePrice:    1300000,
			LTV:              0.75,
			InterestRate:     0.013,
			AmortizationRate: 0.01,
			NumOwners:        4,
			MortgageType:     model.MortgageFixed,
		},
		Rental: model.Rental{
			OwnerNightsPerPerson: 5,
			NumOwners:            4,
			OccupancyRate:        0.63,
			AverageDailyRate:     200,
			DaysPerYear:          365,
		},
		Expenses: model.Expenses{
			ManagementFeeRate:         0.25,
			CleaningCostPerStay:       80,
			AverageLengthOfStay:       4,
			TouristTaxPerPersonNight:  3.5,
			AvgGuestsPerNight:         3.5,
			InsuranceAnnual:           1560,
			SharedCostsAnnual:         4800,
			ElectricityInternetAnnual: 2400,
			MaintenanceRate:           0.01,
			PropertyValue:             1300000,
			OTABookingShare:           0.6,
			OTAFeeRate:                0.15,
		},
		Tax: model.Tax{MarginalRate: 0.3, DepreciationRate: 0.02},
	}
}

func testOptions(seed int64, workers int) Options {
	return Options{
		Simulations: 200,
		Seed:        seed,
		Workers:     workers,
		Assumptions: engine.Assumptions{
			StartYear:        2026,
			Years:            5,
			InflationRate:    0.01,
			AppreciationRate: 0.025,
		},
		SellingCostsRate: 0.078,
	}
}

func TestRunShape(t *testing.T) {
	cfg := testConfig()
	result, err := Run(nil, cfg, DefaultDistributions(cfg), testOptions(42, 4))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Simulations != 200 {
		t.Errorf("simulations = %d, want 200", result.Simulations)
	}
	if len(result.Outcomes) != 200 {
		t.Fatalf("outcomes = %d, want 200", len(result.Outcomes))
	}
	for i, outcome := range result.Outcomes {
		if outcome.Index != i {
			t.Fatalf("outcome %d has index %d; ordering lost", i, outcome.Index)
		}
	}

	for _, key := range []string{StatNPV, StatEquityIRRWithSale, StatAnnualCashFlow, StatCashFlowPerOwner} {
		stats, ok := result.Stats[key]
		if !ok {
			t.Errorf("missing stats for %s", key)
			continue
		}
		if stats.Min > stats.Median || stats.Median > stats.Max {
			t.Errorf("%s: min/median/max out of order: %+v", key, stats)
		}
		if stats.P5 > stats.P95 {
			t.Errorf("%s: P5 %v above P95 %v", key, stats.P5, stats.P95)
		}
	}
}

// The same seed must reproduce the run exactly, regardless of worker count.
func TestRunDeterministicBySeed(t *testing.T) {
	cfg := testConfig()

	first, err := Run(nil, cfg, DefaultDistributions(cfg), testOptions(7, 1))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := Run(nil, cfg, DefaultDistributions(cfg), testOptions(7, 8))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i := range first.Outcomes {
		if first.Outcomes[i].NPV != second.Outcomes[i].NPV {
			t.Fatalf("outcome %d NPV differs: %v vs %v", i, first.Outcomes[i].NPV, second.Outcomes[i].NPV)
		}
	}
	if first.Stats[StatNPV].Mean != second.Stats[StatNPV].Mean {
		t.Errorf("mean NPV differs across worker counts")
	}

	third, err := Run(nil, cfg, DefaultDistributions(cfg), testOptions(8, 1))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.Stats[StatNPV].Mean == third.Stats[StatNPV].Mean {
		t.Errorf("different seeds produced identical mean NPV")
	}
}

// Repeated runs with identical options must draw identical samples: the
// sampling order is fixed, not subject to map iteration order.
func TestRunRepeatableSamples(t *testing.T) {
	cfg := testConfig()
	dists := DefaultDistributions(cfg)

	first, err := Run(nil, cfg, dists, testOptions(42, 4))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := Run(nil, cfg, dists, testOptions(42, 4))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i := range first.Outcomes {
		for key, value := range first.Outcomes[i].Samples {
			if second.Outcomes[i].Samples[key] != value {
				t.Fatalf("outcome %d sample %s differs: %v vs %v",
					i, key, value, second.Outcomes[i].Samples[key])
			}
		}
		if first.Outcomes[i].NPV != second.Outcomes[i].NPV {
			t.Fatalf("outcome %d NPV differs: %v vs %v", i, first.Outcomes[i].NPV, second.Outcomes[i].NPV)
		}
	}
}

// Sampled values must respect the distribution bounds.
func TestRunSamplesWithinBounds(t *testing.T) {
	cfg := testConfig()
	dists := DefaultDistributions(cfg)
	result, err := Run(nil, cfg, dists, testOptions(99, 2))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, outcome := range result.Outcomes {
		for key, value := range outcome.Samples {
			d := dists[key]
			if d.BoundMin != nil && value < *d.BoundMin {
				t.Errorf("%s sample %v below bound %v", key, value, *d.BoundMin)
			}
			if d.BoundMax != nil && value > *d.BoundMax {
				t.Errorf("%s sample %v above bound %v", key, value, *d.BoundMax)
			}
		}
	}
}

func TestRunRejectsInvalidDistribution(t *testing.T) {
	cfg := testConfig()
	dists := map[string]Distribution{
		ParamOccupancy: {Type: Triangular, Min: 0.8, Mode: 0.5, Max: 0.9},
	}
	if _, err := Run(nil, cfg, dists, testOptions(1, 1)); err == nil {
		t.Errorf("Run() expected error for mode outside [min, max]")
	}
}

func TestAggregatePositiveProb(t *testing.T) {
	outcomes := []Outcome{
		{NPV: -10}, {NPV: 5}, {NPV: 15}, {NPV: 0},
	}
	stats := aggregate(outcomes)
	if got := stats[StatNPV].PositiveProb; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("positive probability = %v, want 0.5", got)
	}
	if got := stats[StatNPV].Mean; math.Abs(got-2.5) > 1e-9 {
		t.Errorf("mean = %v, want 2.5", got)
	}
}
