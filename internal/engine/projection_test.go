package engine

import (
	"math"
	"testing"

	"github.com/alpvest/alpvest/internal/model"
)

func TestProjectZeroHorizon(t *testing.T) {
	if got := Project(chaletConfig(), Assumptions{Years: 0}); got != nil {
		t.Errorf("Project with zero horizon = %v, want nil", got)
	}
	if got := Project(chaletConfig(), Assumptions{Years: -3}); got != nil {
		t.Errorf("Project with negative horizon = %v, want nil", got)
	}
}

func TestProjectLength(t *testing.T) {
	projection := Project(chaletConfig(), Assumptions{StartYear: 2026, Years: 15})
	if len(projection) != 15 {
		t.Fatalf("projection length = %d, want 15", len(projection))
	}
	if projection[0].Year != 2026 || projection[14].Year != 2040 {
		t.Errorf("year range = %d..%d, want 2026..2040", projection[0].Year, projection[14].Year)
	}
	if projection[0].YearNumber != 1 {
		t.Errorf("first year number = %d, want 1", projection[0].YearNumber)
	}
}

// Year 1 of the projection must reproduce the calculator exactly: same
// income, expenses, debt service, and cash flow.
func TestProjectYearOneMatchesAnalyze(t *testing.T) {
	cfg := chaletConfig()
	annual := Analyze(cfg)
	projection := Project(cfg, Assumptions{StartYear: 2026, Years: 5})

	first := projection[0]
	if !almostEqual(first.GrossRentalIncome, annual.GrossRentalIncome) {
		t.Errorf("year-1 gross = %v, want %v", first.GrossRentalIncome, annual.GrossRentalIncome)
	}
	if !almostEqual(first.TotalOperatingExpenses, annual.TotalOperatingExpenses) {
		t.Errorf("year-1 expenses = %v, want %v", first.TotalOperatingExpenses, annual.TotalOperatingExpenses)
	}
	if !almostEqual(first.DebtService, annual.DebtService) {
		t.Errorf("year-1 debt service = %v, want %v", first.DebtService, annual.DebtService)
	}
	if !almostEqual(first.CashFlowAfterDebtService, annual.CashFlowAfterDebtService) {
		t.Errorf("year-1 cash flow = %v, want %v", first.CashFlowAfterDebtService, annual.CashFlowAfterDebtService)
	}
	if first.InflationFactor != 1.0 || first.AppreciationFactor != 1.0 {
		t.Errorf("year-1 factors = %v/%v, want 1.0/1.0", first.InflationFactor, first.AppreciationFactor)
	}
}

func TestProjectIdentitiesEveryYear(t *testing.T) {
	projection := Project(chaletConfig(), Assumptions{
		StartYear:        2026,
		Years:            15,
		InflationRate:    0.01,
		AppreciationRate: 0.025,
	})

	for _, year := range projection {
		if !almostEqual(year.NetOperatingIncome, year.GrossRentalIncome-year.TotalOperatingExpenses) {
			t.Errorf("year %d: NOI identity broken", year.Year)
		}
		if !almostEqual(year.DebtService, year.InterestPayment+year.AmortizationPayment) {
			t.Errorf("year %d: debt service identity broken", year.Year)
		}
		if !almostEqual(year.CashFlowAfterDebtService, year.NetOperatingIncome-year.DebtService) {
			t.Errorf("year %d: cash flow identity broken", year.Year)
		}
	}
}

// Amortization is a constant fraction of the original loan, so the balance
// declines linearly and the final balance is exactly
// loan - years*amortization.
func TestProjectAmortizationSchedule(t *testing.T) {
	cfg := chaletConfig()
	years := 15
	projection := Project(cfg, Assumptions{StartYear: 2026, Years: years})

	loan := cfg.Financing.LoanAmount()
	amort := cfg.Financing.AnnualAmortization()

	prev := loan
	for _, year := range projection {
		want := prev - amort
		if !almostEqual(year.RemainingLoanBalance, want) {
			t.Errorf("year %d: balance = %v, want %v", year.Year, year.RemainingLoanBalance, want)
		}
		if year.RemainingLoanBalance >= prev {
			t.Errorf("year %d: balance did not decrease", year.Year)
		}
		prev = year.RemainingLoanBalance
	}

	wantFinal := loan - float64(years)*amort
	if !almostEqual(projection[years-1].RemainingLoanBalance, wantFinal) {
		t.Errorf("final balance = %v, want %v", projection[years-1].RemainingLoanBalance, wantFinal)
	}
}

// Interest is charged on the carried balance, so the interest line shrinks
// every year while amortization stays flat.
func TestProjectInterestOnCarriedBalance(t *testing.T) {
	cfg := chaletConfig()
	projection := Project(cfg, Assumptions{StartYear: 2026, Years: 10})

	loan := cfg.Financing.LoanAmount()
	amort := cfg.Financing.AnnualAmortization()
	rate := cfg.Financing.InterestRate

	for i, year := range projection {
		startBalance := loan - float64(i)*amort
		want := startBalance * rate
		if !almostEqual(year.InterestPayment, want) {
			t.Errorf("year %d: interest = %v, want %v", year.Year, year.InterestPayment, want)
		}
		if !almostEqual(year.AmortizationPayment, amort) {
			t.Errorf("year %d: amortization = %v, want %v", year.Year, year.AmortizationPayment, amort)
		}
	}
}

func TestProjectInflationAndAppreciation(t *testing.T) {
	cfg := chaletConfig()
	projection := Project(cfg, Assumptions{
		StartYear:        2026,
		Years:            5,
		InflationRate:    0.02,
		AppreciationRate: 0.03,
	})

	base := Analyze(cfg)
	for i, year := range projection {
		inflation := math.Pow(1.02, float64(i))
		appreciation := math.Pow(1.03, float64(i))

		if !almostEqual(year.GrossRentalIncome, base.GrossRentalIncome*inflation) {
			t.Errorf("year %d: gross = %v, want %v", year.Year, year.GrossRentalIncome, base.GrossRentalIncome*inflation)
		}
		if !almostEqual(year.PropertyValue, cfg.Financing.PurchasePrice*appreciation) {
			t.Errorf("year %d: property value = %v, want %v", year.Year, year.PropertyValue, cfg.Financing.PurchasePrice*appreciation)
		}
		// Maintenance follows the appreciated value.
		wantMaintenance := cfg.Financing.PurchasePrice * appreciation * cfg.Expenses.MaintenanceRate
		gotMaintenance := year.TotalOperatingExpenses -
			(base.ManagementCost+base.PlatformFee+base.CleaningCost+base.TouristTax+
				base.Insurance+base.SharedCosts+base.ElectricityInternet)*inflation
		if !almostEqual(gotMaintenance, wantMaintenance) {
			t.Errorf("year %d: maintenance = %v, want %v", year.Year, gotMaintenance, wantMaintenance)
		}
	}
}

func TestRateForYearSaron(t *testing.T) {
	financing := model.Financing{
		InterestRate:          0.013,
		MortgageType:          model.MortgageSaronVariable,
		SaronSpread:           0.001,
		SaronMinRate:          0.005,
		SaronMaxRate:          0.02,
		SaronFluctuationYears: 8,
	}

	tests := []struct {
		name    string
		yearNum int
		want    float64
	}{
		{"Year 1 sits at the band midpoint", 1, 0.005 + 0.0075 + 0.001},
		{"Year 3 peaks at the band top", 3, 0.02 + 0.001},
		{"Year 5 returns to the midpoint", 5, 0.005 + 0.0075 + 0.001},
		{"Year 7 bottoms out at the band floor", 7, 0.005 + 0.001},
		{"Year 9 completes the cycle", 9, 0.005 + 0.0075 + 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rateForYear(financing, tt.yearNum, nil)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("rateForYear(%d) = %v, want %v", tt.yearNum, got, tt.want)
			}
		})
	}
}

func TestRateForYearSaronStaysInBand(t *testing.T) {
	financing := model.Financing{
		MortgageType:          model.MortgageSaronVariable,
		SaronSpread:           0.0075,
		SaronMinRate:          0.001,
		SaronMaxRate:          0.025,
		SaronFluctuationYears: 10,
	}

	for yearNum := 1; yearNum <= 30; yearNum++ {
		got := rateForYear(financing, yearNum, nil)
		min := financing.SaronMinRate + financing.SaronSpread
		max := financing.SaronMaxRate + financing.SaronSpread
		if got < min-1e-12 || got > max+1e-12 {
			t.Errorf("year %d: rate %v outside [%v, %v]", yearNum, got, min, max)
		}
	}
}

func TestRateForYearRefinancing(t *testing.T) {
	financing := model.Financing{
		InterestRate: 0.013,
		MortgageType: model.MortgageFixed,
	}
	ref := &Refinancing{Year: 4, InterestRate: 0.028}

	for yearNum := 1; yearNum <= 8; yearNum++ {
		got := rateForYear(financing, yearNum, ref)
		want := 0.013
		if yearNum >= 4 {
			want = 0.028
		}
		if got != want {
			t.Errorf("year %d: rate = %v, want %v", yearNum, got, want)
		}
	}
}

// Refinancing outranks the SARON oscillation once triggered.
func TestRefinancingOverridesSaron(t *testing.T) {
	cfg := chaletConfig()
	cfg.Financing.MortgageType = model.MortgageSaronVariable
	cfg.Financing.SaronMinRate = 0.005
	cfg.Financing.SaronMaxRate = 0.02
	cfg.Financing.SaronFluctuationYears = 8

	projection := Project(cfg, Assumptions{
		StartYear:   2026,
		Years:       10,
		Refinancing: &Refinancing{Year: 6, InterestRate: 0.03},
	})

	for _, year := range projection {
		if year.YearNumber >= 6 && year.InterestRate != 0.03 {
			t.Errorf("year %d: rate = %v, want refinanced 0.03", year.Year, year.InterestRate)
		}
		if year.YearNumber < 6 && year.InterestRate == 0.03 {
			t.Errorf("year %d: refinanced too early", year.Year)
		}
	}
}
