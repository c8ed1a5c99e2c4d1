// Package engine implements the financial core: the Year-1 cash-flow
// calculator, the multi-year projection engine, and the return-metric
// solver. Every function is pure; inputs are trusted per the configuration
// loader's contract and numerically ill-posed cases return defined
// degenerate values instead of errors.
package engine

import (
	"github.com/alpvest/alpvest/internal/model"
	"github.com/alpvest/alpvest/pkg/mathutil"
)

// AnnualResult is the Year-1 snapshot of revenue, expenses, debt service,
// cash flow, tax lines, and KPIs. Field names are stable for JSON export.
type AnnualResult struct {
	// Revenue
	GrossRentalIncome float64 `json:"grossRentalIncome"`
	RentedNights      float64 `json:"rentedNights"`
	RentableNights    int     `json:"rentableNights"`
	TotalOwnerNights  int     `json:"totalOwnerNights"`

	// Operating expenses
	ManagementCost         float64 `json:"managementCost"`
	PlatformFee            float64 `json:"platformFee"`
	CleaningCost           float64 `json:"cleaningCost"`
	TouristTax             float64 `json:"touristTax"`
	Insurance              float64 `json:"insurance"`
	SharedCosts            float64 `json:"sharedCosts"`
	ElectricityInternet    float64 `json:"electricityInternet"`
	MaintenanceReserve     float64 `json:"maintenanceReserve"`
	TotalOperatingExpenses float64 `json:"totalOperatingExpenses"`

	NetOperatingIncome float64 `json:"netOperatingIncome"`

	// Debt service
	InterestPayment     float64 `json:"interestPayment"`
	AmortizationPayment float64 `json:"amortizationPayment"`
	DebtService         float64 `json:"debtService"`

	// Cash flow
	CashFlowAfterDebtService float64 `json:"cashFlowAfterDebtService"`
	CashFlowPerOwner         float64 `json:"cashFlowPerOwner"`

	// Tax
	Depreciation             float64 `json:"depreciation"`
	TaxableIncome            float64 `json:"taxableIncome"`
	TaxLiability             float64 `json:"taxLiability"`
	TaxBenefit               float64 `json:"taxBenefit"`
	AfterTaxCashFlow         float64 `json:"afterTaxCashFlow"`
	AfterTaxCashFlowPerOwner float64 `json:"afterTaxCashFlowPerOwner"`

	// Financing
	PurchasePrice  float64 `json:"purchasePrice"`
	LoanAmount     float64 `json:"loanAmount"`
	EquityTotal    float64 `json:"equityTotal"`
	EquityPerOwner float64 `json:"equityPerOwner"`

	// KPIs, computed from the derived values above
	CapRatePct            float64 `json:"capRatePct"`
	CashOnCashReturnPct   float64 `json:"cashOnCashReturnPct"`
	DebtCoverageRatio     float64 `json:"debtCoverageRatio"`
	OperatingExpensePct   float64 `json:"operatingExpenseRatioPct"`
	AverageDailyRate      float64 `json:"averageDailyRate"`
	OverallOccupancyRate  float64 `json:"overallOccupancyRate"`

	SeasonalBreakdown []model.SeasonBreakdown `json:"seasonalBreakdown,omitempty"`
}

// Analyze computes the Year-1 economics for a configuration. It has no side
// effects and no error conditions; invariants are enforced upstream.
func Analyze(cfg model.Config) AnnualResult {
	f := cfg.Financing
	r := cfg.Rental
	e := cfg.Expenses
	t := cfg.Tax

	grossIncome := r.GrossRentalIncome()
	rentedNights := r.RentedNights()

	managementCost := e.ManagementCost(grossIncome)
	platformFee := e.PlatformFee(grossIncome)

	// Either/or policy: a zero per-stay cost means cleaning is already
	// bundled into the management fee.
	var cleaningCost float64
	if e.CleaningCostPerStay > 0 {
		cleaningCost = e.CleaningCost(rentedNights)
	}

	touristTax := e.TouristTax(rentedNights)
	maintenance := e.MaintenanceReserve(e.PropertyValue)

	totalExpenses := managementCost +
		platformFee +
		cleaningCost +
		touristTax +
		e.InsuranceAnnual +
		e.SharedCostsAnnual +
		e.ElectricityInternetAnnual +
		maintenance

	noi := grossIncome - totalExpenses

	interest := f.AnnualInterest()
	amortization := f.AnnualAmortization()
	debtService := f.AnnualDebtService()

	cashFlow := noi - debtService
	owners := float64(f.NumOwners)

	// Interest and amortization are deductible at the owner level, producing
	// a tax benefit credited to cash flow. The property itself is taxed on
	// income after expenses and depreciation, if positive.
	taxBenefit := (interest + amortization) * t.MarginalRate
	depreciation := t.Depreciation(f.PurchasePrice)
	taxableIncome := grossIncome - totalExpenses - depreciation
	var taxLiability float64
	if taxableIncome > 0 {
		taxLiability = taxableIncome * t.MarginalRate
	}
	afterTaxCashFlow := cashFlow + taxBenefit - taxLiability

	result := AnnualResult{
		GrossRentalIncome: grossIncome,
		RentedNights:      rentedNights,
		RentableNights:    r.RentableNights(),
		TotalOwnerNights:  r.TotalOwnerNights(),

		ManagementCost:         managementCost,
		PlatformFee:            platformFee,
		CleaningCost:           cleaningCost,
		TouristTax:             touristTax,
		Insurance:              e.InsuranceAnnual,
		SharedCosts:            e.SharedCostsAnnual,
		ElectricityInternet:    e.ElectricityInternetAnnual,
		MaintenanceReserve:     maintenance,
		TotalOperatingExpenses: totalExpenses,

		NetOperatingIncome: noi,

		InterestPayment:     interest,
		AmortizationPayment: amortization,
		DebtService:         debtService,

		CashFlowAfterDebtService: cashFlow,
		CashFlowPerOwner:         cashFlow / owners,

		Depreciation:             depreciation,
		TaxableIncome:            taxableIncome,
		TaxLiability:             taxLiability,
		TaxBenefit:               taxBenefit,
		AfterTaxCashFlow:         afterTaxCashFlow,
		AfterTaxCashFlowPerOwner: afterTaxCashFlow / owners,

		PurchasePrice:  f.PurchasePrice,
		LoanAmount:     f.LoanAmount(),
		EquityTotal:    f.EquityTotal(),
		EquityPerOwner: f.EquityPerOwner(),

		CapRatePct:          mathutil.CalculatePercentage(noi, f.PurchasePrice),
		CashOnCashReturnPct: mathutil.CalculatePercentage(cashFlow, f.EquityTotal()),
		DebtCoverageRatio:   mathutil.SafeRatio(noi, debtService),
		OperatingExpensePct: mathutil.CalculatePercentage(totalExpenses, grossIncome),

		AverageDailyRate:     r.EffectiveDailyRate(),
		OverallOccupancyRate: r.EffectiveOccupancy(),
	}

	if len(r.Seasons) > 0 {
		result.SeasonalBreakdown = r.SeasonalBreakdown()
	}

	return result
}
