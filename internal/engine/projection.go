package engine

import (
	"math"

	"github.com/alpvest/alpvest/internal/model"
	"github.com/alpvest/alpvest/pkg/constants"
	"github.com/alpvest/alpvest/pkg/mathutil"
)

// Refinancing directs the projection to switch to a new fixed rate from the
// trigger year onward (inclusive).
type Refinancing struct {
	Year         int     `json:"year"`
	InterestRate float64 `json:"interestRate"`
}

// Assumptions holds the macro inputs for a projection run.
type Assumptions struct {
	StartYear        int          `json:"startYear"`
	InflationRate    float64      `json:"inflationRate"`
	AppreciationRate float64      `json:"appreciationRate"`
	Years            int          `json:"years"`
	Refinancing      *Refinancing `json:"refinancing,omitempty"`
}

// DefaultAssumptions returns the standard projection inputs.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		StartYear:        constants.DefaultStartYear,
		InflationRate:    constants.DefaultInflationRate,
		AppreciationRate: constants.DefaultAppreciationRate,
		Years:            constants.DefaultProjectionYears,
	}
}

// YearSnapshot is one projection year's economics. RemainingLoanBalance is
// the end-of-year balance, after the year's amortization payment.
type YearSnapshot struct {
	Year               int     `json:"year"`
	YearNumber         int     `json:"yearNumber"`
	InflationFactor    float64 `json:"inflationFactor"`
	AppreciationFactor float64 `json:"appreciationFactor"`
	PropertyValue      float64 `json:"propertyValue"`

	GrossRentalIncome      float64 `json:"grossRentalIncome"`
	TotalOperatingExpenses float64 `json:"totalOperatingExpenses"`
	NetOperatingIncome     float64 `json:"netOperatingIncome"`

	InterestRate        float64 `json:"interestRate"`
	InterestPayment     float64 `json:"interestPayment"`
	AmortizationPayment float64 `json:"amortizationPayment"`
	DebtService         float64 `json:"debtService"`

	CashFlowAfterDebtService float64 `json:"cashFlowAfterDebtService"`
	CashFlowPerOwner         float64 `json:"cashFlowPerOwner"`
	RemainingLoanBalance     float64 `json:"remainingLoanBalance"`

	DebtCoverageRatio float64 `json:"debtCoverageRatio"`
	CapRatePct        float64 `json:"capRatePct"`

	Depreciation             float64 `json:"depreciation"`
	TaxableIncome            float64 `json:"taxableIncome"`
	TaxLiability             float64 `json:"taxLiability"`
	TaxBenefit               float64 `json:"taxBenefit"`
	AfterTaxCashFlow         float64 `json:"afterTaxCashFlow"`
	AfterTaxCashFlowPerOwner float64 `json:"afterTaxCashFlowPerOwner"`
}

// yearState is the carried state threaded through the projection fold: the
// loan balance at the start of the year.
type yearState struct {
	remainingLoan float64
}

// Project computes an ordered sequence of per-year snapshots. Revenue and
// expense lines inflate from their Year-1 base; the maintenance reserve is
// recomputed from the appreciated property value each year. Interest is
// charged on the carried balance while amortization stays a constant
// fraction of the original loan. A non-positive horizon yields nil.
func Project(cfg model.Config, a Assumptions) []YearSnapshot {
	if a.Years <= 0 {
		return nil
	}

	base := Analyze(cfg)
	state := yearState{remainingLoan: cfg.Financing.LoanAmount()}

	snapshots := make([]YearSnapshot, 0, a.Years)
	for yearNum := 1; yearNum <= a.Years; yearNum++ {
		snapshot, next := projectYear(cfg, a, base, yearNum, state)
		snapshots = append(snapshots, snapshot)
		state = next
	}
	return snapshots
}

// projectYear computes a single year's snapshot from the carried state and
// returns the state for the following year.
func projectYear(cfg model.Config, a Assumptions, base AnnualResult, yearNum int, state yearState) (YearSnapshot, yearState) {
	// Compounding starts from Year 1: factor 1.0 in the first year.
	inflationFactor := math.Pow(1+a.InflationRate, float64(yearNum-1))
	appreciationFactor := math.Pow(1+a.AppreciationRate, float64(yearNum-1))

	grossIncome := base.GrossRentalIncome * inflationFactor
	managementCost := base.ManagementCost * inflationFactor
	platformFee := base.PlatformFee * inflationFactor
	cleaningCost := base.CleaningCost * inflationFactor
	touristTax := base.TouristTax * inflationFactor
	insurance := base.Insurance * inflationFactor
	sharedCosts := base.SharedCosts * inflationFactor
	electricityInternet := base.ElectricityInternet * inflationFactor

	// Maintenance follows the appreciated property value, not the inflated
	// Year-1 figure.
	propertyValue := cfg.Financing.PurchasePrice * appreciationFactor
	maintenance := cfg.Expenses.MaintenanceReserve(propertyValue)

	totalExpenses := managementCost +
		platformFee +
		cleaningCost +
		touristTax +
		insurance +
		sharedCosts +
		electricityInternet +
		maintenance

	noi := grossIncome - totalExpenses

	rate := rateForYear(cfg.Financing, yearNum, a.Refinancing)
	interest := state.remainingLoan * rate
	amortization := cfg.Financing.AnnualAmortization()
	debtService := interest + amortization

	cashFlow := noi - debtService
	owners := float64(cfg.Financing.NumOwners)

	taxBenefit := (interest + amortization) * cfg.Tax.MarginalRate
	depreciation := cfg.Tax.Depreciation(propertyValue)
	taxableIncome := grossIncome - totalExpenses - depreciation
	var taxLiability float64
	if taxableIncome > 0 {
		taxLiability = taxableIncome * cfg.Tax.MarginalRate
	}
	afterTaxCashFlow := cashFlow + taxBenefit - taxLiability

	endBalance := state.remainingLoan - amortization

	snapshot := YearSnapshot{
		Year:               a.StartYear + yearNum - 1,
		YearNumber:         yearNum,
		InflationFactor:    inflationFactor,
		AppreciationFactor: appreciationFactor,
		PropertyValue:      propertyValue,

		GrossRentalIncome:      grossIncome,
		TotalOperatingExpenses: totalExpenses,
		NetOperatingIncome:     noi,

		InterestRate:        rate,
		InterestPayment:     interest,
		AmortizationPayment: amortization,
		DebtService:         debtService,

		CashFlowAfterDebtService: cashFlow,
		CashFlowPerOwner:         cashFlow / owners,
		RemainingLoanBalance:     endBalance,

		DebtCoverageRatio: mathutil.SafeRatio(noi, debtService),
		CapRatePct:        mathutil.CalculatePercentage(noi, propertyValue),

		Depreciation:             depreciation,
		TaxableIncome:            taxableIncome,
		TaxLiability:             taxLiability,
		TaxBenefit:               taxBenefit,
		AfterTaxCashFlow:         afterTaxCashFlow,
		AfterTaxCashFlowPerOwner: afterTaxCashFlow / owners,
	}

	return snapshot, yearState{remainingLoan: endBalance}
}

// rateForYear applies the rate-selection policy: refinancing directive
// first, then the SARON-style oscillation, then the static configured rate.
func rateForYear(f model.Financing, yearNum int, ref *Refinancing) float64 {
	if ref != nil && yearNum >= ref.Year {
		return ref.InterestRate
	}

	if f.MortgageType == model.MortgageSaronVariable {
		fluctuation := f.SaronFluctuationYears
		if fluctuation <= 0 {
			fluctuation = constants.DefaultProjectionYears
		}
		// Smooth oscillation mapped from [-1, 1] into the configured band.
		progress := float64(yearNum-1) / float64(fluctuation)
		oscillation := (math.Sin(2*math.Pi*progress) + 1) / 2
		saron := f.SaronMinRate + (f.SaronMaxRate-f.SaronMinRate)*oscillation
		return saron + f.SaronSpread
	}

	return f.InterestRate
}
