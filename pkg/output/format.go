// Package output provides utilities for formatting and displaying analysis
// and projection results.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable report:
// the Year-1 summary, the projection table, and the return metrics.
func PrettyFormat(annual engine.AnnualResult, projection []engine.YearSnapshot, returns engine.ReturnMetrics) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Year-1 analysis ---\n")
	_, _ = p.Printf("Gross rental income      | %s (%.0f nights at %s)\n",
		format.Currency(annual.GrossRentalIncome), annual.RentedNights, format.Currency(annual.AverageDailyRate))
	_, _ = p.Printf("Operating expenses       | %s (%.1f%% of gross)\n",
		format.Currency(annual.TotalOperatingExpenses), annual.OperatingExpensePct)
	_, _ = p.Printf("Net operating income     | %s\n", format.Currency(annual.NetOperatingIncome))
	_, _ = p.Printf("Debt service             | %s (interest %s + amortization %s)\n",
		format.Currency(annual.DebtService), format.Currency(annual.InterestPayment), format.Currency(annual.AmortizationPayment))
	_, _ = p.Printf("Cash flow                | %s (%s per owner)\n",
		format.Currency(annual.CashFlowAfterDebtService), format.Currency(annual.CashFlowPerOwner))
	_, _ = p.Printf("After-tax cash flow      | %s (%s per owner)\n",
		format.Currency(annual.AfterTaxCashFlow), format.Currency(annual.AfterTaxCashFlowPerOwner))
	_, _ = p.Printf("Equity                   | %s (%s per owner)\n",
		format.Currency(annual.EquityTotal), format.Currency(annual.EquityPerOwner))
	_, _ = p.Printf("Cap rate                 | %s\n", format.Percent(annual.CapRatePct))
	_, _ = p.Printf("Cash-on-cash return      | %s\n", format.Percent(annual.CashOnCashReturnPct))
	_, _ = p.Printf("Debt coverage ratio      | %.2f\n", annual.DebtCoverageRatio)

	if len(annual.SeasonalBreakdown) > 0 {
		fmt.Printf("\n--- Seasonal breakdown ---\n")
		fmt.Printf("Season       | Nights  | Income\n")
		fmt.Printf("______       | ______  | ______\n")
		for _, season := range annual.SeasonalBreakdown {
			_, _ = p.Printf("%-12s | %7.1f | %s\n", season.Name, season.RentedNights, format.Currency(season.Income))
		}
	}

	if len(projection) > 0 {
		fmt.Printf("\n--- Projection ---\n")
		fmt.Printf("Year | Rate   | NOI           | Debt service  | Cash flow     | Loan balance\n")
		fmt.Printf("____ | ____   | ___           | ____________  | _________     | ____________\n")
		for _, year := range projection {
			_, _ = p.Printf("%d | %s | %s | %s | %s | %s\n",
				year.Year,
				format.Percent(year.InterestRate*100),
				format.Currency(year.NetOperatingIncome),
				format.Currency(year.DebtService),
				format.Currency(year.CashFlowAfterDebtService),
				format.Currency(year.RemainingLoanBalance),
			)
		}

		fmt.Printf("\n--- Returns per owner ---\n")
		_, _ = p.Printf("Equity IRR (with sale)   | %s\n", format.Percent(returns.EquityIRRWithSalePct))
		_, _ = p.Printf("Equity IRR (no sale)     | %s\n", format.Percent(returns.EquityIRRWithoutSalePct))
		_, _ = p.Printf("NPV                      | %s\n", format.Currency(returns.NPV))
		_, _ = p.Printf("MOIC                     | %.2fx\n", returns.MOIC)
		if returns.PaybackPeriodYears != nil {
			_, _ = p.Printf("Payback period           | %d years\n", *returns.PaybackPeriodYears)
		} else {
			fmt.Printf("Payback period           | never\n")
		}
		_, _ = p.Printf("Net sale proceeds        | %s\n", format.Currency(returns.SaleProceedsPerOwner))
	}
}

// CsvFormat outputs the projection in comma-separated value format.
func CsvFormat(projection []engine.YearSnapshot) {
	fmt.Printf(`"year","interestRate","grossRentalIncome","totalOperatingExpenses","netOperatingIncome","debtService","cashFlowAfterDebtService","cashFlowPerOwner","afterTaxCashFlow","remainingLoanBalance","propertyValue"`)
	fmt.Printf("\n")
	for _, year := range projection {
		fmt.Printf(`"%d","%.4f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`,
			year.Year,
			year.InterestRate,
			year.GrossRentalIncome,
			year.TotalOperatingExpenses,
			year.NetOperatingIncome,
			year.DebtService,
			year.CashFlowAfterDebtService,
			year.CashFlowPerOwner,
			year.AfterTaxCashFlow,
			year.RemainingLoanBalance,
			year.PropertyValue,
		)
		fmt.Printf("\n")
	}
}

// JSONFormat writes the payload as indented JSON to stdout.
func JSONFormat(payload interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
