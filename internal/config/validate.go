package config

import (
	"fmt"

	"github.com/alpvest/alpvest/pkg/constants"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard invariant violations are surfaced by BuildModel
// instead; warnings flag assumptions that are legal but unusual enough to
// deserve a second look.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Financing.LTV > 0.8 {
		warnings = append(warnings, fmt.Sprintf("LTV of %.0f%% is above the typical Swiss second-home limit of 80%%", c.Financing.LTV*constants.PercentageMultiplier))
	}
	if c.Financing.AmortizationRate == 0 {
		warnings = append(warnings, "amortization rate is zero; the loan balance will never decrease")
	}
	if c.Financing.InterestRate > 0.1 {
		warnings = append(warnings, fmt.Sprintf("interest rate of %.1f%% is unusually high", c.Financing.InterestRate*constants.PercentageMultiplier))
	}
	if c.Financing.MortgageType == "saron_variable" {
		if c.Financing.SaronMaxRate < c.Financing.SaronMinRate {
			warnings = append(warnings, "SARON max rate is below the min rate; the band is inverted")
		}
		if c.Financing.SaronMinRate == 0 && c.Financing.SaronMaxRate == 0 {
			warnings = append(warnings, "SARON mortgage configured without a rate band; only the spread will apply")
		}
	}

	if c.Expenses.ManagementFeeRate > 0.35 {
		warnings = append(warnings, fmt.Sprintf("management fee of %.0f%% of gross income is unusually high", c.Expenses.ManagementFeeRate*constants.PercentageMultiplier))
	}
	if c.Expenses.CleaningCostPerStay > 0 && c.Expenses.AverageLengthOfStay <= 0 {
		warnings = append(warnings, "cleaning cost per stay is set but average length of stay is zero; cleaning cost will be dropped")
	}
	if c.Expenses.OTABookingShare > 1 || c.Expenses.OTAFeeRate > 1 {
		warnings = append(warnings, "OTA booking share and fee rate are fractions; values above 1 look like percentages")
	}

	if len(c.Rental.Seasons) > 0 {
		monthsSeen := make(map[int]string)
		for _, s := range c.Rental.Seasons {
			for _, m := range s.Months {
				if prior, ok := monthsSeen[m]; ok {
					warnings = append(warnings, fmt.Sprintf("month %d assigned to both season %q and season %q", m, prior, s.Name))
				}
				monthsSeen[m] = s.Name
			}
		}
		if len(monthsSeen) < constants.MonthsPerYear {
			warnings = append(warnings, fmt.Sprintf("seasons cover only %d of 12 months; uncovered months earn nothing", len(monthsSeen)))
		}
	}

	if c.Projection.Years > 50 {
		warnings = append(warnings, fmt.Sprintf("projection horizon of %d years is unusually long", c.Projection.Years))
	}
	if ref := c.Projection.Refinancing; ref != nil && ref.Year > c.Projection.Years {
		warnings = append(warnings, fmt.Sprintf("refinancing year %d is beyond the %d-year horizon and will never trigger", ref.Year, c.Projection.Years))
	}

	return warnings
}

// ValidateOutputFormat checks that the requested CLI output format is known.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q; expected %s, %s, or %s",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON)
	}
}
