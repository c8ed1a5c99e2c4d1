// Package constants provides shared constants for the alpvest application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerYear is the standard number of calendar days in the annual model
	DaysPerYear = 365

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// RateTolerance is the tolerance for interest/return rate comparisons
	RateTolerance = 1e-6
)

// Projection defaults
const (
	// DefaultProjectionYears is the standard holding horizon
	DefaultProjectionYears = 15

	// DefaultStartYear is the assumed purchase year when none is configured
	DefaultStartYear = 2026

	// DefaultInflationRate is the default annual inflation assumption
	DefaultInflationRate = 0.01

	// DefaultAppreciationRate is the default annual property appreciation
	DefaultAppreciationRate = 0.025

	// DefaultDiscountRate is the default NPV discount rate
	DefaultDiscountRate = 0.05

	// DefaultSellingCostsRate is the default total selling cost share of the sale price
	DefaultSellingCostsRate = 0.078
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON export format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultAssumptionsFile is the default assumptions file name
	DefaultAssumptionsFile = "assumptions.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for assumption files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMonteCarloRatePerSecond is the default rate limit for Monte Carlo requests
	DefaultMonteCarloRatePerSecond = 1.0

	// DefaultMonteCarloBurst is the default burst allowance for Monte Carlo requests
	DefaultMonteCarloBurst = 2
)

// Monte Carlo defaults
const (
	// DefaultSimulations is the default Monte Carlo iteration count
	DefaultSimulations = 10000

	// MaxServerSimulations caps simulation counts accepted over the API
	MaxServerSimulations = 50000
)

// DaysPerMonth maps calendar month numbers (1-12) to day counts.
// February stays at 28; leap days are ignored in the annual model.
var DaysPerMonth = map[int]int{
	1: 31, 2: 28, 3: 31, 4: 30, 5: 31, 6: 30,
	7: 31, 8: 31, 9: 30, 10: 31, 11: 30, 12: 31,
}
