// Package config defines the assumptions-file schema and includes functions
// for loading, validating, and converting it into the model configuration.
package config

import (
	"bytes"
	"fmt"

	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/model"
	"github.com/alpvest/alpvest/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for alpvest.
type Configuration struct {
	Financing  FinancingConfig  `mapstructure:"financing"`
	Rental     RentalConfig     `mapstructure:"rental"`
	Expenses   ExpensesConfig   `mapstructure:"expenses"`
	Tax        TaxConfig        `mapstructure:"tax"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json
}

// FinancingConfig mirrors the financing section of the assumptions file.
type FinancingConfig struct {
	PurchasePrice         float64 `mapstructure:"purchasePrice"`
	LTV                   float64 `mapstructure:"ltv"`
	InterestRate          float64 `mapstructure:"interestRate"`
	AmortizationRate      float64 `mapstructure:"amortizationRate"`
	NumOwners             int     `mapstructure:"numOwners"`
	MortgageType          string  `mapstructure:"mortgageType"`
	SaronSpread           float64 `mapstructure:"saronSpread"`
	SaronMinRate          float64 `mapstructure:"saronMinRate"`
	SaronMaxRate          float64 `mapstructure:"saronMaxRate"`
	SaronFluctuationYears int     `mapstructure:"saronFluctuationYears"`
}

// SeasonConfig describes one named season. OwnerNights is the share of the
// owners' reserved nights allocated to this season; it is subtracted from
// the season's calendar nights to get the rentable figure.
type SeasonConfig struct {
	Name             string  `mapstructure:"name"`
	Months           []int   `mapstructure:"months"`
	OccupancyRate    float64 `mapstructure:"occupancyRate"`
	AverageDailyRate float64 `mapstructure:"averageDailyRate"`
	OwnerNights      int     `mapstructure:"ownerNights"`
}

// RentalConfig mirrors the rental section of the assumptions file. The flat
// occupancy/rate pair applies when no seasons are configured.
type RentalConfig struct {
	OwnerNightsPerPerson int            `mapstructure:"ownerNightsPerPerson"`
	DaysPerYear          int            `mapstructure:"daysPerYear"`
	OccupancyRate        float64        `mapstructure:"occupancyRate"`
	AverageDailyRate     float64        `mapstructure:"averageDailyRate"`
	Seasons              []SeasonConfig `mapstructure:"seasons"`
}

// ExpensesConfig mirrors the expenses section of the assumptions file.
// Insurance is configured as a rate on the purchase price.
type ExpensesConfig struct {
	ManagementFeeRate         float64 `mapstructure:"managementFeeRate"`
	CleaningCostPerStay       float64 `mapstructure:"cleaningCostPerStay"`
	AverageLengthOfStay       float64 `mapstructure:"averageLengthOfStay"`
	TouristTaxPerPersonNight  float64 `mapstructure:"touristTaxPerPersonNight"`
	AvgGuestsPerNight         float64 `mapstructure:"avgGuestsPerNight"`
	InsuranceRate             float64 `mapstructure:"insuranceRate"`
	SharedCostsAnnual         float64 `mapstructure:"sharedCostsAnnual"`
	ElectricityInternetAnnual float64 `mapstructure:"electricityInternetAnnual"`
	MaintenanceRate           float64 `mapstructure:"maintenanceRate"`
	OTABookingShare           float64 `mapstructure:"otaBookingShare"`
	OTAFeeRate                float64 `mapstructure:"otaFeeRate"`
}

// TaxConfig mirrors the tax section of the assumptions file.
type TaxConfig struct {
	MarginalTaxRate  float64 `mapstructure:"marginalTaxRate"`
	DepreciationRate float64 `mapstructure:"depreciationRate"`
}

// RefinancingConfig mirrors the optional refinancing directive.
type RefinancingConfig struct {
	Year         int     `mapstructure:"year"`
	InterestRate float64 `mapstructure:"interestRate"`
}

// ProjectionConfig mirrors the projection section of the assumptions file.
type ProjectionConfig struct {
	StartYear        int                `mapstructure:"startYear"`
	Years            int                `mapstructure:"years"`
	InflationRate    float64            `mapstructure:"inflationRate"`
	AppreciationRate float64            `mapstructure:"appreciationRate"`
	DiscountRate     float64            `mapstructure:"discountRate"`
	SellingCostsRate float64            `mapstructure:"sellingCostsRate"`
	Refinancing      *RefinancingConfig `mapstructure:"refinancing"`
}

// LoadConfiguration takes a file path as input and loads the YAML- or
// JSON-formatted assumptions there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// ParseConfiguration decodes an in-memory assumptions document (YAML or
// JSON), as uploaded over the API.
func ParseConfiguration(data []byte) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("error parsing assumptions document, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// applyDefaults fills zero-valued optional fields with the standard
// projection and rental defaults.
func (c *Configuration) applyDefaults() {
	if c.Rental.DaysPerYear == 0 {
		c.Rental.DaysPerYear = constants.DaysPerYear
	}
	if c.Financing.MortgageType == "" {
		c.Financing.MortgageType = string(model.MortgageFixed)
	}
	if c.Financing.SaronFluctuationYears == 0 {
		c.Financing.SaronFluctuationYears = constants.DefaultProjectionYears
	}
	if c.Projection.StartYear == 0 {
		c.Projection.StartYear = constants.DefaultStartYear
	}
	if c.Projection.Years == 0 {
		c.Projection.Years = constants.DefaultProjectionYears
	}
	if c.Projection.InflationRate == 0 {
		c.Projection.InflationRate = constants.DefaultInflationRate
	}
	if c.Projection.AppreciationRate == 0 {
		c.Projection.AppreciationRate = constants.DefaultAppreciationRate
	}
	if c.Projection.DiscountRate == 0 {
		c.Projection.DiscountRate = constants.DefaultDiscountRate
	}
	if c.Projection.SellingCostsRate == 0 {
		c.Projection.SellingCostsRate = constants.DefaultSellingCostsRate
	}
}

// BuildModel converts the file schema into the model configuration. Seasonal
// rentable nights are derived from the calendar months minus the per-season
// owner-night allocation. Hard invariant violations are returned as errors;
// the engine trusts the result.
func (c *Configuration) BuildModel() (model.Config, error) {
	if err := c.checkInvariants(); err != nil {
		return model.Config{}, err
	}

	seasons := make([]model.Season, 0, len(c.Rental.Seasons))
	for _, sc := range c.Rental.Seasons {
		calendarNights := 0
		for _, m := range sc.Months {
			days, ok := constants.DaysPerMonth[m]
			if !ok {
				return model.Config{}, fmt.Errorf("season %q references invalid month %d", sc.Name, m)
			}
			calendarNights += days
		}
		rentable := calendarNights - sc.OwnerNights
		if rentable < 0 {
			return model.Config{}, fmt.Errorf("season %q has more owner nights (%d) than calendar nights (%d)", sc.Name, sc.OwnerNights, calendarNights)
		}
		seasons = append(seasons, model.Season{
			Name:             sc.Name,
			Months:           append([]int(nil), sc.Months...),
			OccupancyRate:    sc.OccupancyRate,
			AverageDailyRate: sc.AverageDailyRate,
			NightsInSeason:   rentable,
		})
	}

	financing := model.Financing{
		PurchasePrice:         c.Financing.PurchasePrice,
		LTV:                   c.Financing.LTV,
		InterestRate:          c.Financing.InterestRate,
		AmortizationRate:      c.Financing.AmortizationRate,
		NumOwners:             c.Financing.NumOwners,
		MortgageType:          model.MortgageType(c.Financing.MortgageType),
		SaronSpread:           c.Financing.SaronSpread,
		SaronMinRate:          c.Financing.SaronMinRate,
		SaronMaxRate:          c.Financing.SaronMaxRate,
		SaronFluctuationYears: c.Financing.SaronFluctuationYears,
	}

	rental := model.Rental{
		OwnerNightsPerPerson: c.Rental.OwnerNightsPerPerson,
		NumOwners:            c.Financing.NumOwners,
		OccupancyRate:        c.Rental.OccupancyRate,
		AverageDailyRate:     c.Rental.AverageDailyRate,
		DaysPerYear:          c.Rental.DaysPerYear,
		Seasons:              seasons,
	}

	expenses := model.Expenses{
		ManagementFeeRate:         c.Expenses.ManagementFeeRate,
		CleaningCostPerStay:       c.Expenses.CleaningCostPerStay,
		AverageLengthOfStay:       c.Expenses.AverageLengthOfStay,
		TouristTaxPerPersonNight:  c.Expenses.TouristTaxPerPersonNight,
		AvgGuestsPerNight:         c.Expenses.AvgGuestsPerNight,
		InsuranceAnnual:           c.Financing.PurchasePrice * c.Expenses.InsuranceRate,
		SharedCostsAnnual:         c.Expenses.SharedCostsAnnual,
		ElectricityInternetAnnual: c.Expenses.ElectricityInternetAnnual,
		MaintenanceRate:           c.Expenses.MaintenanceRate,
		PropertyValue:             c.Financing.PurchasePrice,
		OTABookingShare:           c.Expenses.OTABookingShare,
		OTAFeeRate:                c.Expenses.OTAFeeRate,
	}

	tax := model.Tax{
		MarginalRate:     c.Tax.MarginalTaxRate,
		DepreciationRate: c.Tax.DepreciationRate,
	}

	return model.Config{
		Financing: financing,
		Rental:    rental,
		Expenses:  expenses,
		Tax:       tax,
	}, nil
}

// Assumptions converts the projection section into engine assumptions.
func (p ProjectionConfig) Assumptions() engine.Assumptions {
	a := engine.Assumptions{
		StartYear:        p.StartYear,
		InflationRate:    p.InflationRate,
		AppreciationRate: p.AppreciationRate,
		Years:            p.Years,
	}
	if p.Refinancing != nil {
		a.Refinancing = &engine.Refinancing{
			Year:         p.Refinancing.Year,
			InterestRate: p.Refinancing.InterestRate,
		}
	}
	return a
}

// checkInvariants enforces the hard configuration invariants the engine
// trusts downstream.
func (c *Configuration) checkInvariants() error {
	if c.Financing.PurchasePrice <= 0 {
		return fmt.Errorf("purchase price must be positive, got %v", c.Financing.PurchasePrice)
	}
	if c.Financing.LTV <= 0 || c.Financing.LTV >= 1 {
		return fmt.Errorf("ltv must be between 0 and 1 exclusive, got %v", c.Financing.LTV)
	}
	if c.Financing.NumOwners < 1 {
		return fmt.Errorf("number of owners must be at least 1, got %d", c.Financing.NumOwners)
	}
	if c.Rental.OccupancyRate < 0 || c.Rental.OccupancyRate > 1 {
		return fmt.Errorf("occupancy rate must be between 0 and 1, got %v", c.Rental.OccupancyRate)
	}
	for _, s := range c.Rental.Seasons {
		if s.OccupancyRate < 0 || s.OccupancyRate > 1 {
			return fmt.Errorf("season %q occupancy rate must be between 0 and 1, got %v", s.Name, s.OccupancyRate)
		}
	}
	totalOwnerNights := c.Rental.OwnerNightsPerPerson * c.Financing.NumOwners
	if totalOwnerNights > c.Rental.DaysPerYear {
		return fmt.Errorf("total owner nights (%d) exceed days per year (%d)", totalOwnerNights, c.Rental.DaysPerYear)
	}
	return nil
}
