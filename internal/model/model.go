// Package model defines the immutable configuration records describing a
// co-owned vacation-rental investment: financing, seasonal rental, operating
// expenses, and tax parameters. Every transformation returns a new value;
// nothing in this package mutates shared state.
package model

// MortgageType selects between a fixed-rate mortgage and a SARON-style
// variable-rate mortgage simulated over the projection horizon.
type MortgageType string

const (
	// MortgageFixed keeps the configured interest rate for the whole horizon.
	MortgageFixed MortgageType = "fixed"

	// MortgageSaronVariable derives each year's rate from a smooth oscillation
	// within the configured band plus a fixed spread.
	MortgageSaronVariable MortgageType = "saron_variable"
)

// Financing holds purchase and mortgage parameters.
// Invariants (enforced by the configuration loader, trusted here):
// 0 < LTV < 1 and NumOwners >= 1.
type Financing struct {
	PurchasePrice    float64      `json:"purchasePrice"`
	LTV              float64      `json:"ltv"`
	InterestRate     float64      `json:"interestRate"`
	AmortizationRate float64      `json:"amortizationRate"`
	NumOwners        int          `json:"numOwners"`
	MortgageType     MortgageType `json:"mortgageType"`

	// SARON variable-rate parameters, used only when MortgageType is
	// MortgageSaronVariable.
	SaronSpread           float64 `json:"saronSpread"`
	SaronMinRate          float64 `json:"saronMinRate"`
	SaronMaxRate          float64 `json:"saronMaxRate"`
	SaronFluctuationYears int     `json:"saronFluctuationYears"`
}

// LoanAmount returns the mortgage principal at purchase.
func (f Financing) LoanAmount() float64 {
	return f.PurchasePrice * f.LTV
}

// EquityTotal returns the total down payment across all owners.
func (f Financing) EquityTotal() float64 {
	return f.PurchasePrice - f.LoanAmount()
}

// EquityPerOwner returns the down payment share of a single owner.
func (f Financing) EquityPerOwner() float64 {
	return f.EquityTotal() / float64(f.NumOwners)
}

// AnnualInterest returns the Year-1 interest charge on the initial loan.
func (f Financing) AnnualInterest() float64 {
	return f.LoanAmount() * f.InterestRate
}

// AnnualAmortization returns the constant yearly amortization payment.
// Amortization is a fraction of the initial loan, not of the declining
// balance; this is the contractual repayment scheme being modeled.
func (f Financing) AnnualAmortization() float64 {
	return f.LoanAmount() * f.AmortizationRate
}

// AnnualDebtService returns interest plus amortization for Year 1.
func (f Financing) AnnualDebtService() float64 {
	return f.AnnualInterest() + f.AnnualAmortization()
}

// Season describes one rental season: its calendar months, demand
// assumptions, and the nights available for rental after owner-occupied
// nights are subtracted.
type Season struct {
	Name             string  `json:"name"`
	Months           []int   `json:"months"`
	OccupancyRate    float64 `json:"occupancyRate"`
	AverageDailyRate float64 `json:"averageDailyRate"`
	NightsInSeason   int     `json:"nightsInSeason"`
}

// RentedNights returns the expected rented nights for the season.
func (s Season) RentedNights() float64 {
	return float64(s.NightsInSeason) * s.OccupancyRate
}

// Income returns the expected gross rental income for the season.
func (s Season) Income() float64 {
	return s.RentedNights() * s.AverageDailyRate
}

// Rental holds occupancy and pricing assumptions. When Seasons is non-empty
// the seasonal records are authoritative for rented nights and income;
// otherwise the flat OccupancyRate/AverageDailyRate pair applies.
type Rental struct {
	OwnerNightsPerPerson int      `json:"ownerNightsPerPerson"`
	NumOwners            int      `json:"numOwners"`
	OccupancyRate        float64  `json:"occupancyRate"`
	AverageDailyRate     float64  `json:"averageDailyRate"`
	DaysPerYear          int      `json:"daysPerYear"`
	Seasons              []Season `json:"seasons,omitempty"`
}

// TotalOwnerNights returns the nights reserved for owner use across all owners.
func (r Rental) TotalOwnerNights() int {
	return r.OwnerNightsPerPerson * r.NumOwners
}

// RentableNights returns the nights available for paying guests.
func (r Rental) RentableNights() int {
	return r.DaysPerYear - r.TotalOwnerNights()
}

// RentedNights returns the expected rented nights, seasonal-weighted when
// seasons are configured.
func (r Rental) RentedNights() float64 {
	if len(r.Seasons) > 0 {
		var total float64
		for _, s := range r.Seasons {
			total += s.RentedNights()
		}
		return total
	}
	return float64(r.RentableNights()) * r.OccupancyRate
}

// GrossRentalIncome returns the expected gross income, seasonal-weighted when
// seasons are configured.
func (r Rental) GrossRentalIncome() float64 {
	if len(r.Seasons) > 0 {
		var total float64
		for _, s := range r.Seasons {
			total += s.Income()
		}
		return total
	}
	return r.RentedNights() * r.AverageDailyRate
}

// EffectiveDailyRate returns the rented-night-weighted average nightly rate.
func (r Rental) EffectiveDailyRate() float64 {
	nights := r.RentedNights()
	if nights == 0 {
		return r.AverageDailyRate
	}
	return r.GrossRentalIncome() / nights
}

// EffectiveOccupancy returns rented nights as a share of rentable nights.
func (r Rental) EffectiveOccupancy() float64 {
	rentable := r.RentableNights()
	if rentable == 0 {
		return r.OccupancyRate
	}
	return r.RentedNights() / float64(rentable)
}

// SeasonBreakdown summarizes one season's contribution for reporting.
type SeasonBreakdown struct {
	Name            string  `json:"name"`
	RentedNights    float64 `json:"rentedNights"`
	Income          float64 `json:"income"`
	DailyRate       float64 `json:"dailyRate"`
	Occupancy       float64 `json:"occupancy"`
	AvailableNights int     `json:"availableNights"`
}

// SeasonalBreakdown returns the per-season summary, or a single "Annual"
// entry for a flat (non-seasonal) configuration.
func (r Rental) SeasonalBreakdown() []SeasonBreakdown {
	if len(r.Seasons) == 0 {
		return []SeasonBreakdown{{
			Name:            "Annual",
			RentedNights:    r.RentedNights(),
			Income:          r.GrossRentalIncome(),
			DailyRate:       r.AverageDailyRate,
			Occupancy:       r.OccupancyRate,
			AvailableNights: r.RentableNights(),
		}}
	}
	breakdown := make([]SeasonBreakdown, 0, len(r.Seasons))
	for _, s := range r.Seasons {
		breakdown = append(breakdown, SeasonBreakdown{
			Name:            s.Name,
			RentedNights:    s.RentedNights(),
			Income:          s.Income(),
			DailyRate:       s.AverageDailyRate,
			Occupancy:       s.OccupancyRate,
			AvailableNights: s.NightsInSeason,
		})
	}
	return breakdown
}

// Expenses holds operating-cost parameters. All monetary derivations are
// pure functions of these fields plus a supplied income or nights figure.
type Expenses struct {
	ManagementFeeRate         float64 `json:"managementFeeRate"`
	CleaningCostPerStay       float64 `json:"cleaningCostPerStay"`
	AverageLengthOfStay       float64 `json:"averageLengthOfStay"`
	TouristTaxPerPersonNight  float64 `json:"touristTaxPerPersonNight"`
	AvgGuestsPerNight         float64 `json:"avgGuestsPerNight"`
	InsuranceAnnual           float64 `json:"insuranceAnnual"`
	SharedCostsAnnual         float64 `json:"sharedCostsAnnual"`
	ElectricityInternetAnnual float64 `json:"electricityInternetAnnual"`
	MaintenanceRate           float64 `json:"maintenanceRate"`
	PropertyValue             float64 `json:"propertyValue"`
	OTABookingShare           float64 `json:"otaBookingShare"`
	OTAFeeRate                float64 `json:"otaFeeRate"`
}

// ManagementCost returns the property-management fee on the given gross income.
func (e Expenses) ManagementCost(grossIncome float64) float64 {
	return grossIncome * e.ManagementFeeRate
}

// PlatformFee returns the OTA fee on the given gross income: the share of
// bookings arriving through OTAs times the fee rate those platforms charge.
func (e Expenses) PlatformFee(grossIncome float64) float64 {
	return grossIncome * e.OTABookingShare * e.OTAFeeRate
}

// CleaningCost returns the per-stay cleaning cost over the given rented
// nights. A zero CleaningCostPerStay means cleaning is bundled into the
// management fee and the caller should charge nothing here.
func (e Expenses) CleaningCost(rentedNights float64) float64 {
	if e.AverageLengthOfStay == 0 {
		return 0
	}
	stays := rentedNights / e.AverageLengthOfStay
	return stays * e.CleaningCostPerStay
}

// TouristTax returns the person-night tourist tax over the given rented nights.
func (e Expenses) TouristTax(rentedNights float64) float64 {
	return rentedNights * e.AvgGuestsPerNight * e.TouristTaxPerPersonNight
}

// MaintenanceReserve returns the annual maintenance allowance on the given
// property value. Callers pass the current (appreciated) value, not the
// purchase price.
func (e Expenses) MaintenanceReserve(propertyValue float64) float64 {
	return propertyValue * e.MaintenanceRate
}

// Tax holds the simplified flat-rate tax parameters.
type Tax struct {
	MarginalRate     float64 `json:"marginalRate"`
	DepreciationRate float64 `json:"depreciationRate"`
}

// Depreciation returns the annual depreciation on the given property value.
func (t Tax) Depreciation(propertyValue float64) float64 {
	return propertyValue * t.DepreciationRate
}

// Config aggregates all parameter records. It is always constructed as a
// whole and passed by value.
type Config struct {
	Financing Financing `json:"financing"`
	Rental    Rental    `json:"rental"`
	Expenses  Expenses  `json:"expenses"`
	Tax       Tax       `json:"tax"`
}
