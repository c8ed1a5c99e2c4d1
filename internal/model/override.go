package model

// Override is a sparse set of named parameter changes. Nil fields keep the
// base value. It is the only sanctioned way for sensitivity and Monte Carlo
// drivers to vary a configuration, which keeps derived analyses comparable.
type Override struct {
	Occupancy           *float64
	DailyRate           *float64
	ManagementFee       *float64
	InterestRate        *float64
	PurchasePrice       *float64
	AmortizationRate    *float64
	MaintenanceRate     *float64
	CleaningCostPerStay *float64
	AverageLengthOfStay *float64
	AvgGuestsPerNight   *float64
	InsuranceRate       *float64
	LTV                 *float64
	OTABookingShare     *float64
	OTAFeeRate          *float64
	MarginalTaxRate     *float64
	SeasonOccupancy     map[string]float64
	SeasonDailyRate     map[string]float64
}

// Float returns a pointer to v, for building sparse overrides inline.
func Float(v float64) *float64 {
	return &v
}

// Apply returns a new configuration with the override applied, leaving the
// receiver untouched. Occupancy and daily-rate overrides on a seasonal
// configuration scale every season by the ratio of the new aggregate value
// to the base aggregate value, so each season's relative share of rented
// nights and income survives a single-parameter perturbation.
func (c Config) Apply(o Override) Config {
	next := c

	next.Financing = c.applyFinancing(o)
	next.Rental = c.applyRental(o)
	next.Expenses = c.applyExpenses(o, next.Financing.PurchasePrice)
	next.Tax = c.Tax
	if o.MarginalTaxRate != nil {
		next.Tax.MarginalRate = *o.MarginalTaxRate
	}

	return next
}

func (c Config) applyFinancing(o Override) Financing {
	f := c.Financing
	if o.InterestRate != nil {
		f.InterestRate = *o.InterestRate
	}
	if o.PurchasePrice != nil {
		f.PurchasePrice = *o.PurchasePrice
	}
	if o.AmortizationRate != nil {
		f.AmortizationRate = *o.AmortizationRate
	}
	if o.LTV != nil {
		f.LTV = *o.LTV
	}
	return f
}

func (c Config) applyRental(o Override) Rental {
	r := c.Rental
	if o.Occupancy != nil {
		r.OccupancyRate = *o.Occupancy
	}
	if o.DailyRate != nil {
		r.AverageDailyRate = *o.DailyRate
	}

	if len(c.Rental.Seasons) == 0 {
		return r
	}

	occupancyScale := 1.0
	if o.Occupancy != nil {
		base := c.Rental.EffectiveOccupancy()
		if base > 0 {
			occupancyScale = *o.Occupancy / base
		}
	}

	rateScale := 1.0
	if o.DailyRate != nil {
		base := c.Rental.EffectiveDailyRate()
		if base > 0 {
			rateScale = *o.DailyRate / base
		}
	}

	seasons := make([]Season, len(c.Rental.Seasons))
	for i, s := range c.Rental.Seasons {
		next := s
		next.Months = append([]int(nil), s.Months...)
		if occ, ok := o.SeasonOccupancy[s.Name]; ok {
			next.OccupancyRate = occ
		} else if o.Occupancy != nil {
			next.OccupancyRate = clampRate(s.OccupancyRate * occupancyScale)
		}
		if rate, ok := o.SeasonDailyRate[s.Name]; ok {
			next.AverageDailyRate = rate
		} else if o.DailyRate != nil {
			next.AverageDailyRate = s.AverageDailyRate * rateScale
		}
		seasons[i] = next
	}
	r.Seasons = seasons
	return r
}

func (c Config) applyExpenses(o Override, purchasePrice float64) Expenses {
	e := c.Expenses
	if o.ManagementFee != nil {
		e.ManagementFeeRate = *o.ManagementFee
	}
	if o.MaintenanceRate != nil {
		e.MaintenanceRate = *o.MaintenanceRate
	}
	if o.CleaningCostPerStay != nil {
		e.CleaningCostPerStay = *o.CleaningCostPerStay
	}
	if o.AverageLengthOfStay != nil {
		e.AverageLengthOfStay = *o.AverageLengthOfStay
	}
	if o.AvgGuestsPerNight != nil {
		e.AvgGuestsPerNight = *o.AvgGuestsPerNight
	}
	if o.OTABookingShare != nil {
		e.OTABookingShare = *o.OTABookingShare
	}
	if o.OTAFeeRate != nil {
		e.OTAFeeRate = *o.OTAFeeRate
	}
	if o.PurchasePrice != nil {
		e.PropertyValue = purchasePrice
	}
	if o.InsuranceRate != nil {
		e.InsuranceAnnual = purchasePrice * *o.InsuranceRate
	}
	return e
}

func clampRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
