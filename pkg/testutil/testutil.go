// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/alpvest/alpvest/internal/engine"
)

// FindYear finds a projection snapshot by calendar year.
// Returns a pointer to the snapshot if found, nil otherwise.
func FindYear(projection []engine.YearSnapshot, year int) *engine.YearSnapshot {
	for i := range projection {
		if projection[i].Year == year {
			return &projection[i]
		}
	}
	return nil
}

// FindYearNumber finds a projection snapshot by 1-based year number.
// Returns a pointer to the snapshot if found, nil otherwise.
func FindYearNumber(projection []engine.YearSnapshot, yearNum int) *engine.YearSnapshot {
	for i := range projection {
		if projection[i].YearNumber == yearNum {
			return &projection[i]
		}
	}
	return nil
}
