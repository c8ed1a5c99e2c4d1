// Package montecarlo samples perturbed configurations from parameter
// distributions, runs the engine pipeline over them in parallel, and
// aggregates the outcome statistics.
package montecarlo

import (
	"fmt"
	"math"
	"math/rand"
)

// DistType names a supported sampling distribution.
type DistType string

const (
	// Uniform samples evenly between Min and Max.
	Uniform DistType = "uniform"

	// Normal samples from a Gaussian with Mean and Std.
	Normal DistType = "normal"

	// Triangular samples from a triangular distribution over [Min, Max]
	// with the given Mode.
	Triangular DistType = "triangular"
)

// Distribution configures one random input. BoundMin/BoundMax, when set,
// clamp samples after drawing (used to keep rates inside legal ranges).
type Distribution struct {
	Type DistType `json:"type"`

	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mode float64 `json:"mode,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`

	BoundMin *float64 `json:"boundMin,omitempty"`
	BoundMax *float64 `json:"boundMax,omitempty"`
}

// Validate checks the distribution parameters for consistency.
func (d Distribution) Validate() error {
	switch d.Type {
	case Uniform:
		if d.Max < d.Min {
			return fmt.Errorf("uniform distribution max %v below min %v", d.Max, d.Min)
		}
	case Normal:
		if d.Std < 0 {
			return fmt.Errorf("normal distribution std must be non-negative, got %v", d.Std)
		}
	case Triangular:
		if d.Max < d.Min {
			return fmt.Errorf("triangular distribution max %v below min %v", d.Max, d.Min)
		}
		if d.Mode < d.Min || d.Mode > d.Max {
			return fmt.Errorf("triangular distribution mode %v outside [%v, %v]", d.Mode, d.Min, d.Max)
		}
	default:
		return fmt.Errorf("unknown distribution type %q", d.Type)
	}
	return nil
}

// Sample draws one value using the provided source.
func (d Distribution) Sample(rng *rand.Rand) float64 {
	var v float64
	switch d.Type {
	case Uniform:
		v = d.Min + (d.Max-d.Min)*rng.Float64()
	case Normal:
		v = d.Mean + d.Std*rng.NormFloat64()
	case Triangular:
		v = sampleTriangular(rng, d.Min, d.Mode, d.Max)
	}

	if d.BoundMin != nil && v < *d.BoundMin {
		v = *d.BoundMin
	}
	if d.BoundMax != nil && v > *d.BoundMax {
		v = *d.BoundMax
	}
	return v
}

// sampleTriangular uses the inverse-CDF method.
func sampleTriangular(rng *rand.Rand, min, mode, max float64) float64 {
	if max == min {
		return min
	}
	u := rng.Float64()
	cut := (mode - min) / (max - min)
	if u < cut {
		return min + math.Sqrt(u*(max-min)*(mode-min))
	}
	return max - math.Sqrt((1-u)*(max-min)*(max-mode))
}

// bound returns a pointer to v for use as a clamping bound.
func bound(v float64) *float64 {
	return &v
}
