// Package report builds the export records consumed by downstream tooling
// and renders summary charts. Field names are stable; the engine guarantees
// no NaN/Inf values reach these payloads.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/model"
	"github.com/alpvest/alpvest/internal/montecarlo"
	"github.com/alpvest/alpvest/internal/sensitivity"
	"github.com/google/uuid"
)

// maxSampleRows caps the raw outcomes included in a Monte Carlo export to
// keep payload sizes manageable for charting clients.
const maxSampleRows = 2000

// AnalysisExport is the single-scenario payload: configuration echo, Year-1
// results, projection, and return metrics.
type AnalysisExport struct {
	RunID       string                `json:"runId"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Config      model.Config          `json:"config"`
	Annual      engine.AnnualResult   `json:"annualResults"`
	Projection  []engine.YearSnapshot `json:"projection"`
	Returns     engine.ReturnMetrics  `json:"returnMetrics"`
}

// NewAnalysisExport assembles an analysis payload with a fresh run ID.
func NewAnalysisExport(cfg model.Config, annual engine.AnnualResult, projection []engine.YearSnapshot, returns engine.ReturnMetrics) AnalysisExport {
	return AnalysisExport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Annual:      annual,
		Projection:  projection,
		Returns:     returns,
	}
}

// SensitivityExport is the sweep payload.
type SensitivityExport struct {
	RunID       string                        `json:"runId"`
	GeneratedAt time.Time                     `json:"generatedAt"`
	Curves      []sensitivity.Curve           `json:"curves"`
	BreakEven   []sensitivity.BreakEvenResult `json:"breakEven"`
}

// NewSensitivityExport assembles a sensitivity payload with a fresh run ID.
func NewSensitivityExport(curves []sensitivity.Curve, breakEven []sensitivity.BreakEvenResult) SensitivityExport {
	return SensitivityExport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Curves:      curves,
		BreakEven:   breakEven,
	}
}

// MonteCarloExport is the simulation payload: full statistics plus a
// down-sampled slice of raw outcomes.
type MonteCarloExport struct {
	RunID            string                      `json:"runId"`
	GeneratedAt      time.Time                   `json:"generatedAt"`
	Statistics       map[string]montecarlo.Stats `json:"statistics"`
	SampleData       []montecarlo.Outcome        `json:"sampleData"`
	TotalSimulations int                         `json:"totalSimulations"`
	SampleSize       int                         `json:"sampleSize"`
	Seed             int64                       `json:"seed"`
}

// NewMonteCarloExport assembles a Monte Carlo payload, down-sampling the raw
// outcomes to at most maxSampleRows evenly spaced rows.
func NewMonteCarloExport(result *montecarlo.Result) MonteCarloExport {
	sample := result.Outcomes
	if len(sample) > maxSampleRows {
		// Ceiling division keeps the stride large enough to honor the cap
		// when the count is not an exact multiple.
		step := (len(sample) + maxSampleRows - 1) / maxSampleRows
		down := make([]montecarlo.Outcome, 0, maxSampleRows)
		for i := 0; i < len(sample); i += step {
			down = append(down, sample[i])
		}
		sample = down
	}

	return MonteCarloExport{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		Statistics:       result.Stats,
		SampleData:       sample,
		TotalSimulations: result.Simulations,
		SampleSize:       len(sample),
		Seed:             result.Seed,
	}
}

// WriteJSON marshals payload with indentation and writes it to path.
func WriteJSON(path string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export to %s: %w", path, err)
	}
	return nil
}
