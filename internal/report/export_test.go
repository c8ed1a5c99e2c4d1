package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alpvest/alpvest/internal/montecarlo"
)

func syntheticResult(simulations int) *montecarlo.Result {
	outcomes := make([]montecarlo.Outcome, simulations)
	for i := range outcomes {
		outcomes[i] = montecarlo.Outcome{
			Index: i,
			NPV:   float64(i),
		}
	}
	return &montecarlo.Result{
		Simulations: simulations,
		Seed:        42,
		Outcomes:    outcomes,
		Stats: map[string]montecarlo.Stats{
			"npv": {Mean: float64(simulations-1) / 2},
		},
	}
}

func TestNewMonteCarloExportKeepsSmallRuns(t *testing.T) {
	export := NewMonteCarloExport(syntheticResult(500))

	if export.SampleSize != 500 {
		t.Errorf("SampleSize = %d, want 500", export.SampleSize)
	}
	if export.TotalSimulations != 500 {
		t.Errorf("TotalSimulations = %d, want 500", export.TotalSimulations)
	}
	if len(export.SampleData) != 500 {
		t.Errorf("len(SampleData) = %d, want 500", len(export.SampleData))
	}
	if export.Seed != 42 {
		t.Errorf("Seed = %d, want 42", export.Seed)
	}
}

func TestNewMonteCarloExportHonorsCapOnUnevenCounts(t *testing.T) {
	// Counts that are not exact multiples of the cap must still respect it.
	tests := []struct {
		name        string
		simulations int
	}{
		{name: "Just over the cap", simulations: maxSampleRows + 1},
		{name: "Two and a half times the cap", simulations: 5000},
		{name: "Prime count", simulations: 4999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			export := NewMonteCarloExport(syntheticResult(tt.simulations))
			if len(export.SampleData) > maxSampleRows {
				t.Errorf("len(SampleData) = %d, want at most %d", len(export.SampleData), maxSampleRows)
			}
			if export.SampleSize != len(export.SampleData) {
				t.Errorf("SampleSize = %d, want %d", export.SampleSize, len(export.SampleData))
			}
		})
	}
}

func TestNewMonteCarloExportDownSamplesLargeRuns(t *testing.T) {
	export := NewMonteCarloExport(syntheticResult(10000))

	if export.TotalSimulations != 10000 {
		t.Errorf("TotalSimulations = %d, want 10000", export.TotalSimulations)
	}
	if len(export.SampleData) > maxSampleRows {
		t.Errorf("len(SampleData) = %d, want at most %d", len(export.SampleData), maxSampleRows)
	}
	if export.SampleSize != len(export.SampleData) {
		t.Errorf("SampleSize = %d, want %d", export.SampleSize, len(export.SampleData))
	}

	// Down-sampling must preserve outcome order and span the full run.
	if export.SampleData[0].Index != 0 {
		t.Errorf("first sampled index = %d, want 0", export.SampleData[0].Index)
	}
	prev := -1
	for _, outcome := range export.SampleData {
		if outcome.Index <= prev {
			t.Fatalf("sampled indices not increasing: %d after %d", outcome.Index, prev)
		}
		prev = outcome.Index
	}
	if prev < 9000 {
		t.Errorf("last sampled index = %d, expected coverage near the end of the run", prev)
	}
}

func TestExportRunIDsAreUnique(t *testing.T) {
	a := NewMonteCarloExport(syntheticResult(10))
	b := NewMonteCarloExport(syntheticResult(10))
	if a.RunID == b.RunID {
		t.Errorf("expected distinct run IDs, both were %q", a.RunID)
	}
	if a.RunID == "" {
		t.Error("run ID is empty")
	}
	if a.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	export := NewMonteCarloExport(syntheticResult(10))

	if err := WriteJSON(path, export); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var decoded MonteCarloExport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.RunID != export.RunID {
		t.Errorf("runId = %q, want %q", decoded.RunID, export.RunID)
	}
	if decoded.TotalSimulations != 10 {
		t.Errorf("totalSimulations = %d, want 10", decoded.TotalSimulations)
	}
}

func TestWriteJSONBadPath(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "missing", "export.json"), map[string]int{"a": 1})
	if err == nil {
		t.Error("expected error writing to nonexistent directory")
	}
}
