package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/scimfilter/internal/canonical"
)

// Snapshot converts a result to the canonical map written to golden files.
func Snapshot(scenarioName string, result *Result) map[string]any {
	cases := make([]any, len(result.Cases))
	for i, c := range result.Cases {
		entry := map[string]any{
			"filter": c.Filter,
			"valid":  c.Valid,
		}
		if c.AST != nil {
			entry["ast"] = c.AST
		}
		if c.SQL != "" {
			entry["sql"] = c.SQL
		}
		if c.Error != "" {
			entry["error"] = c.Error
		}
		cases[i] = entry
	}
	return map[string]any{
		"scenario_name": scenarioName,
		"cases":         cases,
	}
}

// RunWithGolden executes a scenario and compares every case outcome against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := canonical.MarshalIndent(Snapshot(scenario.Name, result), "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
