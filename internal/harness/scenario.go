package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a named set of filter cases sharing one attribute mapping.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden snapshots use it as
	// their file name.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Mapping is the path of a mapping file (.yaml, .yml or .cue). Relative
	// paths are resolved against the scenario file's directory. Required
	// when any case has an sql expectation.
	Mapping string `yaml:"mapping,omitempty"`

	// Cases are checked in order.
	Cases []Case `yaml:"cases"`
}

// Case is a single filter and what it should produce.
type Case struct {
	Filter string `yaml:"filter"`

	// Valid, if set, is compared with the grammar-only verdict.
	Valid *bool `yaml:"valid,omitempty"`

	// Groups builds the AST with parentheses preserved.
	Groups bool `yaml:"groups,omitempty"`

	// AST is the expected canonical AST, written as plain YAML.
	AST any `yaml:"ast,omitempty"`

	// SQL is the expected inline SQL, as rendered by predsql.Render.
	SQL string `yaml:"sql,omitempty"`

	// Error is the expected error code.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Mapping != "" && !filepath.IsAbs(scenario.Mapping) {
		scenario.Mapping = filepath.Join(filepath.Dir(path), scenario.Mapping)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.Mapping != "" {
		if _, err := os.Stat(s.Mapping); os.IsNotExist(err) {
			return fmt.Errorf("mapping file not found: %s", s.Mapping)
		}
	}

	for i := range s.Cases {
		if err := validateCase(i, &s.Cases[i], s.Mapping != ""); err != nil {
			return err
		}
	}

	return nil
}

func validateCase(index int, c *Case, hasMapping bool) error {
	if c.Valid == nil && c.AST == nil && c.SQL == "" && c.Error == "" {
		return fmt.Errorf("cases[%d]: at least one of valid, ast, sql or error is required", index)
	}

	if c.Error != "" {
		if !isKnownCode(c.Error) {
			return fmt.Errorf("cases[%d]: unknown error code %q", index, c.Error)
		}
		if c.AST != nil || c.SQL != "" {
			return fmt.Errorf("cases[%d]: error cannot be combined with ast or sql", index)
		}
		if isTranslationCode(c.Error) && !hasMapping {
			return fmt.Errorf("cases[%d]: error %q needs a scenario mapping", index, c.Error)
		}
	}

	if c.Valid != nil && !*c.Valid && (c.AST != nil || c.SQL != "") {
		return fmt.Errorf("cases[%d]: an invalid filter cannot have ast or sql", index)
	}

	if c.SQL != "" && !hasMapping {
		return fmt.Errorf("cases[%d]: sql needs a scenario mapping", index)
	}

	return nil
}
