package harness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/internal/canonical"
	"github.com/roach88/scimfilter/internal/mappingfile"
	"github.com/roach88/scimfilter/predicate"
	"github.com/roach88/scimfilter/predsql"
)

// Harness evaluates the cases of one scenario.
type Harness struct {
	scenario *Scenario
	mapping  predicate.Mapping
	logger   logrus.FieldLogger
}

// Run executes a test scenario and returns the result.
//
// Every case is parsed with the Validator and the ASTBuilder; when the
// scenario has a mapping, valid filters are also translated and rendered.
// An error is returned only when the scenario itself cannot be run.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, nil)
}

// RunWithLogger is Run with debug output from every handler sent to logger.
func RunWithLogger(scenario *Scenario, logger logrus.FieldLogger) (*Result, error) {
	h := &Harness{scenario: scenario, logger: logger}

	if scenario.Mapping != "" {
		loaded, err := mappingfile.Load(scenario.Mapping)
		if err != nil {
			return nil, fmt.Errorf("failed to load mapping: %w", err)
		}
		h.mapping = loaded.Mapping
	}

	result := NewResult()
	for i := range scenario.Cases {
		h.runCase(i, &scenario.Cases[i], result)
	}
	return result, nil
}

func (h *Harness) runCase(index int, c *Case, result *Result) {
	label := fmt.Sprintf("%s#%d", h.scenario.Name, index)
	prefix := fmt.Sprintf("cases[%d] %q", index, c.Filter)
	actual := h.evaluate(c, label, prefix, result)
	result.Cases = append(result.Cases, actual)

	if c.Valid != nil && *c.Valid != actual.Valid {
		result.AddError(fmt.Sprintf("%s: expected valid=%t, got valid=%t", prefix, *c.Valid, actual.Valid))
	}

	if c.Error != "" && c.Error != actual.Error {
		result.AddError(fmt.Sprintf("%s: expected error %q, got %q", prefix, c.Error, describe(actual.Error)))
	}

	if c.AST != nil {
		want, err := canonical.Marshal(c.AST)
		if err != nil {
			result.AddError(fmt.Sprintf("%s: expected ast: %v", prefix, err))
		} else if got, err := canonical.Marshal(actual.AST); err != nil {
			result.AddError(fmt.Sprintf("%s: actual ast: %v", prefix, err))
		} else if string(want) != string(got) {
			result.AddError(fmt.Sprintf("%s: ast mismatch\n  expected: %s\n  actual:   %s", prefix, want, got))
		}
	}

	if c.SQL != "" && c.SQL != actual.SQL {
		if actual.Error != "" {
			result.AddError(fmt.Sprintf("%s: expected sql %q, got error %q", prefix, c.SQL, actual.Error))
		} else {
			result.AddError(fmt.Sprintf("%s: sql mismatch\n  expected: %s\n  actual:   %s", prefix, c.SQL, actual.SQL))
		}
	}
}

// evaluate runs every stage the case and scenario allow and records what
// each produced. The first failing stage sets Error.
func (h *Harness) evaluate(c *Case, label, prefix string, result *Result) CaseResult {
	actual := CaseResult{Filter: c.Filter}

	validErr := filter.Validate(c.Filter)
	actual.Valid = validErr == nil

	builder := &filter.ASTBuilder{PreserveGroups: c.Groups, Logger: h.logger}
	node, err := filter.NewParser[filter.Node](builder).ParseWithValue(c.Filter, label)
	if (err == nil) != (validErr == nil) {
		result.AddError(fmt.Sprintf("%s: validator and AST builder disagree (%v vs %v)", prefix, validErr, err))
	}
	if err != nil {
		actual.Error = codeOrMessage(err)
		return actual
	}
	actual.AST = filter.Tagged(node, c.Groups)

	if h.mapping == nil {
		return actual
	}

	translator := predicate.NewTranslator(h.mapping, predicate.WithLogger(h.logger))
	pred, err := filter.NewParser[predicate.Predicate](translator).ParseWithValue(c.Filter, label)
	if err != nil {
		actual.Error = codeOrMessage(err)
		return actual
	}

	sql, err := predsql.Render(pred)
	if err != nil {
		result.AddError(fmt.Sprintf("%s: render: %v", prefix, err))
		return actual
	}
	actual.SQL = sql
	return actual
}

// codeOrMessage keeps unexpected errors visible in results.
func codeOrMessage(err error) string {
	if code := ErrorCode(err); code != "" {
		return code
	}
	return err.Error()
}

func describe(code string) string {
	if code == "" {
		return "no error"
	}
	return code
}
