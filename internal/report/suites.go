package report

import (
	"fmt"
	"io"

	"github.com/vilaca/ci-metrics/internal/domain"
)

// SuiteCounts are the results reported by one suite node.
type SuiteCounts struct {
	Name     string
	Errors   int
	Tests    int
	Failures int

	// HasFailures is false for nodes without a failures attribute (lint reports).
	HasFailures bool
}

// ReadSuites parses the test report at path. See ParseSuites.
// A missing file yields an error satisfying errors.Is(err, fs.ErrNotExist).
func ReadSuites(path string) ([]SuiteCounts, error) {
	root, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return suiteCounts(root)
}

// ParseSuites returns the counts of every direct child of the report root.
// errors and tests are required on each child; failures is optional.
func ParseSuites(r io.Reader) ([]SuiteCounts, error) {
	var root element
	if err := newDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse test report: %w", err)
	}
	return suiteCounts(root)
}

func suiteCounts(root element) ([]SuiteCounts, error) {
	suites := make([]SuiteCounts, 0, len(root.Children))
	for i, node := range root.Children {
		errs, err := node.intAttr("errors")
		if err != nil {
			return nil, fmt.Errorf("suite %d: %w", i, err)
		}

		tests, err := node.intAttr("tests")
		if err != nil {
			return nil, fmt.Errorf("suite %d: %w", i, err)
		}

		suite := SuiteCounts{Errors: errs, Tests: tests}
		suite.Name, _ = node.attr("name")

		if _, ok := node.attr("failures"); ok {
			failures, err := node.intAttr("failures")
			if err != nil {
				return nil, fmt.Errorf("suite %d: %w", i, err)
			}
			suite.Failures = failures
			suite.HasFailures = true
		}

		suites = append(suites, suite)
	}
	return suites, nil
}

// Aggregate sums the counts of all suites. Totals are unavailable when
// there are no suites; suites without a failures attribute add nothing
// to the failure total.
func Aggregate(suites []SuiteCounts) domain.Counts {
	if len(suites) == 0 {
		return domain.Counts{}
	}

	var errs, failures, total int
	for _, s := range suites {
		errs += s.Errors
		total += s.Tests
		if s.HasFailures {
			failures += s.Failures
		}
	}

	return domain.Counts{
		Errors:   domain.Known(errs),
		Failures: domain.Known(failures),
		Total:    domain.Known(total),
	}
}
