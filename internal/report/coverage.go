package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// LineRateAttr is the root attribute of a coverage report holding the covered line ratio.
const LineRateAttr = "line-rate"

// ReadCoverage parses the coverage report at path. See ParseCoverage.
// A missing file yields an error satisfying errors.Is(err, fs.ErrNotExist).
func ReadCoverage(path string) (float64, error) {
	root, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	return lineRatePercentage(root)
}

// ParseCoverage returns the line coverage of a report as a percentage: the
// root line-rate ratio multiplied by 100. Ratios outside [0,1] are not rejected.
func ParseCoverage(r io.Reader) (float64, error) {
	var root element
	if err := newDecoder(r).Decode(&root); err != nil {
		return 0, fmt.Errorf("failed to parse coverage report: %w", err)
	}
	return lineRatePercentage(root)
}

func lineRatePercentage(root element) (float64, error) {
	raw, ok := root.attr(LineRateAttr)
	if !ok {
		return 0, fmt.Errorf("<%s> %q: %w", root.XMLName.Local, LineRateAttr, ErrMissingAttribute)
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", LineRateAttr, raw, err)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("invalid %s %q: not a finite number", LineRateAttr, raw)
	}

	return 100 * rate, nil
}
