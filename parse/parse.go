// Package parse reads numeric values out of whitespace separated lines.
package parse

import (
	"github.com/cockroachdb/errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMissing    = errors.New("nothing to read")
	ErrNotANumber = errors.New("not a number")
	ErrFailed     = errors.New("parsing failed")
)

// ParseField parses the index-th (0-based) whitespace separated field of
// line. NaN and infinite values are rejected with ErrNotANumber.
func ParseField(line string, index int) (float64, error) {
	if index < 0 {
		return 0, errors.Wrapf(ErrMissing, "field %d", index)
	}
	fields := strings.Fields(line)
	if index >= len(fields) {
		return 0, ErrMissing
	}
	field := fields[index]
	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(value, 0) {
			return 0, errors.Wrapf(ErrNotANumber, "%s", field)
		}
		return 0, errors.Wrapf(ErrFailed, "%q", field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Wrapf(ErrNotANumber, "%v", value)
	}
	return value, nil
}
