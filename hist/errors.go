package hist

import "github.com/cockroachdb/errors"

var (
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantile = errors.New("invalid quantile")
	ErrEmptyHistogram  = errors.New("empty histogram")
)
