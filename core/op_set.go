package core

import (
	"github.com/cockroachdb/errors"
	"sort"
)

var ErrUnknownOp = errors.New("unknown query op")

var opNames = map[string]OpType{
	"count":    OpCount,
	"mean":     OpMean,
	"variance": OpVariance,
	"stddev":   OpStdDev,
	"median":   OpMedian,
	"quantile": OpQuantile,
	"cdf":      OpCDF,
	"min":      OpMin,
	"max":      OpMax,
	"density":  OpDensity,
}

func GetOpFromType(opType OpType) Op {
	switch opType {
	case OpCount:
		return &CountOp{}
	case OpQuantile:
		return &QuantileOp{}
	case OpCDF:
		return &CDFOp{}
	case OpDensity:
		return &DensityOp{}
	default:
		if op := NewStatOp(opType); op != nil {
			return op
		}
		return nil
	}
}

func GetOpFromName(opName string) (Op, error) {
	opType, ok := opNames[opName]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOp, "%q", opName)
	}
	return GetOpFromType(opType), nil
}

func GetOpNameFromOpType(opType OpType) string {
	for name, t := range opNames {
		if t == opType {
			return name
		}
	}
	return ""
}

// OpNames lists the accepted query op names in sorted order.
func OpNames() []string {
	names := make([]string, 0, len(opNames))
	for name := range opNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
