package core

import (
	"github.com/cockroachdb/errors"
	"streamhist/density"
	"streamhist/hist"
)

var ErrMissingArg = errors.New("query needs an argument")

type OpType int

const (
	OpCount OpType = iota
	OpMean
	OpVariance
	OpStdDev
	OpMedian
	OpQuantile
	OpCDF
	OpMin
	OpMax
	OpDensity
)

// QueryParams carries the argument of ops that take one: the quantile
// for "quantile" and the point for "cdf" and "density".
type QueryParams struct {
	Arg    float64
	HasArg bool
}

func NewQueryParams(arg float64) *QueryParams {
	return &QueryParams{Arg: arg, HasArg: true}
}

type Op interface {
	GetOpType() OpType
	Query(*hist.StreamHist, *QueryParams) (float64, error)
}

func requireArg(params *QueryParams) (float64, error) {
	if params == nil || !params.HasArg {
		return 0, ErrMissingArg
	}
	return params.Arg, nil
}

type CountOp struct{}

func (op *CountOp) GetOpType() OpType {
	return OpCount
}

func (op *CountOp) Query(h *hist.StreamHist, _ *QueryParams) (float64, error) {
	return float64(h.Count()), nil
}

// StatOp answers the queries that take no argument and can fail on an
// empty histogram.
type StatOp struct {
	OpType OpType
	stat   func(*hist.StreamHist) (float64, error)
}

func NewStatOp(opType OpType) *StatOp {
	op := &StatOp{OpType: opType}
	switch opType {
	case OpMean:
		op.stat = (*hist.StreamHist).Mean
	case OpVariance:
		op.stat = (*hist.StreamHist).Variance
	case OpStdDev:
		op.stat = (*hist.StreamHist).StdDev
	case OpMedian:
		op.stat = (*hist.StreamHist).Median
	case OpMin:
		op.stat = (*hist.StreamHist).Min
	case OpMax:
		op.stat = (*hist.StreamHist).Max
	default:
		return nil
	}
	return op
}

func (op *StatOp) GetOpType() OpType {
	return op.OpType
}

func (op *StatOp) Query(h *hist.StreamHist, _ *QueryParams) (float64, error) {
	return op.stat(h)
}

type QuantileOp struct{}

func (op *QuantileOp) GetOpType() OpType {
	return OpQuantile
}

func (op *QuantileOp) Query(h *hist.StreamHist, params *QueryParams) (float64, error) {
	q, err := requireArg(params)
	if err != nil {
		return 0, err
	}
	return h.Quantile(q)
}

type CDFOp struct{}

func (op *CDFOp) GetOpType() OpType {
	return OpCDF
}

func (op *CDFOp) Query(h *hist.StreamHist, params *QueryParams) (float64, error) {
	x, err := requireArg(params)
	if err != nil {
		return 0, err
	}
	return h.CDF(x)
}

// DensityOp evaluates a kernel density estimate built from the
// histogram at query time.
type DensityOp struct {
	Config *density.Config
}

func (op *DensityOp) GetOpType() OpType {
	return OpDensity
}

func (op *DensityOp) Query(h *hist.StreamHist, params *QueryParams) (float64, error) {
	x, err := requireArg(params)
	if err != nil {
		return 0, err
	}
	kde, err := density.New(h, op.Config)
	if err != nil {
		return 0, err
	}
	return kde.Density(x), nil
}
