package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Values is an indicator output aligned 1:1 with the input bars.
// Bars inside the warm-up period hold None rather than zero.
type Values []optional.Option[float64]

// Defined reports whether the i-th value exists.
func (v Values) Defined(i int) bool {
	return v[i].IsSome()
}

// Float64s converts the values to floats, using NaN for undefined entries.
func (v Values) Float64s() []float64 {
	out := make([]float64, len(v))
	for i, value := range v {
		out[i] = value.TakeOr(math.NaN())
	}

	return out
}

// FirstDefined returns the index of the first defined value, or -1.
func (v Values) FirstDefined() int {
	for i, value := range v {
		if value.IsSome() {
			return i
		}
	}

	return -1
}

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters
	Config(params ...any) error
	// Compute evaluates the indicator over the close prices of the series
	Compute(series types.BarSeries) (Values, error)
}
