package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Strategy maps a bar series to one signal per bar.
// Implementations must not mutate the series, and undefined indicator values map to Flat.
type Strategy interface {
	// Name identifies the strategy and its parameters, e.g. "EMA(20)".
	Name() string
	// DeriveSignals returns a signal series aligned 1:1 with the bars.
	DeriveSignals(series types.BarSeries) ([]types.Signal, error)
}

// IndicatorStrategy is implemented by strategies backed by a single indicator.
// The engine uses it to carry indicator values into the result.
type IndicatorStrategy interface {
	Strategy
	// IndicatorValues computes the underlying indicator for the series.
	// Values are all undefined when the window does not fit the series.
	IndicatorValues(series types.BarSeries) (indicator.Values, error)
}

// flatSignals returns n Flat signals.
func flatSignals(n int) []types.Signal {
	return make([]types.Signal, n)
}

// computeOrUndefined runs the indicator, treating a window longer than the series as undefined
// everywhere instead of an error.
func computeOrUndefined(ind indicator.Indicator, window int, series types.BarSeries) (indicator.Values, error) {
	if window > series.Len() {
		return make(indicator.Values, series.Len()), nil
	}

	return ind.Compute(series)
}
