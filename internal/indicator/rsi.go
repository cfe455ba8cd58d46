package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Period returns the configured window length.
func (r *RSI) Period() int {
	return r.period
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidParameter, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "period must be a positive integer, got %d", period)
	}

	r.period = period

	return nil
}

// Compute implements Indicator.
func (r *RSI) Compute(series types.BarSeries) (Values, error) {
	return RelativeStrengthIndex(series, r.period)
}

// RelativeStrengthIndex computes Wilder's RSI over the close prices.
// The first window outputs are undefined. A window with zero average loss yields 100.
func RelativeStrengthIndex(series types.BarSeries, window int) (Values, error) {
	if err := checkWindow(series, window); err != nil {
		return nil, err
	}

	closes := series.Closes()
	out := make(Values, len(closes))

	// window == len(closes) leaves no room for the first average
	if window >= len(closes) {
		return out, nil
	}

	gain := func(i int) float64 {
		if change := closes[i] - closes[i-1]; change > 0 {
			return change
		}

		return 0
	}

	loss := func(i int) float64 {
		if change := closes[i] - closes[i-1]; change < 0 {
			return -change
		}

		return 0
	}

	// First average
	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= window; i++ {
		avgGain += gain(i)
		avgLoss += loss(i)
	}

	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = optional.Some(rsiFromAverages(avgGain, avgLoss))

	// Subsequent averages using Wilder's smoothing method
	for i := window + 1; i < len(closes); i++ {
		avgGain = (avgGain*float64(window-1) + gain(i)) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss(i)) / float64(window)
		out[i] = optional.Some(rsiFromAverages(avgGain, avgLoss))
	}

	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
