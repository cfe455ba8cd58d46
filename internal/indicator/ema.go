package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Period returns the configured window length.
func (e *EMA) Period() int {
	return e.period
}

// Config configures the EMA indicator. Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
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

	e.period = period

	return nil
}

// Compute implements Indicator.
func (e *EMA) Compute(series types.BarSeries) (Values, error) {
	return ExponentialMovingAverage(series, e.period)
}

// ExponentialMovingAverage computes the EMA of the close prices with alpha = 2/(window+1).
// The average is seeded with the simple mean of the first window closes, so the first
// window-1 outputs are undefined.
func ExponentialMovingAverage(series types.BarSeries, window int) (Values, error) {
	if err := checkWindow(series, window); err != nil {
		return nil, err
	}

	closes := series.Closes()
	out := make(Values, len(closes))

	sma := 0.0
	for i := 0; i < window; i++ {
		sma += closes[i]
	}

	sma /= float64(window)

	// Use alpha = 2/(span+1) to match pandas ewm implementation with adjust=False
	alpha := 2.0 / float64(window+1)

	ema := sma
	out[window-1] = optional.Some(ema)

	for i := window; i < len(closes); i++ {
		ema = (closes[i] * alpha) + (ema * (1 - alpha))
		out[i] = optional.Some(ema)
	}

	return out, nil
}

func checkWindow(series types.BarSeries, window int) error {
	if window < 1 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "window must be >= 1, got %d", window)
	}

	if window > series.Len() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "window %d exceeds series length %d", window, series.Len())
	}

	return nil
}
