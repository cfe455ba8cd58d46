package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// EMAStrategy follows the trend: Long when the close is above its EMA, Short when below.
//
// The close at bar t is compared with the EMA level established through bar t-1, so a bar is
// never judged against an average that already contains it. With window 1 this reduces to
// comparing each close with the previous close.
//
// Two lags stack on top of each other. The signal at bar t already uses EMA[t-1], and the
// evaluator earns Returns[t] with the position taken at bar t-1. A close that crosses the EMA at
// bar t therefore first moves the strategy equity at bar t+1, two bars after the EMA level it
// was compared with.
type EMAStrategy struct {
	window int
	ema    indicator.Indicator
}

// NewEMAStrategy creates an EMA trend strategy. The window must be at least 1.
func NewEMAStrategy(window int) (*EMAStrategy, error) {
	ema := indicator.NewEMA()
	if err := ema.Config(window); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid EMA strategy window %d", window)
	}

	return &EMAStrategy{
		window: window,
		ema:    ema,
	}, nil
}

// Name implements Strategy.
func (s *EMAStrategy) Name() string {
	return fmt.Sprintf("EMA(%d)", s.window)
}

// Window returns the EMA window.
func (s *EMAStrategy) Window() int {
	return s.window
}

// IndicatorValues implements IndicatorStrategy.
func (s *EMAStrategy) IndicatorValues(series types.BarSeries) (indicator.Values, error) {
	return computeOrUndefined(s.ema, s.window, series)
}

// DeriveSignals implements Strategy.
func (s *EMAStrategy) DeriveSignals(series types.BarSeries) ([]types.Signal, error) {
	signals := flatSignals(series.Len())

	ema, err := s.IndicatorValues(series)
	if err != nil {
		return nil, err
	}

	closes := series.Closes()
	for t := 1; t < len(closes); t++ {
		if !ema.Defined(t - 1) {
			continue
		}

		level := ema[t-1].Unwrap()

		switch {
		case closes[t] > level:
			signals[t] = types.SignalLong
		case closes[t] < level:
			signals[t] = types.SignalShort
		}
	}

	return signals, nil
}
