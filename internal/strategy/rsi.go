package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RSIStrategy is a mean-reversion strategy: Long when oversold, Short when overbought.
type RSIStrategy struct {
	window     int
	oversold   float64
	overbought float64
	rsi        indicator.Indicator
}

// NewRSIStrategy creates an RSI strategy. Thresholds must satisfy 0 <= oversold < overbought <= 100.
func NewRSIStrategy(window int, oversold, overbought float64) (*RSIStrategy, error) {
	if !(oversold >= 0 && oversold < overbought && overbought <= 100) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"RSI thresholds must satisfy 0 <= oversold < overbought <= 100, got oversold=%g overbought=%g",
			oversold, overbought)
	}

	rsi := indicator.NewRSI()
	if err := rsi.Config(window); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid RSI strategy window %d", window)
	}

	return &RSIStrategy{
		window:     window,
		oversold:   oversold,
		overbought: overbought,
		rsi:        rsi,
	}, nil
}

// Name implements Strategy.
func (s *RSIStrategy) Name() string {
	return fmt.Sprintf("RSI(%d,%g,%g)", s.window, s.oversold, s.overbought)
}

// Window returns the RSI window.
func (s *RSIStrategy) Window() int {
	return s.window
}

// Thresholds returns the oversold and overbought levels.
func (s *RSIStrategy) Thresholds() (oversold, overbought float64) {
	return s.oversold, s.overbought
}

// IndicatorValues implements IndicatorStrategy.
func (s *RSIStrategy) IndicatorValues(series types.BarSeries) (indicator.Values, error) {
	return computeOrUndefined(s.rsi, s.window, series)
}

// DeriveSignals implements Strategy.
func (s *RSIStrategy) DeriveSignals(series types.BarSeries) ([]types.Signal, error) {
	signals := flatSignals(series.Len())

	rsi, err := s.IndicatorValues(series)
	if err != nil {
		return nil, err
	}

	for t, value := range rsi {
		if value.IsNone() {
			continue
		}

		switch v := value.Unwrap(); {
		case v < s.oversold:
			signals[t] = types.SignalLong
		case v > s.overbought:
			signals[t] = types.SignalShort
		}
	}

	return signals, nil
}
