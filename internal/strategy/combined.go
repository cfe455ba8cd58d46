package strategy

import (
	"strings"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CombinedStrategy merges the signals of several strategies into one position series.
// Per bar the numeric signals are summed and the position is the sign of the sum,
// so strategies that disagree cancel out to Flat.
type CombinedStrategy struct {
	strategies []Strategy
}

// NewCombinedStrategy creates a combiner over an ordered, non-empty strategy list.
func NewCombinedStrategy(strategies ...Strategy) (*CombinedStrategy, error) {
	if len(strategies) == 0 {
		return nil, errors.New(errors.ErrCodeNoStrategySelected, "at least one strategy must be selected")
	}

	for i, s := range strategies {
		if s == nil {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "strategy at index %d is nil", i)
		}
	}

	return &CombinedStrategy{
		strategies: append([]Strategy(nil), strategies...),
	}, nil
}

// Strategies returns the combined strategies in order.
func (c *CombinedStrategy) Strategies() []Strategy {
	return append([]Strategy(nil), c.strategies...)
}

// Name implements Strategy.
func (c *CombinedStrategy) Name() string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}

	return "Combined[" + strings.Join(names, "+") + "]"
}

// DeriveSignals implements Strategy.
func (c *CombinedStrategy) DeriveSignals(series types.BarSeries) ([]types.Signal, error) {
	positions, _, err := c.Combine(series)

	return positions, err
}

// Combine derives every strategy's signals and the merged positions.
// The per-strategy signals are returned in strategy order.
func (c *CombinedStrategy) Combine(series types.BarSeries) ([]types.Signal, [][]types.Signal, error) {
	n := series.Len()
	sums := make([]int, n)
	perStrategy := make([][]types.Signal, len(c.strategies))

	for i, s := range c.strategies {
		signals, err := s.DeriveSignals(series)
		if err != nil {
			return nil, nil, errors.Wrapf(errors.GetCode(err), err, "strategy %s failed", s.Name())
		}

		if len(signals) != n {
			return nil, nil, errors.Newf(errors.ErrCodeInvalidParameter,
				"strategy %s returned %d signals for %d bars", s.Name(), len(signals), n)
		}

		for t, signal := range signals {
			if !signal.Valid() {
				return nil, nil, errors.Newf(errors.ErrCodeInvalidParameter,
					"strategy %s returned invalid signal %d at bar %d", s.Name(), signal, t)
			}

			sums[t] += int(signal)
		}

		perStrategy[i] = signals
	}

	positions := make([]types.Signal, n)
	for t, sum := range sums {
		positions[t] = types.SignalFromSign(sum)
	}

	return positions, perStrategy, nil
}
