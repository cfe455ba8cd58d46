// Package performance turns a position series into returns, equity curves and risk metrics.
package performance

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization base for daily Sharpe ratios.
const TradingDaysPerYear = 252

// stdevEpsilon treats a standard deviation this small as zero variance.
const stdevEpsilon = 1e-12

// Metrics are the scalar results of an evaluation.
// Returns and drawdown are percentages.
type Metrics struct {
	TotalReturn      float64 `yaml:"total_return" json:"total_return"`
	BuyAndHoldReturn float64 `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
	MaxDrawdown      float64 `yaml:"max_drawdown" json:"max_drawdown"`
	SharpeRatio      float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
}

// Evaluation holds every per-bar series and the metrics derived from them in one pass.
// All slices are aligned 1:1 with the evaluated bars.
type Evaluation struct {
	// Returns is the simple instrument return, undefined at bar 0.
	Returns indicator.Values
	// LogReturns is ln(close[t]/close[t-1]), undefined at bar 0.
	LogReturns indicator.Values
	// StrategyReturns is position[t-1] * Returns[t], undefined at bars 0 and 1.
	StrategyReturns indicator.Values
	// CumulativeReturns is the buy-and-hold equity curve, starting at 1.
	CumulativeReturns []float64
	// CumulativeStrategy is the strategy equity curve, starting at 1.
	CumulativeStrategy []float64
	// Drawdown is the per-bar percentage decline of CumulativeStrategy from its running peak.
	Drawdown []float64
	Metrics  Metrics
}

// Evaluate computes returns, equity curves and metrics for positions held over series.
// The interval decides whether the Sharpe ratio is annualized.
func Evaluate(series types.BarSeries, positions []types.Signal, interval types.Interval) (Evaluation, error) {
	n := series.Len()
	if n < 2 {
		return Evaluation{}, errors.Newf(errors.ErrCodeEmptySeries, "at least 2 bars are required to compute returns, got %d", n)
	}

	if len(positions) != n {
		return Evaluation{}, errors.Newf(errors.ErrCodeInvalidParameter, "got %d positions for %d bars", len(positions), n)
	}

	for t, position := range positions {
		if !position.Valid() {
			return Evaluation{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid position %d at bar %d", position, t)
		}
	}

	closes := series.Closes()
	eval := Evaluation{
		Returns:            make(indicator.Values, n),
		LogReturns:         make(indicator.Values, n),
		StrategyReturns:    make(indicator.Values, n),
		CumulativeReturns:  make([]float64, n),
		CumulativeStrategy: make([]float64, n),
		Drawdown:           make([]float64, n),
	}

	eval.CumulativeReturns[0] = 1
	eval.CumulativeStrategy[0] = 1

	definedStrategyReturns := make([]float64, 0, n)
	peak := 1.0
	maxDrawdown := 0.0

	for t := 1; t < n; t++ {
		r := closes[t]/closes[t-1] - 1
		eval.Returns[t] = optional.Some(r)
		eval.LogReturns[t] = optional.Some(math.Log(closes[t] / closes[t-1]))
		eval.CumulativeReturns[t] = eval.CumulativeReturns[t-1] * (1 + r)

		eval.CumulativeStrategy[t] = eval.CumulativeStrategy[t-1]

		if t >= 2 {
			sr := positions[t-1].Float64() * r
			eval.StrategyReturns[t] = optional.Some(sr)
			eval.CumulativeStrategy[t] *= 1 + sr
			definedStrategyReturns = append(definedStrategyReturns, sr)
		}

		peak = math.Max(peak, eval.CumulativeStrategy[t])
		eval.Drawdown[t] = (eval.CumulativeStrategy[t] - peak) / peak * 100
		maxDrawdown = math.Min(maxDrawdown, eval.Drawdown[t])
	}

	eval.Metrics = Metrics{
		TotalReturn:      (eval.CumulativeStrategy[n-1] - 1) * 100,
		BuyAndHoldReturn: (eval.CumulativeReturns[n-1] - 1) * 100,
		MaxDrawdown:      maxDrawdown,
		SharpeRatio:      SharpeRatio(definedStrategyReturns, interval),
	}

	return eval, nil
}

// SharpeRatio returns mean/stdev of returns using the sample standard deviation,
// scaled by sqrt(252) for daily data. Fewer than two returns or zero variance yield 0.
func SharpeRatio(returns []float64, interval types.Interval) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if math.IsNaN(std) || math.IsNaN(mean) || std <= stdevEpsilon {
		return 0
	}

	sharpe := mean / std
	if interval.IsDaily() {
		sharpe *= math.Sqrt(TradingDaysPerYear)
	}

	return sharpe
}
