package backtest

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/events"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/performance"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/shopspring/decimal"
)

// summaryPlaces is the number of decimal places metrics are rounded to in a Summary.
const summaryPlaces = 4

// StrategyColumn is the per-bar output of one configured strategy.
type StrategyColumn struct {
	Name    string
	Signals []types.Signal
	// Indicator is nil for strategies that expose no indicator.
	Indicator indicator.Values
}

// Result is the immutable outcome of a backtest run. Accessors return copies.
type Result struct {
	id         string
	config     RunConfig
	createdAt  time.Time
	bars       types.BarSeries
	strategies []StrategyColumn
	positions  []types.Signal
	evaluation performance.Evaluation
}

// Summary is the serializable scalar view of a Result.
type Summary struct {
	ID               string         `yaml:"id" json:"id"`
	Symbol           string         `yaml:"symbol" json:"symbol"`
	Period           types.Period   `yaml:"period" json:"period"`
	Interval         types.Interval `yaml:"interval" json:"interval"`
	Strategies       []string       `yaml:"strategies" json:"strategies"`
	Bars             int            `yaml:"bars" json:"bars"`
	Start            time.Time      `yaml:"start" json:"start"`
	End              time.Time      `yaml:"end" json:"end"`
	TotalReturn      float64        `yaml:"total_return" json:"total_return"`
	BuyAndHoldReturn float64        `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
	MaxDrawdown      float64        `yaml:"max_drawdown" json:"max_drawdown"`
	SharpeRatio      float64        `yaml:"sharpe_ratio" json:"sharpe_ratio"`
}

// Row is one bar of a result in tabular form.
type Row struct {
	Time               time.Time
	Close              float64
	Signal             types.Signal
	Return             optional.Option[float64]
	LogReturn          optional.Option[float64]
	StrategyReturn     optional.Option[float64]
	CumulativeReturn   float64
	CumulativeStrategy float64
	Drawdown           float64
	// StrategySignals and Indicators are aligned with Result.Strategies.
	StrategySignals []types.Signal
	Indicators      []optional.Option[float64]
}

func (r *Result) ID() string {
	return r.id
}

func (r *Result) Symbol() string {
	return r.config.Symbol
}

func (r *Result) Config() RunConfig {
	return r.config
}

func (r *Result) CreatedAt() time.Time {
	return r.createdAt
}

// Bars returns the evaluated bar series.
func (r *Result) Bars() types.BarSeries {
	return r.bars
}

// Positions returns the combined position per bar.
func (r *Result) Positions() []types.Signal {
	return append([]types.Signal(nil), r.positions...)
}

// Strategies returns the per-strategy signals and indicator values in configuration order.
func (r *Result) Strategies() []StrategyColumn {
	out := make([]StrategyColumn, len(r.strategies))
	for i, column := range r.strategies {
		out[i] = StrategyColumn{
			Name:      column.Name,
			Signals:   append([]types.Signal(nil), column.Signals...),
			Indicator: nil,
		}

		if column.Indicator != nil {
			out[i].Indicator = append(indicator.Values(nil), column.Indicator...)
		}
	}

	return out
}

// StrategyNames returns the strategy names in configuration order.
func (r *Result) StrategyNames() []string {
	names := make([]string, len(r.strategies))
	for i, column := range r.strategies {
		names[i] = column.Name
	}

	return names
}

// Evaluation returns a copy of the per-bar evaluation series.
func (r *Result) Evaluation() performance.Evaluation {
	e := r.evaluation

	return performance.Evaluation{
		Returns:            append(indicator.Values(nil), e.Returns...),
		LogReturns:         append(indicator.Values(nil), e.LogReturns...),
		StrategyReturns:    append(indicator.Values(nil), e.StrategyReturns...),
		CumulativeReturns:  append([]float64(nil), e.CumulativeReturns...),
		CumulativeStrategy: append([]float64(nil), e.CumulativeStrategy...),
		Drawdown:           append([]float64(nil), e.Drawdown...),
		Metrics:            e.Metrics,
	}
}

func (r *Result) Metrics() performance.Metrics {
	return r.evaluation.Metrics
}

// TotalReturn is the strategy return over the whole series, in percent.
func (r *Result) TotalReturn() float64 {
	return r.evaluation.Metrics.TotalReturn
}

// BuyAndHoldReturn is the instrument return over the whole series, in percent.
func (r *Result) BuyAndHoldReturn() float64 {
	return r.evaluation.Metrics.BuyAndHoldReturn
}

// MaxDrawdown is the deepest peak-to-trough decline of the strategy curve, in percent (<= 0).
func (r *Result) MaxDrawdown() float64 {
	return r.evaluation.Metrics.MaxDrawdown
}

func (r *Result) SharpeRatio() float64 {
	return r.evaluation.Metrics.SharpeRatio
}

// Summary returns the scalar view of the result with metrics rounded to 4 decimal places.
func (r *Result) Summary() Summary {
	first, _ := r.bars.First()
	last, _ := r.bars.Last()

	return Summary{
		ID:               r.id,
		Symbol:           r.config.Symbol,
		Period:           r.config.Period,
		Interval:         r.config.Interval,
		Strategies:       r.StrategyNames(),
		Bars:             r.bars.Len(),
		Start:            first.Time,
		End:              last.Time,
		TotalReturn:      round(r.TotalReturn()),
		BuyAndHoldReturn: round(r.BuyAndHoldReturn()),
		MaxDrawdown:      round(r.MaxDrawdown()),
		SharpeRatio:      round(r.SharpeRatio()),
	}
}

func (r *Result) eventSummary() events.ResultSummary {
	return events.ResultSummary{
		Bars:             r.bars.Len(),
		TotalReturn:      r.TotalReturn(),
		BuyAndHoldReturn: r.BuyAndHoldReturn(),
		MaxDrawdown:      r.MaxDrawdown(),
		SharpeRatio:      r.SharpeRatio(),
	}
}

// Rows returns one row per bar.
func (r *Result) Rows() []Row {
	rows := make([]Row, r.bars.Len())

	for t := range rows {
		bar := r.bars.At(t)
		row := Row{
			Time:               bar.Time,
			Close:              bar.Close,
			Signal:             r.positions[t],
			Return:             r.evaluation.Returns[t],
			LogReturn:          r.evaluation.LogReturns[t],
			StrategyReturn:     r.evaluation.StrategyReturns[t],
			CumulativeReturn:   r.evaluation.CumulativeReturns[t],
			CumulativeStrategy: r.evaluation.CumulativeStrategy[t],
			Drawdown:           r.evaluation.Drawdown[t],
			StrategySignals:    make([]types.Signal, len(r.strategies)),
			Indicators:         make([]optional.Option[float64], len(r.strategies)),
		}

		for i, column := range r.strategies {
			row.StrategySignals[i] = column.Signals[t]
			row.Indicators[i] = optional.None[float64]()

			if column.Indicator != nil {
				row.Indicators[i] = column.Indicator[t]
			}
		}

		rows[t] = row
	}

	return rows
}

func round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(summaryPlaces).InexactFloat64()
}
