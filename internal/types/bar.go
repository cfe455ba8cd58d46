package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Bar is one OHLCV observation for a fixed time interval.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// BarSeries is an immutable, strictly time-ordered sequence of bars for one symbol.
// The zero value is an empty series.
type BarSeries struct {
	symbol string
	bars   []Bar
}

// NewBarSeries validates bars and returns a series holding a private copy of them.
// Bars must be strictly increasing by time; gaps are allowed, reordering is not.
func NewBarSeries(symbol string, bars []Bar) (BarSeries, error) {
	for i, bar := range bars {
		if err := validateBar(bar); err != nil {
			return BarSeries{}, errors.Wrapf(errors.ErrCodeInvalidBarSeries, err, "invalid bar %d for %s", i, symbol)
		}

		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return BarSeries{}, errors.Newf(errors.ErrCodeInvalidBarSeries,
				"bar %d for %s at %s is not after previous bar at %s",
				i, symbol, bar.Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339))
		}
	}

	copied := make([]Bar, len(bars))
	copy(copied, bars)

	return BarSeries{symbol: symbol, bars: copied}, nil
}

func validateBar(bar Bar) error {
	if bar.Time.IsZero() {
		return errors.New(errors.ErrCodeInvalidBarSeries, "timestamp is zero")
	}

	prices := []struct {
		name  string
		value float64
	}{{"open", bar.Open}, {"high", bar.High}, {"low", bar.Low}, {"close", bar.Close}}
	for _, price := range prices {
		if math.IsNaN(price.value) || math.IsInf(price.value, 0) || price.value <= 0 {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "%s price must be positive and finite, got %v", price.name, price.value)
		}
	}

	if math.IsNaN(bar.Volume) || math.IsInf(bar.Volume, 0) || bar.Volume < 0 {
		return errors.Newf(errors.ErrCodeInvalidBarSeries, "volume must be non-negative and finite, got %v", bar.Volume)
	}

	return nil
}

// Symbol returns the instrument symbol of the series.
func (s BarSeries) Symbol() string {
	return s.symbol
}

// Len returns the number of bars.
func (s BarSeries) Len() int {
	return len(s.bars)
}

// IsEmpty reports whether the series has no bars.
func (s BarSeries) IsEmpty() bool {
	return len(s.bars) == 0
}

// At returns the i-th bar. It panics if i is out of range, like a slice index.
func (s BarSeries) At(i int) Bar {
	return s.bars[i]
}

// First returns the earliest bar and false if the series is empty.
func (s BarSeries) First() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}

	return s.bars[0], true
}

// Last returns the latest bar and false if the series is empty.
func (s BarSeries) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}

	return s.bars[len(s.bars)-1], true
}

// Bars returns a copy of the underlying bars.
func (s BarSeries) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)

	return out
}

// Closes returns a copy of the close-price column.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		out[i] = bar.Close
	}

	return out
}

// Times returns a copy of the timestamp column.
func (s BarSeries) Times() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, bar := range s.bars {
		out[i] = bar.Time
	}

	return out
}
