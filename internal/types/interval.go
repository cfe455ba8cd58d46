package types

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Period is the lookback window requested from a data source.
type Period string

const (
	Period1Month  Period = "1mo"
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period2Years  Period = "2y"
	Period5Years  Period = "5y"
)

// AllPeriods lists every supported period, shortest first.
var AllPeriods = []Period{Period1Month, Period3Months, Period6Months, Period1Year, Period2Years, Period5Years}

// Valid reports whether p is a supported period.
func (p Period) Valid() bool {
	for _, candidate := range AllPeriods {
		if p == candidate {
			return true
		}
	}

	return false
}

// Since returns the start of the lookback window ending at now.
func (p Period) Since(now time.Time) (time.Time, error) {
	switch p {
	case Period1Month:
		return now.AddDate(0, -1, 0), nil
	case Period3Months:
		return now.AddDate(0, -3, 0), nil
	case Period6Months:
		return now.AddDate(0, -6, 0), nil
	case Period1Year:
		return now.AddDate(-1, 0, 0), nil
	case Period2Years:
		return now.AddDate(-2, 0, 0), nil
	case Period5Years:
		return now.AddDate(-5, 0, 0), nil
	default:
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported period: %q", p)
	}
}

// Interval is the sampling interval of a bar series.
type Interval string

const (
	Interval1Hour  Interval = "1h"
	Interval4Hours Interval = "4h"
	Interval1Day   Interval = "1d"
	Interval1Week  Interval = "1wk"
)

// AllIntervals lists every supported interval, shortest first.
var AllIntervals = []Interval{Interval1Hour, Interval4Hours, Interval1Day, Interval1Week}

// Valid reports whether i is a supported interval.
func (i Interval) Valid() bool {
	for _, candidate := range AllIntervals {
		if i == candidate {
			return true
		}
	}

	return false
}

// Duration returns the nominal length of one bar.
func (i Interval) Duration() (time.Duration, error) {
	switch i {
	case Interval1Hour:
		return time.Hour, nil
	case Interval4Hours:
		return 4 * time.Hour, nil
	case Interval1Day:
		return 24 * time.Hour, nil
	case Interval1Week:
		return 7 * 24 * time.Hour, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval: %q", i)
	}
}

// IsDaily reports whether bars are sampled once per trading day.
func (i Interval) IsDaily() bool {
	return i == Interval1Day
}
