package datasource

import (
	"strings"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// request is a validated fetch request with its resolved time range.
type request struct {
	symbol   string
	period   types.Period
	interval types.Interval
	start    time.Time
	end      time.Time
}

func newRequest(symbol string, period types.Period, interval types.Interval, now time.Time) (request, error) {
	if strings.TrimSpace(symbol) == "" {
		return request{}, errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	if !interval.Valid() {
		return request{}, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}

	start, err := period.Since(now)
	if err != nil {
		return request{}, err
	}

	return request{
		symbol:   symbol,
		period:   period,
		interval: interval,
		start:    start,
		end:      now,
	}, nil
}

// polygonTimespan converts an interval to a Polygon aggregate multiplier and timespan.
func polygonTimespan(interval types.Interval) (int, models.Timespan, error) {
	switch interval {
	case types.Interval1Hour:
		return 1, models.Hour, nil
	case types.Interval4Hours:
		return 4, models.Hour, nil
	case types.Interval1Day:
		return 1, models.Day, nil
	case types.Interval1Week:
		return 1, models.Week, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval for Polygon: %s", interval)
	}
}

// binanceInterval converts an interval to a Binance kline interval.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(interval types.Interval) (string, error) {
	switch interval {
	case types.Interval1Hour:
		return "1h", nil
	case types.Interval4Hours:
		return "4h", nil
	case types.Interval1Day:
		return "1d", nil
	case types.Interval1Week:
		return "1w", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval for Binance: %s", interval)
	}
}

// polygonTicker maps "BTC-USD" style crypto pairs to Polygon's "X:BTCUSD" form.
// Other symbols pass through upper-cased.
func polygonTicker(symbol string) string {
	upper := strings.ToUpper(symbol)
	if strings.Contains(upper, ":") || !strings.Contains(upper, "-") {
		return upper
	}

	return "X:" + strings.ReplaceAll(upper, "-", "")
}

// binanceSymbol maps "BTC-USD" style pairs to Binance's "BTCUSDT" form.
func binanceSymbol(symbol string) string {
	upper := strings.NewReplacer("-", "", "/", "").Replace(strings.ToUpper(symbol))
	if strings.HasSuffix(upper, "USD") {
		return upper + "T"
	}

	return upper
}

// snapshotName is the file name of a cached snapshot for the request.
func snapshotName(symbol string, period types.Period, interval types.Interval) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, symbol)

	return safe + "_" + string(interval) + "_" + string(period) + ".parquet"
}
