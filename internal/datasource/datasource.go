// Package datasource provides the bar sources a backtest can fetch from.
//
// Every source implements BarSource. ParquetSource reads local parquet files through DuckDB,
// PolygonSource and BinanceSource download from market data providers, and CachedSource keeps a
// freshness-bounded parquet snapshot in front of any other source.
package datasource

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// BarSource fetches the bars of one symbol over a lookback period at a given interval.
// An empty series is a valid result. Retrieval failures are reported with
// errors.ErrCodeDataUnavailable.
type BarSource interface {
	Fetch(ctx context.Context, symbol string, period types.Period, interval types.Interval) (types.BarSeries, error)
}
