package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// ParquetSource serves bars from local parquet files through DuckDB.
// The files need time, symbol, open, high, low, close and volume columns.
// Bars are resampled to the requested interval with time_bucket.
type ParquetSource struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
	now func() time.Time
}

// NewParquetSource creates a view over the parquet file or glob at path.
func NewParquetSource(path string, opts ...Option) (*ParquetSource, error) {
	o := newOptions(opts)

	db, err := openDuckDB()
	if err != nil {
		return nil, err
	}

	// Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_parquet(%s);`, quoteLiteral(path))

	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to load parquet data from %s", path)
	}

	o.log.Debug("Parquet source initialized", zap.String("path", path))

	return &ParquetSource{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log: o.log,
		now: o.now,
	}, nil
}

// Fetch implements BarSource.
func (p *ParquetSource) Fetch(ctx context.Context, symbol string, period types.Period, interval types.Interval) (types.BarSeries, error) {
	req, err := newRequest(symbol, period, interval, p.now())
	if err != nil {
		return types.BarSeries{}, err
	}

	query, args, err := p.buildQuery(req)
	if err != nil {
		return types.BarSeries{}, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.BarSeries{}, errors.Wrap(errors.ErrCodeDataUnavailable, "failed to query market data",
			errors.Wrap(errors.ErrCodeQueryFailed, query, err))
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return types.BarSeries{}, errors.Wrap(errors.ErrCodeDataUnavailable, "failed to read market data", err)
	}

	p.log.Debug("Fetched bars from parquet",
		zap.String("symbol", symbol),
		zap.String("interval", string(interval)),
		zap.Int("bars", len(bars)),
	)

	series, err := types.NewBarSeries(symbol, bars)
	if err != nil {
		return types.BarSeries{}, errors.Wrap(errors.ErrCodeDataUnavailable, "parquet data is not a valid bar series", err)
	}

	return series, nil
}

// buildQuery aggregates the raw rows of req.symbol into interval buckets.
func (p *ParquetSource) buildQuery(req request) (string, []interface{}, error) {
	step, err := req.interval.Duration()
	if err != nil {
		return "", nil, err
	}

	bucket := fmt.Sprintf("time_bucket(INTERVAL '%d minutes', time)", int(step/time.Minute))

	query, args, err := p.sq.
		Select(
			bucket+" AS bucket_time",
			"arg_min(open, time) AS open",
			"max(high) AS high",
			"min(low) AS low",
			"arg_max(close, time) AS close",
			"sum(volume) AS volume",
		).
		From("market_data").
		Where(squirrel.And{
			squirrel.Eq{"symbol": req.symbol},
			squirrel.GtOrEq{"time": req.start},
			squirrel.LtOrEq{"time": req.end},
		}).
		GroupBy("bucket_time").
		OrderBy("bucket_time ASC").
		ToSql()
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	return query, args, nil
}

// Close releases the DuckDB connection.
func (p *ParquetSource) Close() error {
	return p.db.Close()
}
