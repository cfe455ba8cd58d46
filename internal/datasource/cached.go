package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// CachedSource keeps a parquet snapshot per symbol, interval and period in front of another source.
// A snapshot younger than the max age is served without calling the upstream source.
// Empty results are never cached.
type CachedSource struct {
	upstream BarSource
	dir      string
	maxAge   time.Duration
	now      func() time.Time
	log      *logger.Logger
	sq       squirrel.StatementBuilderType
	mu       sync.Mutex
}

// NewCachedSource creates the cache directory if needed.
func NewCachedSource(upstream BarSource, dir string, opts ...Option) (*CachedSource, error) {
	if upstream == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "upstream source is required")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to create cache directory %s", dir)
	}

	o := newOptions(opts)

	return &CachedSource{
		upstream: upstream,
		dir:      dir,
		maxAge:   o.maxAge,
		now:      o.now,
		log:      o.log,
		sq:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Fetch implements BarSource.
func (c *CachedSource) Fetch(ctx context.Context, symbol string, period types.Period, interval types.Interval) (types.BarSeries, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.SnapshotPath(symbol, period, interval)

	if series, ok := c.readFresh(ctx, path, symbol); ok {
		c.log.Debug("Serving bars from cache", zap.String("path", path), zap.Int("bars", series.Len()))

		return series, nil
	}

	series, err := c.upstream.Fetch(ctx, symbol, period, interval)
	if err != nil {
		return types.BarSeries{}, err
	}

	if series.IsEmpty() {
		return series, nil
	}

	if err := WriteParquet(path, series, c.now()); err != nil {
		c.log.Warn("Failed to write cache snapshot", zap.String("path", path), zap.Error(err))
	}

	return series, nil
}

// SnapshotPath returns where the snapshot for the request is stored.
func (c *CachedSource) SnapshotPath(symbol string, period types.Period, interval types.Interval) string {
	return filepath.Join(c.dir, snapshotName(symbol, period, interval))
}

// Invalidate removes the snapshot for the request, if any.
func (c *CachedSource) Invalidate(symbol string, period types.Period, interval types.Interval) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.SnapshotPath(symbol, period, interval))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// readFresh returns the snapshot if it exists and is younger than maxAge.
// Unreadable snapshots count as missing.
func (c *CachedSource) readFresh(ctx context.Context, path string, symbol string) (types.BarSeries, bool) {
	if _, err := os.Stat(path); err != nil {
		return types.BarSeries{}, false
	}

	db, err := openDuckDB()
	if err != nil {
		return types.BarSeries{}, false
	}
	defer db.Close()

	var fetchedAt time.Time

	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT max(fetched_at) FROM read_parquet(%s)", quoteLiteral(path)))
	if err := row.Scan(&fetchedAt); err != nil {
		c.log.Warn("Ignoring unreadable cache snapshot", zap.String("path", path), zap.Error(err))

		return types.BarSeries{}, false
	}

	if age := c.now().Sub(fetchedAt); age < 0 || age >= c.maxAge {
		c.log.Debug("Cache snapshot expired", zap.String("path", path), zap.Duration("age", age))

		return types.BarSeries{}, false
	}

	query, args, err := c.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From(fmt.Sprintf("read_parquet(%s)", quoteLiteral(path))).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return types.BarSeries{}, false
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.BarSeries{}, false
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return types.BarSeries{}, false
	}

	series, err := types.NewBarSeries(symbol, bars)
	if err != nil {
		c.log.Warn("Ignoring invalid cache snapshot", zap.String("path", path), zap.Error(err))

		return types.BarSeries{}, false
	}

	return series, true
}

var _ BarSource = (*CachedSource)(nil)
var _ BarSource = (*ParquetSource)(nil)
