package datasource

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// PolygonAggsIterator is the subset of the Polygon aggregates iterator used by PolygonSource.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the Polygon REST client used by PolygonSource.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonSource downloads aggregates from Polygon.io.
type PolygonSource struct {
	apiClient PolygonAPIClient
	now       func() time.Time
	log       *logger.Logger
}

// NewPolygonSource creates a Polygon source with the given API key.
func NewPolygonSource(apiKey string, opts ...Option) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "polygon apiKey is required")
	}

	return NewPolygonSourceWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}, opts...), nil
}

// NewPolygonSourceWithAPI creates a Polygon source backed by apiClient.
func NewPolygonSourceWithAPI(apiClient PolygonAPIClient, opts ...Option) *PolygonSource {
	o := newOptions(opts)

	return &PolygonSource{
		apiClient: apiClient,
		now:       o.now,
		log:       o.log,
	}
}

// Fetch implements BarSource.
func (s *PolygonSource) Fetch(ctx context.Context, symbol string, period types.Period, interval types.Interval) (types.BarSeries, error) {
	req, err := newRequest(symbol, period, interval, s.now())
	if err != nil {
		return types.BarSeries{}, err
	}

	multiplier, timespan, err := polygonTimespan(interval)
	if err != nil {
		return types.BarSeries{}, err
	}

	ticker := polygonTicker(symbol)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(req.start),
		To:         models.Millis(req.end),
	}.WithLimit(50000)

	iter := s.apiClient.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return types.BarSeries{}, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to download %s aggregates from Polygon", ticker)
	}

	s.log.Debug("Downloaded Polygon aggregates",
		zap.String("ticker", ticker),
		zap.Int("bars", len(bars)),
	)

	series, err := types.NewBarSeries(symbol, bars)
	if err != nil {
		return types.BarSeries{}, errors.Wrap(errors.ErrCodeDataUnavailable, "polygon returned an invalid bar series", err)
	}

	return series, nil
}
