package datasource

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// binancePageSize is the number of klines Binance returns per request by default.
const binancePageSize = 500

// BinanceKlinesService is the subset of the Binance klines service used by BinanceSource.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the Binance client used by BinanceSource.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service = w.service.Interval(interval)
	return w
}

func (w *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service = w.service.StartTime(startTime)
	return w
}

func (w *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service = w.service.EndTime(endTime)
	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceSource downloads klines from the public Binance API.
type BinanceSource struct {
	apiClient BinanceAPIClient
	now       func() time.Time
	log       *logger.Logger
}

// NewBinanceSource creates a Binance source. Public market data needs no credentials.
func NewBinanceSource(opts ...Option) *BinanceSource {
	return NewBinanceSourceWithAPI(&binanceClientWrapper{client: binance.NewClient("", "")}, opts...)
}

// NewBinanceSourceWithAPI creates a Binance source backed by apiClient.
func NewBinanceSourceWithAPI(apiClient BinanceAPIClient, opts ...Option) *BinanceSource {
	o := newOptions(opts)

	return &BinanceSource{
		apiClient: apiClient,
		now:       o.now,
		log:       o.log,
	}
}

// Fetch implements BarSource. Klines are paged by close time until the window is covered.
func (s *BinanceSource) Fetch(ctx context.Context, symbol string, period types.Period, interval types.Interval) (types.BarSeries, error) {
	req, err := newRequest(symbol, period, interval, s.now())
	if err != nil {
		return types.BarSeries{}, err
	}

	klineInterval, err := binanceInterval(interval)
	if err != nil {
		return types.BarSeries{}, err
	}

	pair := binanceSymbol(symbol)
	endTimeMillis := req.end.UnixMilli()
	currentStartTime := req.start.UnixMilli()

	var bars []types.Bar

	for {
		klines, err := s.apiClient.NewKlinesService().
			Symbol(pair).
			Interval(klineInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return types.BarSeries{}, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch %s klines from Binance", pair)
		}

		page, err := klinesToBars(klines)
		if err != nil {
			return types.BarSeries{}, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "invalid %s kline from Binance", pair)
		}

		bars = append(bars, page...)

		if len(klines) < binancePageSize {
			break
		}

		// close time + 1ms avoids duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	s.log.Debug("Downloaded Binance klines",
		zap.String("pair", pair),
		zap.Int("bars", len(bars)),
	)

	series, err := types.NewBarSeries(symbol, bars)
	if err != nil {
		return types.BarSeries{}, errors.Wrap(errors.ErrCodeDataUnavailable, "binance returned an invalid bar series", err)
	}

	return series, nil
}

// klinesToBars converts Binance klines, stamped with their open time.
func klinesToBars(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, err
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
