// Package backtest runs configured strategies over market data and evaluates the outcome.
package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/events"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/performance"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// Runner executes one backtest for a config.
type Runner interface {
	Run(ctx context.Context, config RunConfig) (*Result, error)
}

// Engine is the backtest orchestrator. It holds no per-run state and may run concurrently.
type Engine struct {
	source datasource.BarSource
	log    *logger.Logger
	bus    *events.Bus
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithBus sets the bus lifecycle events are published to.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithClock overrides the time source used for event and result timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine reading bars from source.
func NewEngine(source datasource.BarSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		log:    logger.NewNopLogger(),
		bus:    nil,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.bus == nil {
		e.bus = events.NewBus(e.log)
	}

	return e
}

// Bus returns the bus the engine publishes to.
func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Run executes a backtest: validate config, build strategies, fetch bars, combine signals and evaluate.
// Config and strategy errors are reported before the data source is touched.
func (e *Engine) Run(ctx context.Context, config RunConfig) (*Result, error) {
	runID := uuid.NewString()

	strategies, setupErr := e.setup(config)
	info := config.runInfo(strategies)

	e.bus.Publish(events.NewStartedEvent(runID, e.now(), info))
	e.log.Debug("Running backtest",
		zap.String("run_id", runID),
		zap.String("symbol", config.Symbol),
		zap.String("period", string(config.Period)),
		zap.String("interval", string(config.Interval)),
	)

	if setupErr != nil {
		return nil, e.fail(runID, info, setupErr)
	}

	result, err := e.run(ctx, runID, config, strategies)
	if err != nil {
		return nil, e.fail(runID, info, err)
	}

	e.bus.Publish(events.NewCompletedEvent(runID, e.now(), info, result.eventSummary()))
	e.log.Debug("Backtest run finished",
		zap.String("run_id", runID),
		zap.String("symbol", config.Symbol),
		zap.Int("bars", result.bars.Len()),
		zap.Float64("total_return", result.TotalReturn()),
		zap.Float64("sharpe_ratio", result.SharpeRatio()),
	)

	return result, nil
}

func (e *Engine) setup(config RunConfig) ([]strategy.Strategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config.BuildStrategies()
}

func (e *Engine) run(ctx context.Context, runID string, config RunConfig, strategies []strategy.Strategy) (*Result, error) {
	if e.source == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "no data source configured")
	}

	combined, err := strategy.NewCombinedStrategy(strategies...)
	if err != nil {
		return nil, err
	}

	series, err := e.source.Fetch(ctx, config.Symbol, config.Period, config.Interval)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch %s %s/%s", config.Symbol, config.Period, config.Interval)
	}

	if series.IsEmpty() {
		return nil, errors.Newf(errors.ErrCodeNoData, "no data returned for %s %s/%s", config.Symbol, config.Period, config.Interval)
	}

	e.log.Debug("Fetched bars", zap.String("symbol", config.Symbol), zap.Int("bars", series.Len()))

	positions, perStrategy, err := combined.Combine(series)
	if err != nil {
		return nil, err
	}

	evaluation, err := performance.Evaluate(series, positions, config.Interval)
	if err != nil {
		return nil, err
	}

	columns := make([]StrategyColumn, len(strategies))
	for i, s := range strategies {
		columns[i] = StrategyColumn{
			Name:      s.Name(),
			Signals:   perStrategy[i],
			Indicator: nil,
		}

		if withIndicator, ok := s.(strategy.IndicatorStrategy); ok {
			values, err := withIndicator.IndicatorValues(series)
			if err != nil {
				return nil, err
			}

			columns[i].Indicator = values
		}
	}

	return &Result{
		id:         runID,
		config:     config,
		createdAt:  e.now(),
		bars:       series,
		strategies: columns,
		positions:  positions,
		evaluation: evaluation,
	}, nil
}

func (e *Engine) fail(runID string, info events.RunInfo, err error) error {
	e.bus.Publish(events.NewFailedEvent(runID, e.now(), info, err))
	e.log.Debug("Backtest run aborted",
		zap.String("run_id", runID),
		zap.String("symbol", info.Symbol),
		zap.String("code", errors.GetCode(err).String()),
		zap.Error(err),
	)

	return err
}

var _ Runner = (*Engine)(nil)
