package events

import (
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"go.uber.org/zap"
)

// LogObserver writes every event as a structured log line.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver creates a LogObserver writing to log.
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Update implements Observer.
func (o *LogObserver) Update(event Event) error {
	fields := []zap.Field{
		zap.String("run_id", event.RunID),
		zap.String("symbol", event.Run.Symbol),
		zap.String("period", string(event.Run.Period)),
		zap.String("interval", string(event.Run.Interval)),
		zap.Strings("strategies", event.Run.Strategies),
	}

	switch event.Type {
	case EventTypeStarted:
		o.log.Info("Backtest started", fields...)
	case EventTypeCompleted:
		if event.Summary.IsSome() {
			summary := event.Summary.Unwrap()
			fields = append(fields,
				zap.Int("bars", summary.Bars),
				zap.Float64("total_return", summary.TotalReturn),
				zap.Float64("buy_and_hold_return", summary.BuyAndHoldReturn),
				zap.Float64("max_drawdown", summary.MaxDrawdown),
				zap.Float64("sharpe_ratio", summary.SharpeRatio),
			)
		}

		o.log.Info("Backtest completed", fields...)
	case EventTypeFailed:
		fields = append(fields,
			zap.String("reason", event.Reason),
			zap.String("code", event.Code.String()),
		)
		o.log.Error("Backtest failed", fields...)
	default:
		o.log.Debug("Unknown backtest event", append(fields, zap.String("type", string(event.Type)))...)
	}

	return nil
}
