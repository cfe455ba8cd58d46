package events

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// EventType identifies a backtest lifecycle event.
type EventType string

const (
	EventTypeStarted   EventType = "started"
	EventTypeCompleted EventType = "completed"
	EventTypeFailed    EventType = "failed"
)

// RunInfo describes the run an event belongs to.
type RunInfo struct {
	Symbol     string         `json:"symbol" yaml:"symbol"`
	Period     types.Period   `json:"period" yaml:"period"`
	Interval   types.Interval `json:"interval" yaml:"interval"`
	Strategies []string       `json:"strategies" yaml:"strategies"`
}

// ResultSummary is the scalar outcome of a completed run.
type ResultSummary struct {
	Bars             int     `json:"bars" yaml:"bars"`
	TotalReturn      float64 `json:"total_return" yaml:"total_return"`
	BuyAndHoldReturn float64 `json:"buy_and_hold_return" yaml:"buy_and_hold_return"`
	MaxDrawdown      float64 `json:"max_drawdown" yaml:"max_drawdown"`
	SharpeRatio      float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
}

// Event is published on every run transition.
// Summary is only set for completed runs, Reason and Code only for failed runs.
type Event struct {
	Type    EventType
	RunID   string
	Time    time.Time
	Run     RunInfo
	Summary optional.Option[ResultSummary]
	Reason  string
	Code    errors.ErrorCode
}

// NewStartedEvent creates the event published before any data is fetched.
func NewStartedEvent(runID string, at time.Time, run RunInfo) Event {
	return Event{
		Type:    EventTypeStarted,
		RunID:   runID,
		Time:    at,
		Run:     run,
		Summary: optional.None[ResultSummary](),
	}
}

// NewCompletedEvent creates the event published after a successful run.
func NewCompletedEvent(runID string, at time.Time, run RunInfo, summary ResultSummary) Event {
	return Event{
		Type:    EventTypeCompleted,
		RunID:   runID,
		Time:    at,
		Run:     run,
		Summary: optional.Some(summary),
	}
}

// NewFailedEvent creates the event published when a run aborts with err.
func NewFailedEvent(runID string, at time.Time, run RunInfo, err error) Event {
	event := Event{
		Type:    EventTypeFailed,
		RunID:   runID,
		Time:    at,
		Run:     run,
		Summary: optional.None[ResultSummary](),
		Code:    errors.ErrCodeUnknown,
	}

	if err != nil {
		event.Reason = err.Error()
		event.Code = errors.GetCode(err)
	}

	return event
}
