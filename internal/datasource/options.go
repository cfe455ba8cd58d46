package datasource

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
)

// DefaultCacheMaxAge is how long a cached snapshot stays fresh.
const DefaultCacheMaxAge = 10 * time.Minute

type options struct {
	now    func() time.Time
	log    *logger.Logger
	maxAge time.Duration
}

// Option configures a source.
type Option func(*options)

// WithClock replaces time.Now as the reference for lookback windows and cache freshness.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the logger used by the source.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxAge sets how long a CachedSource snapshot stays fresh.
func WithMaxAge(maxAge time.Duration) Option {
	return func(o *options) {
		o.maxAge = maxAge
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		log:    logger.NewNopLogger(),
		maxAge: DefaultCacheMaxAge,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.log == nil {
		o.log = logger.NewNopLogger()
	}

	return o
}
