package backtest

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedRunner memoizes successful results per RunConfig.
// Concurrent runs of an identical config share one underlying run. Failures are not cached.
type CachedRunner struct {
	runner  Runner
	mu      sync.RWMutex
	results map[RunConfig]*Result
	group   singleflight.Group
}

// NewCachedRunner wraps runner with a result cache.
func NewCachedRunner(runner Runner) *CachedRunner {
	return &CachedRunner{
		runner:  runner,
		results: make(map[RunConfig]*Result),
	}
}

// Run returns the cached result for config or runs it.
// The shared run is detached from the caller's cancellation; a cancelled caller stops waiting
// with ctx.Err() while the other callers of the same config still receive the result.
func (c *CachedRunner) Run(ctx context.Context, config RunConfig) (*Result, error) {
	if result, ok := c.lookup(config); ok {
		return result, nil
	}

	shared := context.WithoutCancel(ctx)

	ch := c.group.DoChan(cacheKey(config), func() (any, error) {
		if result, ok := c.lookup(config); ok {
			return result, nil
		}

		result, err := c.runner.Run(shared, config)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.results[config] = result
		c.mu.Unlock()

		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*Result), nil
	}
}

// Forget drops the cached result for config.
func (c *CachedRunner) Forget(config RunConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.results, config)
}

// Clear drops every cached result.
func (c *CachedRunner) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = make(map[RunConfig]*Result)
}

// Len returns the number of cached results.
func (c *CachedRunner) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.results)
}

func (c *CachedRunner) lookup(config RunConfig) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.results[config]

	return result, ok
}

func cacheKey(config RunConfig) string {
	return fmt.Sprintf("%#v", config)
}

var _ Runner = (*CachedRunner)(nil)
