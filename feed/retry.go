package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/mingli/atrader/market"
)

// RetryPolicy controls how a RetrySource re-attempts transient failures.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the observed fetch behavior: five attempts,
// five seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Delay: 5 * time.Second}
}

// RetrySource wraps a Source with a fixed-delay retry policy. ErrNoData is
// not retried: an empty range is an answer, not a transient failure.
type RetrySource struct {
	Source Source
	Policy RetryPolicy
}

func (r *RetrySource) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	attempts := r.Policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		bars, err := r.Source.Bars(ctx, symbol, start, end)
		if err == nil {
			return bars, nil
		}
		if errors.Is(err, ErrNoData) {
			return nil, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.Policy.Delay):
		}
	}
	return nil, fmt.Errorf("feed: %s failed after %d attempts: %w", symbol, attempts, lastErr)
}

// RateLimitedSource throttles requests to an upstream provider. One limiter
// is shared across all symbols fetched through it.
type RateLimitedSource struct {
	Source  Source
	Limiter *rate.Limiter
}

// NewRateLimited allows `rps` requests per second with a burst of one.
func NewRateLimited(src Source, rps float64) *RateLimitedSource {
	return &RateLimitedSource{
		Source:  src,
		Limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (r *RateLimitedSource) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.Source.Bars(ctx, symbol, start, end)
}
