package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttled spaces out requests made through another Fetcher.
type Throttled struct {
	next    Fetcher
	limiter *rate.Limiter
}

// NewThrottled wraps next with a limit of perSecond requests. A non-positive
// rate returns next unchanged.
func NewThrottled(next Fetcher, perSecond float64) Fetcher {
	if perSecond <= 0 {
		return next
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Fetch waits for a request slot, then delegates.
func (t *Throttled) Fetch(ctx context.Context, url string, wait time.Duration) (*Page, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &Error{URL: url, Message: "rate limiter wait failed", Cause: err}
	}
	return t.next.Fetch(ctx, url, wait)
}
