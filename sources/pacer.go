package sources

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the polite minimum delay between requests. One Pacer is
// shared by everything that talks to Reddit in a run, so the delay holds
// across subreddit and query boundaries, not just within one.
type Pacer struct {
	limiter *rate.Limiter
}

func NewPacer(minDelay time.Duration) *Pacer {
	if minDelay <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minDelay), 1)}
}

func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
