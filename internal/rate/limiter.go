package rate

import (
	"context"
	"fmt"
	"time"
)

// Limiter gates outbound API calls so we respect Gmail per-user quotas.
// Every mutating call in this tool is a quota unit, so the mailbox adapters
// wait before each request.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TokenBucket implements a fixed-rate token bucket limiter with a small
// burst allowance.
type TokenBucket struct {
	ticker *time.Ticker
	tokens chan struct{}
	quit   chan struct{}
	done   chan struct{}
}

// NewTokenBucket returns a limiter releasing rps tokens per second. burst
// caps how many unused tokens accumulate; values below 1 mean no burst.
func NewTokenBucket(rps, burst int) *TokenBucket {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	tb := &TokenBucket{
		ticker: time.NewTicker(time.Second / time.Duration(rps)),
		tokens: make(chan struct{}, burst),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	// allow the first call to proceed immediately
	tb.tokens <- struct{}{}
	go tb.refill()
	return tb
}

func (t *TokenBucket) refill() {
	defer close(t.done)
	for {
		select {
		case <-t.quit:
			return
		case <-t.ticker.C:
			select {
			case t.tokens <- struct{}{}:
			default: // bucket full, drop the token
			}
		}
	}
}

// Wait blocks until a token is available or the context is canceled.
func (t *TokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate wait canceled: %w", ctx.Err())
	case <-t.tokens:
		return nil
	}
}

// Stop releases resources held by the limiter.
func (t *TokenBucket) Stop() {
	t.ticker.Stop()
	close(t.quit)
	<-t.done
}

var _ Limiter = (*TokenBucket)(nil)
