package rate

import (
	"context"
	"testing"
	"time"
)

func TestWaitFirstTokenIsImmediate(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	defer tb.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait should not block: %v", err)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	defer tb.Stop()

	ctx := context.Background()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := tb.Wait(canceled); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestStopTerminatesRefill(t *testing.T) {
	tb := NewTokenBucket(100, 4)
	done := make(chan struct{})
	go func() {
		tb.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop did not return")
	}
}
