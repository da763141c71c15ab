package agentloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolDeliversResult(t *testing.T) {
	pool := NewWorkerPool(2)

	res := <-pool.Submit(context.Background(), func(_ context.Context) (any, error) {
		return "value", nil
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Value != "value" {
		t.Errorf("unexpected value %v", res.Value)
	}
}

func TestWorkerPoolDeliversError(t *testing.T) {
	pool := NewWorkerPool(2)

	res := <-pool.Submit(context.Background(), func(_ context.Context) (any, error) {
		return nil, errors.New("broken")
	})
	if res.Err == nil || res.Err.Error() != "broken" {
		t.Errorf("expected broken error, got %v", res.Err)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	pool := NewWorkerPool(2)

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		ch := pool.Submit(context.Background(), func(_ context.Context) (any, error) {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
			return nil, nil
		})
		go func() {
			defer wg.Done()
			<-ch
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > 2 {
		t.Errorf("pool allowed %d concurrent calls, limit is 2", p)
	}
}

func TestWorkerPoolCancelledBeforeSlot(t *testing.T) {
	pool := NewWorkerPool(1)

	release := make(chan struct{})
	pool.Submit(context.Background(), func(_ context.Context) (any, error) {
		<-release
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := <-pool.Submit(ctx, func(_ context.Context) (any, error) {
		t.Error("fn ran despite cancelled context")
		return nil, nil
	})
	close(release)

	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
}
