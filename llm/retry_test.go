package llm

import (
	"context"
	"testing"
	"time"
)

func TestRetryPolicyDelay(t *testing.T) {
	policy := RetryPolicy{
		BaseDelay:         1.0,
		BackoffMultiplier: 2.0,
		MaxDelay:          60.0,
		Jitter:            false,
	}

	delays := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
	}
	for i, expected := range delays {
		if got := policy.Delay(i); got != expected {
			t.Errorf("attempt %d: expected %v, got %v", i, expected, got)
		}
	}
}

func TestRetryPolicyDelayCapped(t *testing.T) {
	policy := RetryPolicy{
		BaseDelay:         1.0,
		BackoffMultiplier: 2.0,
		MaxDelay:          5.0,
		Jitter:            false,
	}

	if got := policy.Delay(10); got != 5*time.Second {
		t.Errorf("expected 5s cap, got %v", got)
	}
}

func TestRetryPolicyDelayJitter(t *testing.T) {
	policy := RetryPolicy{
		BaseDelay:         1.0,
		BackoffMultiplier: 2.0,
		MaxDelay:          60.0,
		Jitter:            true,
	}

	for i := 0; i < 100; i++ {
		got := policy.Delay(0)
		if got < 500*time.Millisecond || got > 1500*time.Millisecond {
			t.Errorf("jittered delay out of range: %v", got)
		}
	}
}

func TestRetryEventualSuccess(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 0.001, BackoffMultiplier: 1, MaxDelay: 0.001}

	calls := 0
	result, err := retry(context.Background(), policy, func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &ServerError{BackendError{Message: "server error"}}
		}
		return "success", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("unexpected result %q", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: 0.001, BackoffMultiplier: 1, MaxDelay: 0.001}

	calls := 0
	_, err := retry(context.Background(), policy, func(_ context.Context) (string, error) {
		calls++
		return "", &AuthenticationError{BackendError{Message: "invalid key"}}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("non-retryable error retried %d times", calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, BaseDelay: 0.001, BackoffMultiplier: 1, MaxDelay: 0.001}

	calls := 0
	_, err := retry(context.Background(), policy, func(_ context.Context) (string, error) {
		calls++
		return "", &ServerError{BackendError{Message: "still down"}}
	})
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected initial call plus 2 retries, got %d calls", calls)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, BaseDelay: 10, BackoffMultiplier: 1, MaxDelay: 10}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := retry(ctx, policy, func(_ context.Context) (string, error) {
		return "", &ServerError{BackendError{Message: "server error"}}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("retry ignored context cancellation, took %v", elapsed)
	}
}
