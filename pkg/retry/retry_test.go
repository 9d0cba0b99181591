package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func quickConfig() Config {
	return Config{
		Enabled:      true,
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), quickConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_EventualSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), quickConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("store down")
	calls := 0
	err := Retry(context.Background(), quickConfig(), func() error {
		calls++
		return cause
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("final error should wrap the last cause, got %v", err)
	}
	// MaxAttempts retries on top of the initial call.
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestRetry_Disabled(t *testing.T) {
	cfg := quickConfig()
	cfg.Enabled = false

	calls := 0
	cause := errors.New("nope")
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return cause
	})
	if !errors.Is(err, cause) {
		t.Errorf("disabled retry should return the raw error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestRetry_NonRetryableShortCircuits(t *testing.T) {
	notFound := errors.New("snapshot not found")
	cfg := quickConfig()
	cfg.NonRetryableErrors = []error{notFound}

	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return notFound
	})
	if !errors.Is(err, notFound) {
		t.Errorf("expected the non-retryable error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-retryable errors must not be retried, got %d calls", calls)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	cfg := quickConfig()
	cfg.InitialDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Retry(ctx, cfg, func() error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestBackoffDelay_GrowsAndCaps(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     300 * time.Millisecond,
		Multiplier:   2.0,
	}

	if d := backoffDelay(cfg, 0); d != 100*time.Millisecond {
		t.Errorf("attempt 0: expected 100ms, got %v", d)
	}
	if d := backoffDelay(cfg, 1); d != 200*time.Millisecond {
		t.Errorf("attempt 1: expected 200ms, got %v", d)
	}
	if d := backoffDelay(cfg, 5); d != 300*time.Millisecond {
		t.Errorf("attempt 5: expected cap at 300ms, got %v", d)
	}
}

func TestBackoffDelay_Jitter(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}

	for i := 0; i < 50; i++ {
		d := backoffDelay(cfg, 0)
		if d < 100*time.Millisecond || d > 125*time.Millisecond {
			t.Fatalf("jittered delay out of [100ms, 125ms]: %v", d)
		}
	}
}

func TestRetryWithResult(t *testing.T) {
	calls := 0
	result, err := RetryWithResult(context.Background(), quickConfig(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "layout-snapshot", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "layout-snapshot" {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Enabled {
		t.Error("retry should be enabled by default")
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("expected multiplier 2.0, got %f", cfg.Multiplier)
	}
}
