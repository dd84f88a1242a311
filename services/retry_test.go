package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fastRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
}

func TestWithRetry_SuccessFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("WithRetry() error = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_TransientThenSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		calls++
		if calls < 3 {
			return NewTransientError("flaky", nil)
		}
		return nil
	})

	if err != nil {
		t.Errorf("WithRetry() error = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_NotRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		calls++
		return ErrSymbolNotFound
	})

	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("WithRetry() error = %v, want ErrSymbolNotFound", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for definitive answers)", calls)
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	calls := 0
	transient := NewTransientError("still down", nil)
	err := WithRetry(context.Background(), fastRetryConfig, func() error {
		calls++
		return transient
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, transient) {
		t.Errorf("WithRetry() should wrap the last error, got %v", err)
	}
	if calls != fastRetryConfig.MaxRetries+1 {
		t.Errorf("calls = %d, want %d", calls, fastRetryConfig.MaxRetries+1)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, fastRetryConfig, func() error {
		calls++
		cancel()
		return NewTransientError("flaky", nil)
	})

	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithRetry() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
