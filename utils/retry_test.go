package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetry(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Logger:      NewTestLogger(),
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := testRetry(3).Do(context.Background(), "flaky-op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do returned %v; want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := testRetry(3).Do(context.Background(), "broken-op", func() error {
		calls++
		return permanent
	})

	if err == nil {
		t.Fatal("Do returned nil; want error after exhausting attempts")
	}
	if !errors.Is(err, permanent) {
		t.Errorf("err = %v; want wrapped %v", err, permanent)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestRetryAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Minute, Logger: NewTestLogger()}
	err := r.Do(ctx, "cancelled-op", func() error {
		calls++
		cancel()
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d; want 1 (no retry after cancellation)", calls)
	}
}
