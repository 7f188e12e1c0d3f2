package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastRetry keeps backoff negligible so retry tests run quickly.
var fastRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
	BackoffFactor:  2.0,
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), fastRetry, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want ok", result)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryRecoversAfterTransientFailure(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), fastRetry, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &ServiceError{Provider: "flights", Kind: KindTransient, Message: "upstream flake"}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := &ServiceError{Provider: "hotels", Kind: KindTransient, Message: "still down"}
	_, err := withRetry(context.Background(), fastRetry, func(ctx context.Context) (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want last attempt's error", err)
	}
	if calls != fastRetry.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, fastRetry.MaxAttempts)
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", &ServiceError{Provider: "flights", Kind: KindAuth}},
		{"quota", &ServiceError{Provider: "flights", Kind: KindQuota}},
		{"no results", ErrNoResults},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := withRetry(context.Background(), fastRetry, func(ctx context.Context) (int, error) {
				calls++
				return 0, tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", calls)
			}
		})
	}
}

func TestWithRetryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := withRetry(ctx, fastRetry, func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 (canceled before first attempt)", calls)
	}
}

func TestWithRetryCancelDuringBackoff(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Minute,
		MaxBackoff:     time.Minute,
		BackoffFactor:  2.0,
	}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := withRetry(ctx, cfg, func(ctx context.Context) (int, error) {
			calls++
			return 0, &ServiceError{Kind: KindTransient}
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("withRetry did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (canceled during first backoff)", calls)
	}
}

func TestWithRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), RetryConfig{}, func(ctx context.Context) (string, error) {
		calls++
		return "once", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "once" || calls != 1 {
		t.Errorf("result = %q, calls = %d, want once/1", result, calls)
	}
}

func TestJittered(t *testing.T) {
	t.Run("zero jitter returns base", func(t *testing.T) {
		if got := jittered(time.Second, 0); got != time.Second {
			t.Errorf("jittered = %v, want 1s", got)
		}
	})

	t.Run("stays within bounds", func(t *testing.T) {
		base := time.Second
		lo := time.Duration(float64(base) * 0.5)
		hi := time.Duration(float64(base) * 1.5)
		for i := 0; i < 100; i++ {
			got := jittered(base, 0.5)
			if got < lo || got > hi {
				t.Fatalf("jittered = %v, want within [%v, %v]", got, lo, hi)
			}
		}
	})
}
