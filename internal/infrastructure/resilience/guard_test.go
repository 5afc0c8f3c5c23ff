package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func testConfig() Config {
	return Config{
		Enabled:          true,
		MinRequests:      2,
		FailureRatio:     0.5,
		OpenTimeout:      50 * time.Millisecond,
		HalfOpenMaxCalls: 1,
	}
}

func TestExecuteCallsOperationOnce(t *testing.T) {
	guard := NewGuard(testConfig(), nil)

	attempts := 0
	errUpstream := errors.New("upstream")
	err := guard.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errUpstream
	}, nil)
	if !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	guard := NewGuard(testConfig(), nil)

	errUpstream := errors.New("upstream")
	for i := 0; i < 2; i++ {
		err := guard.Execute(context.Background(), "op", func(context.Context) error {
			return errUpstream
		}, nil)
		if !errors.Is(err, errUpstream) {
			t.Fatalf("expected upstream error on iteration %d, got %v", i, err)
		}
	}

	err := guard.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("IsCircuitOpen should report open breaker")
	}
}

func TestExecuteIgnoresFailuresOutsidePolicy(t *testing.T) {
	guard := NewGuard(testConfig(), nil)

	errRateLimited := errors.New("rate limited")
	ignoreRateLimit := func(err error) bool {
		return !errors.Is(err, errRateLimited)
	}

	for i := 0; i < 5; i++ {
		err := guard.Execute(context.Background(), "op", func(context.Context) error {
			return errRateLimited
		}, ignoreRateLimit)
		if !errors.Is(err, errRateLimited) {
			t.Fatalf("expected rate limit error on iteration %d, got %v", i, err)
		}
	}
}

func TestExecuteBreakerIsPerOperation(t *testing.T) {
	guard := NewGuard(testConfig(), nil)

	for i := 0; i < 2; i++ {
		_ = guard.Execute(context.Background(), "failing", func(context.Context) error {
			return errors.New("boom")
		}, nil)
	}

	called := false
	err := guard.Execute(context.Background(), "healthy", func(context.Context) error {
		called = true
		return nil
	}, nil)
	if err != nil || !called {
		t.Fatalf("expected healthy operation to run, err=%v called=%v", err, called)
	}
}

func TestExecuteDisabledPassesThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	guard := NewGuard(cfg, nil)

	for i := 0; i < 5; i++ {
		calls := 0
		_ = guard.Execute(context.Background(), "op", func(context.Context) error {
			calls++
			return errors.New("boom")
		}, nil)
		if calls != 1 {
			t.Fatalf("iteration %d: expected operation to run, calls=%d", i, calls)
		}
	}
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	guard := NewGuard(testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := guard.Execute(ctx, "op", func(context.Context) error {
		t.Fatalf("operation must not run with a cancelled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
