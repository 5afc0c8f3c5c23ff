package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// FailurePolicy reports whether err should count against the breaker.
type FailurePolicy func(err error) bool

// Guard runs upstream calls behind per-operation circuit breakers. It never
// retries: a failed call is returned to the caller as is.
type Guard struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewGuard(cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		cfg:      cfg.normalize(),
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (g *Guard) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	policy FailurePolicy,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if policy == nil {
		policy = countAll
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !g.cfg.Enabled {
		return fn(ctx)
	}

	breaker := g.circuitBreaker(op, policy)
	_, err := breaker.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (g *Guard) circuitBreaker(operation string, policy FailurePolicy) *gobreaker.CircuitBreaker[any] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if breaker, ok := g.breakers[operation]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        operation,
		MaxRequests: g.cfg.HalfOpenMaxCalls,
		Timeout:     g.cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= g.cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !policy(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			g.logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}

	breaker := gobreaker.NewCircuitBreaker[any](settings)
	g.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func countAll(error) bool {
	return true
}
