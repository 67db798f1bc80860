package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ResilientGateway wraps a Gateway with a per-attempt timeout, one retry on
// ErrUnavailable and a circuit breaker. Declines count as successful calls for the
// breaker and are never retried.
type ResilientGateway struct {
	next    Gateway
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*ChargeResult]
	logger  *zap.Logger
}

func NewResilientGateway(next Gateway, timeout time.Duration, logger *zap.Logger) *ResilientGateway {
	g := &ResilientGateway{next: next, timeout: timeout, logger: logger}
	g.breaker = gobreaker.NewCircuitBreaker[*ChargeResult](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDeclined)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return g
}

func (g *ResilientGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	result, err := g.attempt(ctx, req)
	if err == nil || !errors.Is(err, ErrUnavailable) || ctx.Err() != nil {
		return result, err
	}

	g.logger.Warn("retrying charge", zap.String("idempotency_key", req.IdempotencyKey), zap.Error(err))
	return g.attempt(ctx, req)
}

func (g *ResilientGateway) attempt(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	result, err := g.breaker.Execute(func() (*ChargeResult, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.next.Charge(attemptCtx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, err
}
