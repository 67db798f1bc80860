package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DeclinedToken is the card token FakeGateway always declines.
const DeclinedToken = "tok_chargeDeclined"

// FakeGateway accepts every token except DeclinedToken and records what it charged.
type FakeGateway struct {
	mu      sync.Mutex
	charges []ChargeRequest
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if req.Token == DeclinedToken {
		return nil, fmt.Errorf("card %s: %w", req.Token, ErrDeclined)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges = append(g.charges, req)
	return &ChargeResult{
		ID:       "ch_" + uuid.NewString(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Status:   "succeeded",
	}, nil
}

// Charges returns a copy of every successful charge so far.
func (g *FakeGateway) Charges() []ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ChargeRequest(nil), g.charges...)
}
