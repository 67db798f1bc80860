// Package payments charges customers through a card gateway.
package payments

import (
	"context"
	"errors"
)

var (
	// ErrDeclined means the gateway refused the card. Retrying will not help.
	ErrDeclined = errors.New("payment declined")
	// ErrUnavailable means the gateway could not be reached or failed on its side.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// ChargeRequest describes one card charge. Amount is in minor units (cents).
type ChargeRequest struct {
	Amount         int64
	Currency       string
	Email          string
	Token          string
	Description    string
	IdempotencyKey string
}

// ChargeResult is what the gateway reports for a successful charge.
type ChargeResult struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Gateway charges a card.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
