package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultStripeTimeout = 10 * time.Second

// StripeGateway talks to a Stripe compatible REST API: it creates a customer from the
// card token and charges that customer.
type StripeGateway struct {
	baseURL   string
	secretKey string
}

func NewStripeGateway(baseURL, secretKey string) *StripeGateway {
	return &StripeGateway{baseURL: baseURL, secretKey: secretKey}
}

type stripeCustomer struct {
	ID string `json:"id"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	customerArgs := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(customerArgs)
	customerArgs.Set("email", req.Email)
	customerArgs.Set("source", req.Token)

	// A retried charge must not leave a second customer behind.
	customerKey := ""
	if req.IdempotencyKey != "" {
		customerKey = req.IdempotencyKey + "-customer"
	}

	var customer stripeCustomer
	if err := g.post(ctx, "/v1/customers", customerArgs, customerKey, &customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	chargeArgs := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(chargeArgs)
	chargeArgs.Set("amount", strconv.FormatInt(req.Amount, 10))
	chargeArgs.Set("currency", req.Currency)
	chargeArgs.Set("customer", customer.ID)
	chargeArgs.Set("description", req.Description)

	var result ChargeResult
	if err := g.post(ctx, "/v1/charges", chargeArgs, req.IdempotencyKey, &result); err != nil {
		return nil, fmt.Errorf("failed to charge customer %s: %w", customer.ID, err)
	}
	return &result, nil
}

func (g *StripeGateway) post(ctx context.Context, path string, args *fiber.Args, idempotencyKey string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	agent := fiber.Post(g.baseURL + path)
	agent.BasicAuth(g.secretKey, "")
	agent.Form(args)
	agent.Timeout(timeoutFrom(ctx))
	if idempotencyKey != "" {
		agent.Set("Idempotency-Key", idempotencyKey)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
	}

	switch {
	case code == fiber.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", decodeStripeMessage(body), ErrDeclined)
	case code >= 500 || code == fiber.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	case code >= 400:
		return fmt.Errorf("gateway rejected request with status %d: %s", code, decodeStripeMessage(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func timeoutFrom(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return defaultStripeTimeout
}

func decodeStripeMessage(body []byte) string {
	var se stripeError
	if err := json.Unmarshal(body, &se); err != nil || se.Error.Message == "" {
		return string(body)
	}
	return se.Error.Message
}
