package handlers

import (
	"errors"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Redirect hints sent with errors, naming the screen the client should fall back to.
const (
	redirectHome     = "/api/v1/products"
	redirectLogin    = "/api/v1/auth/login"
	redirectRegister = "/api/v1/auth/register"
	redirectCart     = "/api/v1/cart"
	redirectOrders   = "/api/v1/orders"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrBrandNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, models.ErrLineItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidLineItem):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyPaid):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, payments.ErrDeclined):
		return fiber.StatusPaymentRequired
	case errors.Is(err, payments.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, status int, message string, err error, redirect string) error {
	body := fiber.Map{
		"message":  message,
		"redirect": redirect,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// serviceError answers with the status of err. Internal errors are not echoed.
func serviceError(c *fiber.Ctx, message string, err error, redirect string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		return errorResponse(c, status, message, nil, redirect)
	}
	return errorResponse(c, status, message, err, redirect)
}

func badBody(c *fiber.Ctx, err error, redirect string) error {
	return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err, redirect)
}

func validationFailed(c *fiber.Ctx, err error, redirect string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message":  "Validation failed",
		"errors":   validation.Messages(err),
		"redirect": redirect,
	})
}

func pageParam(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return 1
	}
	return page
}
