package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler captures card payments for placed orders.
type PaymentHandler struct {
	service        *services.PaymentService
	publishableKey string
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, publishableKey string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:        service,
		publishableKey: publishableKey,
		validate:       validation.New(),
		logger:         logger,
	}
}

// RegisterRoutes registers the payment routes. Charging goes through authRequired.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	paymentRoutes := router.Group("/payment")
	paymentRoutes.Get("/config", h.HandleConfig)
	paymentRoutes.Post("/", authRequired, h.HandlePay)
}

// HandleConfig returns the key the payment form tokenizes cards with.
func (h *PaymentHandler) HandleConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"publishable_key": h.publishableKey,
	})
}

// PaymentRequest is the payment form: the invoice to pay and the card token.
type PaymentRequest struct {
	Invoice string `json:"invoice" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Token   string `json:"token" validate:"required"`
}

func (h *PaymentHandler) HandlePay(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectOrders)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectOrders)
	}

	receipt, err := h.service.Pay(c.UserContext(), services.PaymentRequest{
		Invoice:    req.Invoice,
		CustomerID: middleware.UserID(c),
		Email:      req.Email,
		Token:      req.Token,
	})
	if err != nil {
		h.logger.Warn("payment failed", zap.String("invoice", req.Invoice), zap.Error(err))
		return serviceError(c, "Payment failed", err, redirectOrders+"/"+req.Invoice)
	}

	return c.JSON(fiber.Map{
		"message": "Payment captured",
		"receipt": receipt,
	})
}
