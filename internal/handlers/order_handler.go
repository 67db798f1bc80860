package handlers

import (
	"bytes"
	"fmt"

	"storefront/internal/invoice"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles checkout, order pages and PDF invoices. Every route needs an
// authenticated customer.
type OrderHandler struct {
	orders *services.OrderService
	carts  *services.CartService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, carts *services.CartService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		carts:  carts,
		logger: logger,
	}
}

// RegisterRoutes registers the order routes behind authRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Post("/", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:invoice", h.HandleGetOrder)
	orderRoutes.Get("/:invoice/pdf", h.HandleInvoicePDF)
}

// HandleCheckout turns the session cart into a Pending order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	customerID := middleware.UserID(c)
	sessionID := middleware.SessionID(c)

	cart, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		return serviceError(c, "Could not load cart", err, redirectCart)
	}

	order, err := h.orders.PlaceOrder(ctx, customerID, sessionID, cart.Snapshot())
	if err != nil {
		return serviceError(c, checkoutMessage(err), err, redirectCart)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed",
		"invoice": order.Invoice,
		"order":   order,
		"totals":  h.orders.Totals(order),
	})
}

func checkoutMessage(err error) string {
	if statusFor(err) == fiber.StatusBadRequest {
		return "Your cart is empty"
	}
	return "Could not place order, please try again"
}

func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		return serviceError(c, "Could not retrieve orders", err, redirectHome)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	detail, err := h.orders.Detail(c.UserContext(), c.Params("invoice"), middleware.UserID(c))
	if err != nil {
		return serviceError(c, "Order not found", err, redirectOrders)
	}
	return c.JSON(detail)
}

// HandleInvoicePDF serves the order as an inline PDF named after its invoice.
func (h *OrderHandler) HandleInvoicePDF(c *fiber.Ctx) error {
	detail, err := h.orders.Detail(c.UserContext(), c.Params("invoice"), middleware.UserID(c))
	if err != nil {
		return serviceError(c, "Order not found", err, redirectOrders)
	}

	var buf bytes.Buffer
	err = invoice.Render(&buf, invoice.Document{
		Order:    detail.Order,
		Customer: detail.Customer,
		Lines:    detail.Lines,
		Totals:   detail.Totals,
	})
	if err != nil {
		h.logger.Error("failed to render invoice", zap.String("invoice", detail.Order.Invoice), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Could not render invoice", nil, redirectOrders)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, invoice.FileName(detail.Order.Invoice)))
	return c.Send(buf.Bytes())
}
