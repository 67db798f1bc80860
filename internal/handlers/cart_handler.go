package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler mutates the cart of the current session. It needs middleware.Session
// in front of it.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validation.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:product_id", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:product_id", h.HandleRemoveItem)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		h.logger.Error("failed to load cart", zap.Error(err))
		return serviceError(c, "Could not load cart", err, redirectHome)
	}
	return c.JSON(summary)
}

// AddItemRequest puts a product into the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Color     string `json:"color" validate:"max=250"`
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectHome)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectHome)
	}

	sessionID := middleware.SessionID(c)
	added, err := h.service.AddItem(c.UserContext(), sessionID, req.ProductID, req.Quantity, req.Color)
	if err != nil {
		h.logger.Warn("failed to add to cart", zap.String("product_id", req.ProductID), zap.Error(err))
		return serviceError(c, "Could not add product to cart", err, redirectHome)
	}

	status, message := "added", "Product added to cart"
	if !added {
		status, message = "duplicate", "Product is already in your cart"
	}
	summary, err := h.service.Summary(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, "Could not load cart", err, redirectCart)
	}
	return c.JSON(fiber.Map{
		"status":  status,
		"message": message,
		"cart":    summary,
	})
}

// UpdateItemRequest changes quantity and color of a cart line.
type UpdateItemRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Color    string `json:"color" validate:"max=250"`
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectCart)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectCart)
	}

	sessionID := middleware.SessionID(c)
	if err := h.service.UpdateItem(c.UserContext(), sessionID, c.Params("product_id"), req.Quantity, req.Color); err != nil {
		return serviceError(c, "Could not update cart", err, redirectCart)
	}
	summary, err := h.service.Summary(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, "Could not load cart", err, redirectCart)
	}
	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"cart":    summary,
	})
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)
	removed, err := h.service.RemoveItem(c.UserContext(), sessionID, c.Params("product_id"))
	if err != nil {
		return serviceError(c, "Could not update cart", err, redirectCart)
	}
	summary, err := h.service.Summary(c.UserContext(), sessionID)
	if err != nil {
		return serviceError(c, "Could not load cart", err, redirectCart)
	}
	return c.JSON(fiber.Map{
		"removed": removed,
		"cart":    summary,
	})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.SessionID(c)); err != nil {
		return serviceError(c, "Could not clear cart", err, redirectCart)
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
	})
}
