package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=1000"`
	Email           string `json:"email" validate:"required,email,max=100"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Country         string `json:"country" validate:"max=100"`
	State           string `json:"state" validate:"max=100"`
	City            string `json:"city" validate:"max=100"`
	Contact         string `json:"contact" validate:"max=100"`
	Address         string `json:"address" validate:"max=100"`
	Zipcode         string `json:"zipcode" validate:"max=100"`
}

// HandleRegister handles new user registration and logs the user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectRegister)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectRegister)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Country:  req.Country,
		State:    req.State,
		City:     req.City,
		Contact:  req.Contact,
		Address:  req.Address,
		Zipcode:  req.Zipcode,
	}
	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		h.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		return serviceError(c, "Registration failed", err, redirectRegister)
	}

	token, err := h.authService.IssueToken(&user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.String("user_id", user.ID), zap.Error(err))
		return serviceError(c, "Could not log in", err, redirectLogin)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectLogin)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectLogin)
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("login failed", zap.String("email", req.Email), zap.Error(err))
		return serviceError(c, "Authentication failed", err, redirectLogin)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
