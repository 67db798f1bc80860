package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogHandler serves products, brands, categories and search.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validation.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the catalog routes. Writes go through authRequired.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Post("/products", authRequired, h.HandleAddProduct)
	router.Get("/search", h.HandleSearch)

	router.Get("/brands", h.HandleListBrands)
	router.Post("/brands", authRequired, h.HandleAddBrand)
	router.Get("/brands/:id/products", h.HandleBrandProducts)

	router.Get("/categories", h.HandleListCategories)
	router.Post("/categories", authRequired, h.HandleAddCategory)
	router.Get("/categories/:id/products", h.HandleCategoryProducts)
}

func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	page, err := h.service.ListProducts(c.UserContext(), pageParam(c))
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return serviceError(c, "Could not retrieve products", err, redirectHome)
	}
	return c.JSON(page)
}

func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return serviceError(c, "Product not available", err, redirectHome)
	}
	return c.JSON(fiber.Map{
		"product": product,
		"colors":  product.ColorList(),
	})
}

// ProductRequest is the add-product form.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=250"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Discount    int             `json:"discount" validate:"min=0,max=100"`
	Stock       int             `json:"stock" validate:"min=0"`
	Description string          `json:"description" validate:"required,max=250"`
	Colors      string          `json:"colors" validate:"required,max=250"`
	BrandID     string          `json:"brand_id" validate:"required"`
	CategoryID  string          `json:"category_id" validate:"required"`
	Image1      string          `json:"image_1" validate:"max=250"`
	Image2      string          `json:"image_2" validate:"max=250"`
	Image3      string          `json:"image_3" validate:"max=250"`
}

func (h *CatalogHandler) HandleAddProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectHome)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectHome)
	}

	product := models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		Description: req.Description,
		Colors:      req.Colors,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Image1:      defaultImage(req.Image1),
		Image2:      defaultImage(req.Image2),
		Image3:      defaultImage(req.Image3),
	}
	if err := h.service.AddProduct(c.UserContext(), &product); err != nil {
		h.logger.Warn("failed to add product", zap.String("name", req.Name), zap.Error(err))
		return serviceError(c, "Could not add product", err, redirectHome)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added",
		"product": product,
	})
}

func (h *CatalogHandler) HandleSearch(c *fiber.Ctx) error {
	term := c.Query("q")
	products, err := h.service.Search(c.UserContext(), term)
	if err != nil {
		h.logger.Error("search failed", zap.String("term", term), zap.Error(err))
		return serviceError(c, "Search failed", err, redirectHome)
	}
	return c.JSON(fiber.Map{
		"query":    term,
		"products": products,
	})
}

func (h *CatalogHandler) HandleListBrands(c *fiber.Ctx) error {
	brands, err := h.service.ListBrands(c.UserContext())
	if err != nil {
		return serviceError(c, "Could not retrieve brands", err, redirectHome)
	}
	return c.JSON(brands)
}

// NameRequest is the add-brand and add-category form.
type NameRequest struct {
	Name string `json:"name" validate:"required,max=250"`
}

func (h *CatalogHandler) HandleAddBrand(c *fiber.Ctx) error {
	var req NameRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectHome)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectHome)
	}
	brand, err := h.service.AddBrand(c.UserContext(), req.Name)
	if err != nil {
		return serviceError(c, "Could not add brand", err, redirectHome)
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

func (h *CatalogHandler) HandleBrandProducts(c *fiber.Ctx) error {
	brand, page, err := h.service.BrandProducts(c.UserContext(), c.Params("id"), pageParam(c))
	if err != nil {
		return serviceError(c, "Brand not available", err, redirectHome)
	}
	return c.JSON(fiber.Map{
		"brand":    brand,
		"products": page,
	})
}

func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return serviceError(c, "Could not retrieve categories", err, redirectHome)
	}
	return c.JSON(categories)
}

func (h *CatalogHandler) HandleAddCategory(c *fiber.Ctx) error {
	var req NameRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err, redirectHome)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err, redirectHome)
	}
	category, err := h.service.AddCategory(c.UserContext(), req.Name)
	if err != nil {
		return serviceError(c, "Could not add category", err, redirectHome)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CatalogHandler) HandleCategoryProducts(c *fiber.Ctx) error {
	category, page, err := h.service.CategoryProducts(c.UserContext(), c.Params("id"), pageParam(c))
	if err != nil {
		return serviceError(c, "Category not available", err, redirectHome)
	}
	return c.JSON(fiber.Map{
		"category": category,
		"products": page,
	})
}

func defaultImage(name string) string {
	if name == "" {
		return "image.jpg"
	}
	return name
}
