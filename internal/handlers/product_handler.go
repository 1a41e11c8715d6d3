package handlers

import (
	"log"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes need an admin.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)

	adminOnly := middleware.AdminRequired()
	productRoutes.Post("/", authRequired, adminOnly, h.HandleCreateProduct)
	productRoutes.Put("/:id", authRequired, adminOnly, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", authRequired, adminOnly, h.HandleDeleteProduct)
}

// ProductListQuery holds the query string of a product listing.
type ProductListQuery struct {
	Page     *int   `query:"page"`
	Limit    *int   `query:"limit"`
	Category string `query:"category"`
	Search   string `query:"search"`
}

// ProductRequest is the body of product create and update requests.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required,max=100"`
	Images      []string        `json:"images" validate:"dive,required"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Images:      r.Images,
	}
}

// HandleListProducts returns a page of available products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	var q ProductListQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	page, err := h.service.ListProducts(c.UserContext(), services.ProductQuery{
		Page:     q.Page,
		Limit:    q.Limit,
		Category: q.Category,
		Search:   q.Search,
	})
	if err != nil {
		return err
	}
	return c.JSON(newProductListResponse(page))
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.input())
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newProductResponse(product))
}

// HandleUpdateProduct replaces a product's fields.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	productID := c.Params("id")
	product, err := h.service.UpdateProduct(c.UserContext(), productID, req.input())
	if err != nil {
		log.Printf("Error updating product %s: %v", productID, err)
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleDeleteProduct hides a product from the catalog and returns it.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.DeleteProduct(c.UserContext(), productID)
	if err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return err
	}
	return c.JSON(newProductResponse(product))
}
