package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 100
)

// maxPrice is the largest value a numeric(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

// ProductQuery selects a page of the catalog.
type ProductQuery struct {
	Page     *int // nil means the first page
	Limit    *int // nil means defaultPageLimit
	Category string
	Search   string
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Items []models.Product
	Total int64
	Page  int
	Limit int
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Images      []string
}

func (in ProductInput) normalize() (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Price = in.Price.Round(2)

	switch {
	case in.Name == "" || len(in.Name) > 200:
		return in, newError(ErrInvalidInput, ErrInvalidProduct, "Name must be between 1 and 200 characters")
	case in.Description == "":
		return in, newError(ErrInvalidInput, ErrInvalidProduct, "Description is required")
	case !in.Price.IsPositive():
		return in, newError(ErrInvalidInput, ErrInvalidProduct, "Price must be greater than 0")
	case in.Price.GreaterThan(maxPrice):
		return in, newError(ErrInvalidInput, ErrInvalidProduct, "Price must not exceed %s", maxPrice.StringFixed(2))
	case in.Category == "" || len(in.Category) > 100:
		return in, newError(ErrInvalidInput, ErrInvalidProduct, "Category must be between 1 and 100 characters")
	}
	for _, img := range in.Images {
		if strings.TrimSpace(img) == "" {
			return in, newError(ErrInvalidInput, ErrInvalidProduct, "Image URLs must not be empty")
		}
	}
	return in, nil
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns available products matching q, newest first.
func (s *ProductService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	pageNum, limit := 1, defaultPageLimit
	if q.Page != nil {
		pageNum = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}
	if pageNum < 1 {
		return nil, newError(ErrInvalidInput, nil, "Page must be at least 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, newError(ErrInvalidInput, nil, "Limit must be between 1 and %d", maxPageLimit)
	}

	items, total, err := s.repo.List(ctx, repositories.ProductFilter{
		Page:          pageNum,
		Limit:         limit,
		Category:      strings.TrimSpace(q.Category),
		Search:        strings.TrimSpace(q.Search),
		AvailableOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &ProductPage{Items: items, Total: total, Page: pageNum, Limit: limit}, nil
}

// GetProduct retrieves a single product by its ID, available or not.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, ErrProductNotFound, "Product not found")
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return product, nil
}

// CreateProduct adds an available product to the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		IsAvailable: true,
	}
	product.SetImageURLs(in.Images)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the product's fields and image list.
// Orders already placed keep the price they captured.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Category = in.Category
	product.SetImageURLs(in.Images)

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, ErrProductNotFound, "Product not found")
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return product, nil
}

// DeleteProduct marks the product unavailable and returns it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := s.repo.SetAvailability(ctx, id, false); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, ErrProductNotFound, "Product not found")
		}
		return nil, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return s.GetProduct(ctx, id)
}
