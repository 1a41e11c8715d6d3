package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductFilter narrows and pages a product listing.
type ProductFilter struct {
	Page          int
	Limit         int
	Category      string
	Search        string // case-insensitive substring of the name
	AvailableOnly bool
}

// Offset returns the number of rows to skip for the filter's page.
func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SetAvailability(ctx context.Context, id string, available bool) error
}
