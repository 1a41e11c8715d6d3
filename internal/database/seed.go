package database

import (
	"context"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name, description, price, category, image string
}

var sampleProducts = []seedProduct{
	{"Vintage Floral Dress", "Beautiful 1960s floral print dress in excellent condition", "89.99", "dresses", "https://placehold.co/400x400/e8d5c4/8b4513?text=Floral+Dress"},
	{"Classic Leather Handbag", "Genuine leather handbag from the 1980s", "125.00", "bags", "https://placehold.co/400x400/c9b8a8/5d4e37?text=Leather+Bag"},
	{"Retro Sunglasses", "Cat-eye sunglasses from the 1950s", "45.00", "accessories", "https://placehold.co/400x400/f5e6d3/333333?text=Sunglasses"},
	{"Vintage High Heels", "Classic black heels from the 1970s", "65.00", "shoes", "https://placehold.co/400x400/d4b896/8b0000?text=Heels"},
	{"Bohemian Maxi Dress", "Flowing maxi dress with intricate embroidery", "95.00", "dresses", "https://placehold.co/400x400/f0e5d8/654321?text=Maxi+Dress"},
	{"Pearl Necklace", "Elegant strand of pearls from the 1940s", "150.00", "accessories", "https://placehold.co/400x400/faf0e6/daa520?text=Pearl+Necklace"},
}

// SeedProducts fills an empty catalog with sample products. A catalog that
// already has products is left untouched.
func SeedProducts(ctx context.Context, repo repositories.ProductRepository) error {
	_, total, err := repo.List(ctx, repositories.ProductFilter{Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check catalog before seeding: %w", err)
	}
	if total > 0 {
		log.Printf("Catalog already has %d products, skipping seed", total)
		return nil
	}

	for _, sp := range sampleProducts {
		product := &models.Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Category:    sp.category,
			IsAvailable: true,
		}
		product.SetImageURLs([]string{sp.image})
		if err := repo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", sp.name, err)
		}
		log.Printf("Seeded product: %s (ID: %s)", product.Name, product.ID)
	}
	return nil
}
