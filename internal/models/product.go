package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the catalog.
// Deleting a product only flips IsAvailable; rows are never removed.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Category    string          `json:"category" gorm:"type:varchar(100);not null;index"`
	Images      []ProductImage  `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	IsAvailable bool            `json:"is_available" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductImage is one entry of a product's ordered image list.
type ProductImage struct {
	ID        uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	ProductID string `json:"-" gorm:"type:varchar(36);not null;index"`
	Position  int    `json:"-" gorm:"not null"`
	URL       string `json:"url" gorm:"type:text;not null"`
}

// ImageURLs returns the image URLs in their stored order.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// SetImageURLs replaces the image list, keeping the given order.
func (p *Product) SetImageURLs(urls []string) {
	images := make([]ProductImage, 0, len(urls))
	for i, u := range urls {
		images = append(images, ProductImage{ProductID: p.ID, Position: i, URL: u})
	}
	p.Images = images
}
