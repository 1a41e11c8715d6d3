package handlers

import (
	"time"

	"storefront/internal/models"
	"storefront/internal/services"
)

// UserResponse is a user without credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newTokenResponse(token string) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "bearer"}
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProductResponse is the public shape of a product. Price is rendered with
// exactly two decimals.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Category:    p.Category,
		Images:      p.ImageURLs(),
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductListResponse is one page of the catalog.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func newProductListResponse(page *services.ProductPage) ProductListResponse {
	items := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newProductResponse(&page.Items[i]))
	}
	return ProductListResponse{Items: items, Total: page.Total, Page: page.Page, Limit: page.Limit}
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ID          uint   `json:"id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	ProductName string `json:"product_name"`
}

// OrderResponse is the public shape of an order.
type OrderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	TotalAmount     string                 `json:"total_amount"`
	Status          models.OrderStatus     `json:"status"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	Items           []OrderItemResponse    `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func newOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
			ProductName: item.ProductName,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// OrderStatusResponse acknowledges a status change.
type OrderStatusResponse struct {
	Message   string             `json:"message"`
	OrderID   string             `json:"order_id"`
	NewStatus models.OrderStatus `json:"new_status"`
}

// OrderCancelResponse acknowledges a cancellation.
type OrderCancelResponse struct {
	Message string             `json:"message"`
	OrderID string             `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}
