package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// OrderEventPublisher delivers order events to a message broker.
type OrderEventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// OrderLine is one product and quantity requested in a new order.
type OrderLine struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput carries a new order request.
type CreateOrderInput struct {
	Items           []OrderLine
	ShippingAddress models.ShippingAddress
}

// OrderService handles business logic related to orders.
type OrderService struct {
	store     repositories.Store
	publisher OrderEventPublisher // optional
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are emitted.
func NewOrderService(store repositories.Store, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
	}
}

func validateShippingAddress(addr models.ShippingAddress) error {
	fields := []struct{ name, value string }{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"zip_code", addr.ZipCode},
		{"country", addr.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return newError(ErrInvalidInput, nil, "Shipping address %s is required", f.name)
		}
	}
	return nil
}

// CreateOrder validates every line against the catalog, prices the order from
// the catalog's current prices and stores the order with its items. Nothing is
// written unless every line is valid.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, newError(ErrInvalidInput, ErrEmptyOrder, "Order must contain at least one item")
	}
	if err := validateShippingAddress(in.ShippingAddress); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(in.Items))

		for _, line := range in.Items {
			product, err := tx.Products().GetByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return newError(ErrInvalidInput, ErrProductNotFound, "Product with ID %s not found", line.ProductID)
				}
				return fmt.Errorf("failed to look up product %s: %w", line.ProductID, err)
			}
			if !product.IsAvailable {
				return newError(ErrInvalidInput, ErrProductUnavailable, "Product %s is not available", product.Name)
			}
			if line.Quantity <= 0 {
				return newError(ErrInvalidInput, ErrInvalidQuantity, "Quantity must be greater than 0")
			}

			item := models.OrderItem{
				ProductID:   product.ID,
				Quantity:    line.Quantity,
				Price:       product.Price,
				ProductName: product.Name,
			}
			total = total.Add(item.Subtotal())
			if total.GreaterThan(maxPrice) {
				return newError(ErrInvalidInput, ErrInvalidQuantity, "Order total must not exceed %s", maxPrice.StringFixed(2))
			}
			items = append(items, item)
		}

		order = &models.Order{
			UserID:          userID,
			Items:           items,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repositories.ErrForeignKey) {
				return newError(ErrNotFound, ErrUserNotFound, "User with ID %s not found", userID)
			}
			return fmt.Errorf("failed to create order in repository: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.OrderEventCreated, order)
	return order, nil
}

// ListUserOrders returns every order owned by userID, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns the order if it exists and belongs to userID.
// A missing order is reported before an ownership mismatch.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	return loadOwnedOrder(ctx, s.store.Orders(), orderID, userID, "view")
}

// UpdateStatus overwrites the order's status with any of the enumerated values.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, userID, status string) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := loadOwnedOrder(ctx, tx.Orders(), orderID, userID, "update")
		if err != nil {
			return err
		}

		newStatus := models.OrderStatus(status)
		if !newStatus.Valid() {
			names := make([]string, 0, len(models.OrderStatuses))
			for _, st := range models.OrderStatuses {
				names = append(names, string(st))
			}
			return newError(ErrInvalidInput, ErrInvalidStatus, "Invalid status. Must be one of: %s", strings.Join(names, ", "))
		}

		order, err = setStatus(ctx, tx.Orders(), current.ID, newStatus)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.OrderEventStatusUpdated, order)
	return order, nil
}

// CancelOrder moves the order to CANCELLED unless it is already DELIVERED or CANCELLED.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := loadOwnedOrder(ctx, tx.Orders(), orderID, userID, "cancel")
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return newError(ErrInvalidInput, ErrInvalidTransition, "Cannot cancel order with status: %s", current.Status)
		}

		order, err = setStatus(ctx, tx.Orders(), current.ID, models.OrderStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.OrderEventCancelled, order)
	return order, nil
}

func loadOwnedOrder(ctx context.Context, repo repositories.OrderRepository, orderID, userID, action string) (*models.Order, error) {
	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, ErrOrderNotFound, "Order not found")
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	if order.UserID != userID {
		return nil, newError(ErrForbidden, ErrNotOrderOwner, "Access denied. You can only %s your own orders.", action)
	}
	return order, nil
}

func setStatus(ctx context.Context, repo repositories.OrderRepository, orderID string, status models.OrderStatus) (*models.Order, error) {
	if err := repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}
	order, err := repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %s: %w", orderID, err)
	}
	return order, nil
}

// publish emits an order event. Failures are logged and never returned: the
// order change has already been committed.
func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(models.NewOrderEvent(eventType, order))
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	if err := s.publisher.Publish(ctx, eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", eventType, order.ID, err)
		return
	}
	log.Printf("Published %s event for order %s", eventType, order.ID)
}
