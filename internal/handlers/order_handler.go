package handlers

import (
	"log"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes. Every route needs an authenticated user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Put("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// OrderItemRequest is one requested line of a new order.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// ShippingAddressRequest is the destination of a new order.
type ShippingAddressRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
}

// OrderStatusRequest is the body of PUT /orders/:id/status.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleGetOrders retrieves the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	orders, err := h.service.ListUserOrders(c.UserContext(), user.ID)
	if err != nil {
		log.Printf("Error getting orders of user %s: %v", user.ID, err)
		return err
	}

	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	return c.JSON(resp)
}

// HandleGetOrderByID retrieves a single order owned by the caller.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(newOrderResponse(order))
}

// HandleCreateOrder creates a new order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	addr := req.ShippingAddress

	createdOrder, err := h.service.CreateOrder(c.UserContext(), middleware.CurrentUser(c).ID, services.CreateOrderInput{
		Items: lines,
		ShippingAddress: models.ShippingAddress{
			Street:  addr.Street,
			City:    addr.City,
			State:   addr.State,
			ZipCode: addr.ZipCode,
			Country: addr.Country,
		},
	})
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newOrderResponse(createdOrder))
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req OrderStatusRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	orderID := c.Params("id")
	order, err := h.service.UpdateStatus(c.UserContext(), orderID, middleware.CurrentUser(c).ID, req.Status)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return err
	}

	return c.JSON(OrderStatusResponse{
		Message:   "Order status updated successfully",
		OrderID:   order.ID,
		NewStatus: order.Status,
	})
}

// HandleCancelOrder cancels an order that has not been delivered yet.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.CancelOrder(c.UserContext(), orderID, middleware.CurrentUser(c).ID)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return err
	}

	return c.JSON(OrderCancelResponse{
		Message: "Order cancelled successfully",
		OrderID: order.ID,
		Status:  order.Status,
	})
}
