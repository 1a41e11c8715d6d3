package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles user administration.
type AdminHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.UserService) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the admin routes behind authentication and the admin gate.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	adminRoutes := router.Group("/admin", authRequired, middleware.AdminRequired())
	adminRoutes.Put("/users/:id/admin-status", h.HandleUpdateAdminStatus)
}

// AdminStatusRequest is the body of PUT /admin/users/:id/admin-status.
type AdminStatusRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// HandleUpdateAdminStatus grants or revokes admin rights of a user.
func (h *AdminHandler) HandleUpdateAdminStatus(c *fiber.Ctx) error {
	var req AdminStatusRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.service.SetAdminStatus(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), *req.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(newUserResponse(user))
}
