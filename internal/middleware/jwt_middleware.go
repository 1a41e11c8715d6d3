package middleware

import (
	"errors"
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	userKey   = "user"
	userIDKey = "user_id"
)

func unauthorized(c *fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"detail": detail,
	})
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// On success the authenticated *models.User is stored in the request locals.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Not authenticated")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		userID, err := authService.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return unauthorized(c, err.Error())
		}

		user, err := authService.CurrentUser(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				return unauthorized(c, err.Error())
			}
			log.Printf("Failed to load user %s: %v", userID, err)
			return err
		}

		c.Locals(userKey, user)
		c.Locals(userIDKey, user.ID)
		return c.Next()
	}
}

// AdminRequired rejects requests whose authenticated user is not an admin.
// It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"detail": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
