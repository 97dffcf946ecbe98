package middleware

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	config "github.com/apexcreative/clientflow/configs"
	"github.com/apexcreative/clientflow/internal/models"
	"github.com/apexcreative/clientflow/internal/service"
	"github.com/apexcreative/clientflow/pkg/utils"
)

type AuthMiddleware struct {
	keys  service.ApiKeyService
	users service.UserService
	cfg   config.Config
}

func NewAuthMiddleware(cfg config.Config, keys service.ApiKeyService, users service.UserService) *AuthMiddleware {
	return &AuthMiddleware{keys: keys, users: users, cfg: cfg}
}

// AuthMiddleware resolves the caller from the session cookie or an API key
// and stores user_id and role in the request locals.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		apiKey := c.Query("api_key")
		if apiKey == "" {
			apiKey = c.Get("X-Api-Key")
		}

		if tokenString == "" && apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing API key or session cookie",
			})
		}

		if apiKey != "" {
			userID, err := m.keys.GetUserID(c.Context(), apiKey)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			user, err := m.users.GetUserInfo(c.Context(), userID)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid API key",
				})
			}
			c.Locals("user_id", fmt.Sprintf("%d", user.ID))
			c.Locals("role", string(user.Role))
		} else {
			claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
			if err != nil {
				c.Cookie(&fiber.Cookie{
					Name:   m.cfg.CookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1, // Delete cookie
				})

				log.Printf("Token validation failed: %v", err)
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}

			if _, ok := models.ParseRole(claims.Role); !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid or expired token",
				})
			}

			c.Locals("user_id", claims.UserID)
			c.Locals("role", claims.Role)
		}
		return c.Next()
	}
}

// RequireCapability gates a route group on one capability of the closed role
// enumeration. Callers whose role cannot perform the action get 401 and no
// handler runs.
func (m *AuthMiddleware) RequireCapability(cap models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleValue, _ := c.Locals("role").(string)
		role, ok := models.ParseRole(roleValue)
		if !ok || !role.Can(cap) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}
