package handlers

import (
	"strconv"

	"github.com/apexcreative/clientflow/internal/models"
	"github.com/gofiber/fiber/v2"
)

func GetUserID(c *fiber.Ctx) int64 {
	value, _ := c.Locals("user_id").(string)
	userID, _ := strconv.Atoi(value)
	return int64(userID)
}

func GetRole(c *fiber.Ctx) models.Role {
	value, _ := c.Locals("role").(string)
	role, _ := models.ParseRole(value)
	return role
}
