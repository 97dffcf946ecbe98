package handlers

import (
	"errors"

	"github.com/apexcreative/clientflow/internal/service"
	"github.com/apexcreative/clientflow/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type ClientHandler struct {
	s  service.ClientService
	an service.AnalyticsService
}

func NewClientHandler(service service.ClientService, analytics service.AnalyticsService) *ClientHandler {
	return &ClientHandler{s: service, an: analytics}
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.s.List(c.Context(), GetUserID(c), GetRole(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list clients",
		})
	}
	return c.Status(fiber.StatusOK).JSON(clients)
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var cc transfer.ClientCreation
	if err := c.BodyParser(&cc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	id, err := h.s.Create(c.Context(), GetUserID(c), &cc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": id,
	})
}

func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	clientID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	var cc transfer.ClientCreation
	if err := c.BodyParser(&cc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	err = h.s.Update(c.Context(), GetUserID(c), GetRole(c), int64(clientID), &cc)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to update client",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ClientHandler) RemoveClient(c *fiber.Ctx) error {
	clientID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	err = h.s.Remove(c.Context(), GetUserID(c), GetRole(c), int64(clientID))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove client",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ClientHandler) GetClientStats(c *fiber.Ctx) error {
	clientID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	stats, err := h.s.Stats(c.Context(), GetUserID(c), GetRole(c), int64(clientID))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to load client stats",
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *ClientHandler) GetClientAnalytics(c *fiber.Ctx) error {
	clientID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	switch c.Query("type", "tweets") {
	case "tweets":
		tweets, err := h.an.Tweets(c.Context(), GetUserID(c), GetRole(c), int64(clientID))
		if err != nil {
			return analyticsError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(tweets)
	case "followers":
		followers, err := h.an.Followers(c.Context(), GetUserID(c), GetRole(c), int64(clientID))
		if err != nil {
			return analyticsError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(followers)
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Unknown analytics type",
	})
}

func analyticsError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrClientNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Unable to load analytics",
	})
}
