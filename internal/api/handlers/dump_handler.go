package handlers

import (
	"errors"

	"github.com/apexcreative/clientflow/internal/service"
	"github.com/apexcreative/clientflow/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type DumpHandler struct {
	s service.DumpService
}

func NewDumpHandler(service service.DumpService) *DumpHandler {
	return &DumpHandler{s: service}
}

func (h *DumpHandler) CreateDump(c *fiber.Ctx) error {
	var dc transfer.DumpCreation
	if err := c.BodyParser(&dc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	id, err := h.s.Create(c.Context(), GetUserID(c), &dc)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": id,
	})
}

func (h *DumpHandler) ListDumps(c *fiber.Ctx) error {
	clientID := c.QueryInt("client_id", 0)
	if clientID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "client_id is required",
		})
	}

	dumps, err := h.s.List(c.Context(), GetUserID(c), int64(clientID))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list content dumps",
		})
	}

	return c.Status(fiber.StatusOK).JSON(dumps)
}

func (h *DumpHandler) ProcessDump(c *fiber.Ctx) error {
	dumpID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid dump id",
		})
	}

	created, err := h.s.Process(c.Context(), GetUserID(c), int64(dumpID))
	if err != nil {
		if errors.Is(err, service.ErrDumpNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"created": created,
	})
}
