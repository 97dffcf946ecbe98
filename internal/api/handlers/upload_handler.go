package handlers

import (
	"errors"
	"fmt"

	"github.com/apexcreative/clientflow/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
)

type UploadHandler struct {
	imports service.ImportService
	uploads service.UploadService
}

func NewUploadHandler(imports service.ImportService, uploads service.UploadService) *UploadHandler {
	return &UploadHandler{imports: imports, uploads: uploads}
}

// Upload ingests one CSV/XLSX export for a client.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	clientID := c.QueryInt("client_id", 0)
	if clientID == 0 {
		if id, err := c.ParamsInt("client_id"); err == nil {
			clientID = id
		}
	}
	if formValue := c.FormValue("client_id"); clientID == 0 && formValue != "" {
		fmt.Sscanf(formValue, "%d", &clientID)
	}
	if clientID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "client_id is required",
		})
	}

	uploadType := c.FormValue("type")

	result, err := h.imports.HandleUpload(c.Context(), GetUserID(c), int64(clientID), uploadType, file)
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

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *UploadHandler) ListUploads(c *fiber.Ctx) error {
	clientID := c.QueryInt("client_id", 0)

	uploads, err := h.uploads.List(c.Context(), int64(clientID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list uploads",
		})
	}

	return c.Status(fiber.StatusOK).JSON(uploads)
}

// UndoUpload reverses one import: posts the upload introduced are deleted,
// posts it only touched have their attribution reverted to the previous
// upload, and the upload record itself is removed.
func (h *UploadHandler) UndoUpload(c *fiber.Ctx) error {
	uploadID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid upload id",
		})
	}

	result, err := h.uploads.Undo(c.Context(), int64(uploadID))
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		// internal admin tool: echo the store error so the operator can see
		// exactly what failed
		payload := fiber.Map{
			"error":   "Undo failed",
			"details": err.Error(),
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			payload["code"] = string(pqErr.Code)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(payload)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":        true,
		"message":        fmt.Sprintf("Upload undone for %s: %d posts restored, %d deleted", result.ClientName, result.RestoredCount, result.DeletedCount),
		"restored_count": result.RestoredCount,
		"deleted_count":  result.DeletedCount,
		"client_name":    result.ClientName,
	})
}
