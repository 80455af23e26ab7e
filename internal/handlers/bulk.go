package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"audiotable/internal/catalog"
	"audiotable/internal/utils"
)

// BulkHandler handles bulk row imports
type BulkHandler struct {
	importer *catalog.Importer
}

// NewBulkHandler creates a new bulk import handler
func NewBulkHandler(importer *catalog.Importer) *BulkHandler {
	return &BulkHandler{
		importer: importer,
	}
}

// Import creates rows from a JSON array of row objects or [col1, col2, audio]
// triples. Unresolved filenames are reported, not rejected.
func (h *BulkHandler) Import(c *fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 || body[0] != '[' {
		return utils.SendBadRequestError(c, "Request body must be a JSON array")
	}

	var rows []catalog.RowDescriptor
	if err := json.Unmarshal(body, &rows); err != nil {
		return utils.SendBadRequestError(c, "Invalid JSON array")
	}

	result, err := h.importer.Import(c.UserContext(), rows)
	if err != nil {
		return sendCatalogError(c, err, "bulk import")
	}

	return c.JSON(result)
}
