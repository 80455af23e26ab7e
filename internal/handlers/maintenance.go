package handlers

import (
	"github.com/gofiber/fiber/v2"

	"audiotable/internal/catalog"
)

// MaintenanceHandler exposes catalog upkeep operations
type MaintenanceHandler struct {
	syncer *catalog.Syncer
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(syncer *catalog.Syncer) *MaintenanceHandler {
	return &MaintenanceHandler{
		syncer: syncer,
	}
}

// SyncAudio registers every audio file on disk that has no record yet
func (h *MaintenanceHandler) SyncAudio(c *fiber.Ctx) error {
	added, err := h.syncer.Sync(c.UserContext())
	if err != nil {
		return sendCatalogError(c, err, "audio sync")
	}
	return c.JSON(fiber.Map{"added": added})
}
