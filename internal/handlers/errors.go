package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"audiotable/internal/catalog"
	"audiotable/internal/logging"
	"audiotable/internal/utils"
)

// sendCatalogError maps catalog and store errors to the JSON error shape
func sendCatalogError(c *fiber.Ctx, err error, resource string) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return utils.SendError(c, fe.Code, fe.Message)
	case errors.Is(err, catalog.ErrMalformedIdentifier):
		return utils.SendBadRequestError(c, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendNotFoundError(c, resource)
	case catalog.IsStoreFailure(err):
		logging.WithModuleContext(c.UserContext(), "handlers").Error().Err(err).Msg("store failure")
		return utils.SendError(c, http.StatusInternalServerError, "Store failure, nothing was saved")
	}

	logging.WithModuleContext(c.UserContext(), "handlers").Error().Err(err).Str("resource", resource).Msg("request failed")
	return utils.SendInternalServerError(c, "Failed to process "+resource)
}
