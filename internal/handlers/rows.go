package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"audiotable/internal/catalog"
	"audiotable/internal/models"
	"audiotable/internal/pagination"
	"audiotable/internal/services"
	"audiotable/internal/utils"
)

const (
	defaultRowsLimit = 50
	maxRowsLimit     = 500
)

// RowsHandler handles table row requests
type RowsHandler struct {
	repo *services.Repository
}

// NewRowsHandler creates a new rows handler
func NewRowsHandler(repo *services.Repository) *RowsHandler {
	return &RowsHandler{
		repo: repo,
	}
}

// RowResponse is one row as listed to clients
type RowResponse struct {
	ID            int64   `json:"id"`
	Col1          string  `json:"col1"`
	Col2          string  `json:"col2"`
	AudioID       *int64  `json:"audio_id"`
	AudioFilename *string `json:"audio_filename"`
}

func toRowResponse(row *models.TableRow) RowResponse {
	resp := RowResponse{
		ID:      row.ID,
		Col1:    row.Col1,
		Col2:    row.Col2,
		AudioID: row.AudioID,
	}
	if row.Audio != nil {
		name := row.Audio.Filename
		resp.AudioFilename = &name
	}
	return resp
}

// List returns one page of rows, optionally filtered by q
func (h *RowsHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination.GetLimitOffset(c, defaultRowsLimit, maxRowsLimit)

	rows, total, err := h.repo.ListRows(c.UserContext(), c.Query("q"), limit, offset)
	if err != nil {
		return sendCatalogError(c, err, "rows")
	}

	items := make([]RowResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toRowResponse(&rows[i]))
	}

	return c.JSON(fiber.Map{
		"total":      total,
		"items":      items,
		"pagination": pagination.CalculateWithOffset(total, offset, limit),
	})
}

// Create adds a single row
func (h *RowsHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Col1    string `json:"col1" form:"col1"`
		Col2    string `json:"col2" form:"col2"`
		AudioID *int64 `json:"audio_id" form:"audio_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequestError(c, "Invalid request body")
	}

	row := &models.TableRow{
		Col1:    req.Col1,
		Col2:    req.Col2,
		AudioID: req.AudioID,
	}
	if err := h.repo.CreateRow(c.UserContext(), row); err != nil {
		return sendCatalogError(c, err, "row")
	}

	return c.JSON(fiber.Map{"id": row.ID})
}

// Update applies a partial update. clear_audio wins over audio_id; an empty
// audio_id clears the reference.
func (h *RowsHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.SendBadRequestError(c, "Invalid row ID")
	}

	update, err := parseRowUpdate(c)
	if err != nil {
		return sendCatalogError(c, err, "row")
	}

	if err := h.repo.UpdateRow(c.UserContext(), int64(id), update); err != nil {
		return sendCatalogError(c, err, "row")
	}

	return c.JSON(fiber.Map{"ok": true})
}

// Delete removes a row. The referenced audio asset is kept.
func (h *RowsHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.SendBadRequestError(c, "Invalid row ID")
	}

	deleted, err := h.repo.DeleteRow(c.UserContext(), int64(id))
	if err != nil {
		return sendCatalogError(c, err, "row")
	}
	if !deleted {
		return utils.SendNotFoundError(c, "row")
	}

	return c.JSON(fiber.Map{"ok": true})
}

type rowUpdateRequest struct {
	Col1       *string
	Col2       *string
	AudioID    *string
	ClearAudio bool
}

// parseRowUpdate reads the update from a JSON or form body. A JSON audio_id
// may be a string or a number.
func parseRowUpdate(c *fiber.Ctx) (services.RowUpdate, error) {
	var req rowUpdateRequest

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var body struct {
			Col1       *string         `json:"col1"`
			Col2       *string         `json:"col2"`
			AudioID    json.RawMessage `json:"audio_id"`
			ClearAudio bool            `json:"clear_audio"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return services.RowUpdate{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req = rowUpdateRequest{Col1: body.Col1, Col2: body.Col2, ClearAudio: body.ClearAudio}

		raw := strings.TrimSpace(string(body.AudioID))
		switch {
		case raw == "" || raw == "null":
		case strings.HasPrefix(raw, `"`):
			var s string
			if err := json.Unmarshal(body.AudioID, &s); err != nil {
				return services.RowUpdate{}, catalog.ErrMalformedIdentifier
			}
			req.AudioID = &s
		default:
			req.AudioID = &raw
		}
	} else {
		var form struct {
			Col1       *string `form:"col1"`
			Col2       *string `form:"col2"`
			AudioID    *string `form:"audio_id"`
			ClearAudio bool    `form:"clear_audio"`
		}
		if err := c.BodyParser(&form); err != nil {
			return services.RowUpdate{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req = rowUpdateRequest(form)
	}

	update := services.RowUpdate{Col1: req.Col1, Col2: req.Col2}
	switch {
	case req.ClearAudio:
		update.SetAudio = true
	case req.AudioID != nil:
		audioID, err := catalog.ParseAudioReference(*req.AudioID)
		if err != nil {
			return services.RowUpdate{}, err
		}
		update.SetAudio = true
		update.AudioID = audioID
	}
	return update, nil
}
