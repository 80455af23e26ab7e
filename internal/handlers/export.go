package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"audiotable/internal/models"
	"audiotable/internal/services"
)

const (
	exportSheet       = "音频表"
	exportFilename    = "audio_table.xlsx"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{"第一列", "第二列", "音频ID", "音频文件名"}

// ExportHandler renders the table as a spreadsheet
type ExportHandler struct {
	repo *services.Repository
}

// NewExportHandler creates a new export handler
func NewExportHandler(repo *services.Repository) *ExportHandler {
	return &ExportHandler{
		repo: repo,
	}
}

// Export writes every row, ordered by id, to a single-sheet workbook
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return sendCatalogError(c, errors.Wrap(err, "rename sheet"), "export")
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return sendCatalogError(c, errors.Wrap(err, "open stream writer"), "export")
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return sendCatalogError(c, errors.Wrap(err, "write header"), "export")
	}

	line := 1
	err = h.repo.EachRow(c.UserContext(), func(row *models.TableRow) error {
		line++
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, exportValues(row))
	})
	if err != nil {
		return sendCatalogError(c, errors.Wrap(err, "write rows"), "export")
	}
	if err := sw.Flush(); err != nil {
		return sendCatalogError(c, errors.Wrap(err, "flush sheet"), "export")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return sendCatalogError(c, errors.Wrap(err, "encode workbook"), "export")
	}

	c.Set(fiber.HeaderContentType, exportContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+exportFilename)
	return c.Send(buf.Bytes())
}

func exportValues(row *models.TableRow) []interface{} {
	var audioID interface{} = ""
	if row.AudioID != nil {
		audioID = *row.AudioID
	}
	return []interface{}{row.Col1, row.Col2, audioID, row.AudioFilename()}
}
