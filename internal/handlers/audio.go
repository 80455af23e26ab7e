package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"audiotable/internal/catalog"
	"audiotable/internal/logging"
	"audiotable/internal/media"
	"audiotable/internal/metrics"
	"audiotable/internal/models"
	"audiotable/internal/services"
	"audiotable/internal/utils"
)

// AudioHandler streams and stores audio files
type AudioHandler struct {
	repo      *services.Repository
	dir       *catalog.Directory
	validator *media.UploadValidator
	metrics   *metrics.Metrics
}

// NewAudioHandler creates a new audio handler. m may be nil.
func NewAudioHandler(repo *services.Repository, dir *catalog.Directory, validator *media.UploadValidator, m *metrics.Metrics) *AudioHandler {
	return &AudioHandler{
		repo:      repo,
		dir:       dir,
		validator: validator,
		metrics:   m,
	}
}

// Stream serves the audio file of an asset. Range requests are honored so
// browsers can seek.
func (h *AudioHandler) Stream(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		h.metrics.RecordStream("not_found", 0)
		return utils.SendNotFoundError(c, "audio")
	}

	asset, err := h.repo.GetAsset(c.UserContext(), int64(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.metrics.RecordStream("not_found", 0)
			return utils.SendNotFoundError(c, "audio")
		}
		h.metrics.RecordStream("error", 0)
		return sendCatalogError(c, err, "audio")
	}

	if !h.dir.Exists(asset.Filepath) {
		h.metrics.RecordStream("not_found", 0)
		return utils.SendNotFoundError(c, "audio file")
	}

	if err := c.SendFile(asset.Filepath); err != nil {
		h.metrics.RecordStream("error", 0)
		return sendCatalogError(c, err, "audio")
	}

	c.Set(fiber.HeaderContentType, streamMimeType(asset))
	c.Set(fiber.HeaderContentDisposition, inlineDisposition(asset.Filename))
	h.metrics.RecordStream("ok", int64(c.Response().Header.ContentLength()))
	return nil
}

func streamMimeType(asset *models.AudioAsset) string {
	if asset.Mime != "" {
		return asset.Mime
	}
	if m := media.InferMimeType(asset.Filename); m != "" {
		return m
	}
	return media.DefaultAudioMime
}

func inlineDisposition(filename string) string {
	return fmt.Sprintf("inline; filename*=UTF-8''%s", url.PathEscape(filename))
}

// Upload stores an uploaded audio file in the audio directory. Uploading a
// file whose name is already registered refreshes that record.
func (h *AudioHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendBadRequestError(c, "No file provided or invalid form data")
	}

	filename := uploadName(file.Filename)
	if filename == "" {
		return utils.SendBadRequestError(c, "Invalid filename")
	}
	if err := h.validator.ValidateName(filename); err != nil {
		return utils.SendError(c, http.StatusUnsupportedMediaType, err.Error())
	}
	if err := h.validator.ValidateSize(file.Size); err != nil {
		return utils.SendError(c, http.StatusRequestEntityTooLarge, err.Error())
	}

	if err := h.dir.Ensure(); err != nil {
		return sendCatalogError(c, err, "audio upload")
	}

	// Written under a temporary name first so a failed upload never
	// replaces an existing file.
	tmp := filepath.Join(h.dir.Root(), "."+uuid.New().String()+filepath.Ext(filename))
	if err := c.SaveFile(file, tmp); err != nil {
		return sendCatalogError(c, errors.Wrap(err, "save upload"), "audio upload")
	}
	defer os.Remove(tmp)

	if err := h.validator.ValidateContent(tmp); err != nil {
		return utils.SendError(c, http.StatusUnsupportedMediaType, err.Error())
	}

	dest := h.dir.PathFor(filename)
	if err := os.Rename(tmp, dest); err != nil {
		return sendCatalogError(c, errors.Wrap(err, "move upload"), "audio upload")
	}

	mime := file.Header.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(mime, "audio/") {
		mime = media.DetectMimeType(dest)
	}

	asset, err := h.storeAsset(c, filename, dest, mime)
	if err != nil {
		return sendCatalogError(c, err, "audio upload")
	}

	logging.WithModuleContext(c.UserContext(), "audio").Info().
		Int64("audio_id", asset.ID).
		Str("filename", asset.Filename).
		Int64("size", file.Size).
		Msg("audio uploaded")

	return c.JSON(fiber.Map{
		"audio_id": asset.ID,
		"filename": asset.Filename,
	})
}

func (h *AudioHandler) storeAsset(c *fiber.Ctx, filename, path, mime string) (*models.AudioAsset, error) {
	ctx := c.UserContext()

	asset, err := h.repo.FindAssetByFilename(ctx, filename)
	switch {
	case err == nil:
		asset.Filepath = path
		asset.Mime = mime
		return asset, h.repo.SaveAsset(ctx, asset)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	asset = &models.AudioAsset{Filename: filename, Filepath: path, Mime: mime}
	return asset, h.repo.CreateAsset(ctx, asset)
}

// uploadName strips any client-side directory part from a multipart filename
func uploadName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}
