package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidAudio      = errors.New("invalid audio file")
)

// ValidationConfig holds validation rules for uploaded audio files
type ValidationConfig struct {
	MaxFileSize    int64    `mapstructure:"max_upload_size"` // Maximum file size in bytes
	AllowedFormats []string `mapstructure:"allowed_formats"` // Allowed file extensions
}

// DefaultValidationConfig returns the default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		MaxFileSize:    200 * 1024 * 1024, // 200MB
		AllowedFormats: []string{".wav", ".mp3", ".flac", ".m4a", ".mp4", ".aac", ".ogg", ".opus"},
	}
}

// UploadValidator validates uploaded audio files according to configured rules
type UploadValidator struct {
	config *ValidationConfig
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(config *ValidationConfig) *UploadValidator {
	if config == nil {
		config = DefaultValidationConfig()
	}
	return &UploadValidator{
		config: config,
	}
}

// ValidateName checks the filename extension against the allowed formats
func (v *UploadValidator) ValidateName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(v.config.AllowedFormats) == 0 {
		return nil
	}
	for _, allowed := range v.config.AllowedFormats {
		if strings.EqualFold(ext, allowed) {
			return nil
		}
	}
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// ValidateSize checks the upload size against the configured maximum
func (v *UploadValidator) ValidateSize(size int64) error {
	if v.config.MaxFileSize > 0 && size > v.config.MaxFileSize {
		return fmt.Errorf("%w: %s exceeds %s", ErrFileTooLarge,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(v.config.MaxFileSize)))
	}
	return nil
}

// ValidateContent decodes the header of the file at path for the formats
// that can be checked cheaply.
func (v *UploadValidator) ValidateContent(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		if !wav.NewDecoder(f).IsValidFile() {
			return fmt.Errorf("%w: not a valid WAV file", ErrInvalidAudio)
		}
	case ".mp3":
		if _, err := mp3.NewDecoder(f); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAudio, err)
		}
	case ".flac", ".ogg", ".opus", ".m4a", ".mp4":
		if _, _, err := tag.Identify(f); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAudio, err)
		}
	}
	return nil
}
