package media

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// DefaultAudioMime is used when nothing better can be inferred
const DefaultAudioMime = "audio/wav"

var audioMimeTypes = map[string]string{
	".wav":  "audio/wav",
	".wave": "audio/wav",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".aac":  "audio/aac",
	".aif":  "audio/aiff",
	".aiff": "audio/aiff",
	".wma":  "audio/x-ms-wma",
	".amr":  "audio/amr",
	".webm": "audio/webm",
}

// InferMimeType guesses a MIME type from the filename extension.
// It returns "" when the extension is unknown.
func InferMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if m, ok := audioMimeTypes[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		if mediaType, _, err := mime.ParseMediaType(m); err == nil {
			return mediaType
		}
	}
	return ""
}

// DetectMimeType infers the MIME type of the file at path, first from its
// name, then from its header, and finally falls back to DefaultAudioMime.
func DetectMimeType(path string) string {
	if m := InferMimeType(path); m != "" {
		return m
	}
	if m := sniffMimeType(path); m != "" {
		return m
	}
	return DefaultAudioMime
}

func sniffMimeType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	_, fileType, err := tag.Identify(f)
	if err != nil {
		return ""
	}
	return mimeForFileType(fileType)
}

func mimeForFileType(fileType tag.FileType) string {
	switch fileType {
	case tag.MP3:
		return "audio/mpeg"
	case tag.FLAC:
		return "audio/flac"
	case tag.OGG:
		return "audio/ogg"
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return "audio/mp4"
	case tag.DSF:
		return "audio/dsf"
	}
	return ""
}
