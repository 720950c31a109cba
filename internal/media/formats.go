package media

import (
	"path/filepath"
	"strings"
)

// Kind classifies a media file as video or audio.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
}

var audioExtensions = map[string]bool{
	".mp3": true,
}

// IsMediaFile reports whether the filename has a known media extension.
func IsMediaFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return videoExtensions[ext] || audioExtensions[ext]
}

// KindOf classifies a filename by extension. The second return is false
// for non-media files.
func KindOf(filename string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case videoExtensions[ext]:
		return KindVideo, true
	case audioExtensions[ext]:
		return KindAudio, true
	default:
		return "", false
	}
}

// VideoExtensions returns the known video extensions in preference order,
// used when probing for a file by base name.
func VideoExtensions() []string {
	return []string{".mp4", ".webm", ".mkv"}
}

// AudioExtensions returns the known audio extensions in preference order.
func AudioExtensions() []string {
	return []string{".mp3"}
}

// ContentType maps a filename to the MIME type served for it.
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
