package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// AudioFile is an uploaded audio file owned by a user. FilenameOriginal is the
// user-facing name and is unique per user; FilenameUnique is the stored object name.
type AudioFile struct {
	ID               int64
	UserID           int64
	FilenameOriginal string
	FilenameUnique   string
	Filepath         string
	CreatedAt        time.Time
}

var allowedExtensions = map[string]struct{}{
	".mp3": {},
	".wav": {},
	".ogg": {},
	".aac": {},
	".m4a": {},
}

var allowedContentTypes = map[string]struct{}{
	"audio/mpeg":  {},
	"audio/wav":   {},
	"audio/ogg":   {},
	"audio/aac":   {},
	"audio/x-m4a": {},
}

// Extension returns the lower-cased extension of name including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// AllowedExtension reports whether name carries a supported audio extension.
func AllowedExtension(name string) bool {
	_, ok := allowedExtensions[Extension(name)]
	return ok
}

// AllowedContentType reports whether ct is a supported audio MIME type. An empty ct is accepted.
func AllowedContentType(ct string) bool {
	if ct == "" {
		return true
	}
	_, ok := allowedContentTypes[strings.ToLower(ct)]
	return ok
}
