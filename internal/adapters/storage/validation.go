package storage

import (
	"fmt"
	"strings"
)

// AllowedPhotoTypes are the MIME types accepted for item photos.
var AllowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,
}

// DefaultMaxFileSize applies when no limit is configured (10 MB).
const DefaultMaxFileSize = 10 << 20

// ValidatePhoto checks the content type and size of an item photo.
func ValidatePhoto(contentType string, size, maxSize int64) error {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !AllowedPhotoTypes[ct] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum of %d bytes", size, maxSize)
	}
	return nil
}
