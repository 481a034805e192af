// Package media validates and stores the images attached to shops, products,
// categories and industries.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize is the largest accepted image, inclusive
const MaxSize int64 = 5 << 20

var (
	ErrUnsupportedType = errors.New("only jpg, png and gif images are allowed")
	ErrTooLarge        = errors.New("image exceeds the size limit")
	ErrEmpty           = errors.New("image is empty")
	ErrFolder          = errors.New("folder is not allowed")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Validate checks the extension, declared size and sniffed content of an
// image. head is the start of the file; 512 bytes are enough to sniff.
func Validate(name string, size int64, head []byte) error {
	return validate(name, size, head, MaxSize)
}

func validate(name string, size int64, head []byte, maxSize int64) error {
	want, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(name))
	}
	if size <= 0 || len(head) == 0 {
		return ErrEmpty
	}
	if size > maxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, size, maxSize)
	}
	got := mimetype.Detect(head)
	if !got.Is(want) {
		return fmt.Errorf("%w: content is %s", ErrUnsupportedType, got.String())
	}
	return nil
}

// ContentType returns the image type implied by name, or "" when not an image
func ContentType(name string) string {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsImage reports whether name carries an allowed image extension
func IsImage(name string) bool {
	return ContentType(name) != ""
}

// DefaultFolders are the upload targets the admin forms use
var DefaultFolders = []string{"products", "shops/profile", "shops/banner", "categories", "industries"}

func allowedFolder(folders []string, folder string) bool {
	return slices.Contains(folders, strings.Trim(folder, "/"))
}
