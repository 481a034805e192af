package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DiskStorage implements ObjectStore using local disk
type DiskStorage struct {
	logger    *zap.Logger
	baseDir   string
	publicURL string
}

// NewDiskStorage creates a new disk storage. publicURL is the prefix the
// base directory is served under.
func NewDiskStorage(logger *zap.Logger, baseDir, publicURL string) (*DiskStorage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &DiskStorage{
		logger:    logger.Named("storage.disk"),
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// BaseDir returns the directory objects are written to
func (s *DiskStorage) BaseDir() string {
	return s.baseDir
}

// Put implements ObjectStore
func (s *DiskStorage) Put(ctx context.Context, objectPath string, r io.Reader, _, _ string) error {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	filePath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return ErrObjectExists
	}
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, &ctxReader{ctx: ctx, r: r}); err != nil {
		file.Close()
		_ = os.Remove(filePath)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(filePath)
		return err
	}
	s.logger.Debug("stored object", zap.String("path", clean))
	return nil
}

// List implements ObjectStore. A missing folder lists as empty.
func (s *DiskStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	clean, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
	if errors.Is(err, fs.ErrNotExist) {
		return []Object{}, nil
	}
	if err != nil {
		return nil, err
	}

	objects := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{
			Name:      entry.Name(),
			Path:      clean + "/" + entry.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	return objects, nil
}

// PublicURL implements ObjectStore
func (s *DiskStorage) PublicURL(objectPath string) string {
	return s.publicURL + "/" + escapePath(strings.Trim(objectPath, "/"))
}

// ctxReader stops a copy once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
