// Package storage talks to the object storage collaborator.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrInvalidPath  = errors.New("invalid object path")
	ErrUnavailable  = errors.New("object storage unavailable")
)

// Object is one stored file
type Object struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ObjectStore defines the interface for object storage
type ObjectStore interface {
	// Put stores r at objectPath. An existing object is never overwritten.
	Put(ctx context.Context, objectPath string, r io.Reader, contentType, cacheControl string) error

	// List lists the objects directly under prefix
	List(ctx context.Context, prefix string) ([]Object, error)

	// PublicURL returns the URL clients fetch objectPath from
	PublicURL(objectPath string) string
}

// CleanPath normalizes an object path and rejects escapes out of the bucket
func CleanPath(p string) (string, error) {
	p = strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return path.Clean(p), nil
}

// NewObjectStore creates the object store selected by cfg.Type
func NewObjectStore(cfg *config.StorageConfig, m *metrics.Metrics, logger *zap.Logger) (ObjectStore, error) {
	logger.Info("Initializing object storage", zap.String("type", cfg.Type), zap.String("bucket", cfg.Bucket))
	switch cfg.Type {
	case "disk":
		return NewDiskStorage(logger, cfg.Disk.Path, cfg.Disk.PublicURL)
	case "supabase":
		return NewSupabaseStorage(cfg.Supabase, cfg.Bucket, m, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
