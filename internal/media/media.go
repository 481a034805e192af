package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/internal/storage"
	"github.com/anachak/anachak/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Image is an uploaded image with its public URL
type Image struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service uploads and lists images in object storage
type Service struct {
	store        storage.ObjectStore
	maxSize      int64
	cacheControl string
	folders      []string
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a media service over store
func NewService(store storage.ObjectStore, cfg config.MediaConfig, m *metrics.Metrics, logger *zap.Logger) *Service {
	maxSize := cfg.MaxSize
	if maxSize <= 0 || maxSize > MaxSize {
		maxSize = MaxSize
	}
	folders := cfg.Folders
	if len(folders) == 0 {
		folders = DefaultFolders
	}
	cacheControl := cfg.CacheControl
	if cacheControl == "" {
		cacheControl = "3600"
	}
	return &Service{
		store:        store,
		maxSize:      maxSize,
		cacheControl: cacheControl,
		folders:      folders,
		metrics:      m,
		logger:       logger.Named("media"),
		now:          time.Now,
	}
}

// MaxSize returns the effective size limit
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Folders returns the allowed upload folders
func (s *Service) Folders() []string {
	return s.folders
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectName builds <unix-millis>_<random>_<sanitized name>
func (s *Service) objectName(name string) string {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if base == "" || strings.HasPrefix(base, ".") {
		base = "image" + base
	}
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + uuid.NewString()[:8] + "_" + base
}

// Upload validates the image and stores it with exactly one Put. size is the
// declared size and is checked before anything is read.
func (s *Service) Upload(ctx context.Context, folder, name string, size int64, r io.Reader) (*Image, error) {
	img, err := s.upload(ctx, folder, name, size, r)
	switch {
	case err == nil:
		s.metrics.Upload("accepted")
	case errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrTooLarge),
		errors.Is(err, ErrEmpty), errors.Is(err, ErrFolder):
		s.metrics.Upload("rejected")
	default:
		s.metrics.Upload("failed")
	}
	return img, err
}

func (s *Service) upload(ctx context.Context, folder, name string, size int64, r io.Reader) (*Image, error) {
	folder = strings.Trim(folder, "/")
	if !allowedFolder(s.folders, folder) {
		return nil, fmt.Errorf("%w: %q", ErrFolder, folder)
	}
	if size > s.maxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, size, s.maxSize)
	}
	if !IsImage(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := validate(name, int64(len(data)), data, s.maxSize); err != nil {
		return nil, err
	}

	objectPath := folder + "/" + s.objectName(name)
	if err := s.store.Put(ctx, objectPath, bytes.NewReader(data), ContentType(name), s.cacheControl); err != nil {
		s.logger.Error("image upload failed", zap.String("path", objectPath), zap.Error(err))
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	s.logger.Info("image uploaded", zap.String("path", objectPath), zap.Int("size", len(data)))
	return &Image{
		Name:      objectPath[len(folder)+1:],
		Path:      objectPath,
		URL:       s.store.PublicURL(objectPath),
		Size:      int64(len(data)),
		UpdatedAt: s.now(),
	}, nil
}

// List returns the images of folder, newest first. Other files are skipped.
func (s *Service) List(ctx context.Context, folder string) ([]Image, error) {
	folder = strings.Trim(folder, "/")
	if !allowedFolder(s.folders, folder) {
		return nil, fmt.Errorf("%w: %q", ErrFolder, folder)
	}
	objects, err := s.store.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	images := make([]Image, 0, len(objects))
	for _, o := range objects {
		if !IsImage(o.Name) {
			continue
		}
		images = append(images, Image{
			Name:      o.Name,
			Path:      o.Path,
			URL:       s.store.PublicURL(o.Path),
			Size:      o.Size,
			UpdatedAt: o.UpdatedAt,
		})
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UpdatedAt.After(images[j].UpdatedAt)
	})
	return images, nil
}
