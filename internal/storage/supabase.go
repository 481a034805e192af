package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/anachak/anachak/pkg/metrics"
	"github.com/anachak/anachak/pkg/trace"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const collaborator = "storage"

// listLimit caps one folder listing
const listLimit = 100

// SupabaseStorage implements ObjectStore over the hosted storage REST API
type SupabaseStorage struct {
	client  *resty.Client
	baseURL string
	bucket  string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

type supabaseObject struct {
	ID        *string   `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
	Metadata  struct {
		Size     int64  `json:"size"`
		Mimetype string `json:"mimetype"`
	} `json:"metadata"`
}

type supabaseError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// NewSupabaseStorage creates a client for <url>/storage/v1 and bucket
func NewSupabaseStorage(cfg config.SupabaseStorageConfig, bucket string, m *metrics.Metrics, logger *zap.Logger) *SupabaseStorage {
	base := strings.TrimRight(cfg.URL, "/")
	client := resty.New().
		SetBaseURL(base+"/storage/v1").
		SetTimeout(cfg.Timeout).
		SetHeader("apikey", cfg.ServiceRoleKey).
		SetAuthToken(cfg.ServiceRoleKey)
	return &SupabaseStorage{
		client:  client,
		baseURL: base,
		bucket:  bucket,
		metrics: m,
		logger:  logger.Named("storage.supabase"),
	}
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func (s *SupabaseStorage) call(ctx context.Context, op string, fn func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	start := time.Now()
	span := trace.Tracer("storage").Start(ctx, "storage."+op).
		WithAttrs(attribute.String("collaborator", collaborator), attribute.String("bucket", s.bucket))
	defer span.End()

	resp, err := fn(span.Ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnavailable, err)
	} else if resp.StatusCode() >= http.StatusInternalServerError {
		err = fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	span.Fail(err)
	s.metrics.RemoteCall(collaborator, op, start, err)
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("storage call canceled", zap.String("op", op))
		return nil, err
	}
	if err != nil {
		s.logger.Error("storage call failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func errorText(resp *resty.Response) string {
	if e, ok := resp.Error().(*supabaseError); ok && e != nil && (e.Message != "" || e.Error != "") {
		if e.Message != "" {
			return e.Message
		}
		return e.Error
	}
	return resp.String()
}

// Put implements ObjectStore. Uploads are sent with x-upsert false.
func (s *SupabaseStorage) Put(ctx context.Context, objectPath string, r io.Reader, contentType, cacheControl string) error {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	resp, err := s.call(ctx, "put", func(ctx context.Context) (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", contentType).
			SetHeader("Cache-Control", "max-age="+cacheControl).
			SetHeader("x-upsert", "false").
			SetBody(r).
			SetError(&supabaseError{}).
			Post("/object/" + url.PathEscape(s.bucket) + "/" + escapePath(clean))
	})
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusConflict {
		return ErrObjectExists
	}
	if e, ok := resp.Error().(*supabaseError); ok && e != nil && e.StatusCode == "409" {
		return ErrObjectExists
	}
	if resp.IsError() {
		return fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}
	return nil
}

// List implements ObjectStore, newest first
func (s *SupabaseStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	clean, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}
	var rows []supabaseObject
	resp, err := s.call(ctx, "list", func(ctx context.Context) (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetBody(map[string]any{
				"prefix": clean,
				"limit":  listLimit,
				"offset": 0,
				"sortBy": map[string]string{"column": "created_at", "order": "desc"},
			}).
			SetResult(&rows).
			SetError(&supabaseError{}).
			Post("/object/list/" + url.PathEscape(s.bucket))
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list rejected (status %d): %s", resp.StatusCode(), errorText(resp))
	}

	objects := make([]Object, 0, len(rows))
	for _, row := range rows {
		// folders come back without an id
		if row.ID == nil {
			continue
		}
		updated := row.UpdatedAt
		if updated.IsZero() {
			updated = row.CreatedAt
		}
		objects = append(objects, Object{
			Name:        row.Name,
			Path:        clean + "/" + row.Name,
			Size:        row.Metadata.Size,
			ContentType: row.Metadata.Mimetype,
			UpdatedAt:   updated,
		})
	}
	return objects, nil
}

// PublicURL implements ObjectStore
func (s *SupabaseStorage) PublicURL(objectPath string) string {
	return s.baseURL + "/storage/v1/object/public/" + url.PathEscape(s.bucket) + "/" + escapePath(strings.Trim(objectPath, "/"))
}
