package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anachak/anachak/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFakeSupabase(t *testing.T, handler http.HandlerFunc) *SupabaseStorage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSupabaseStorage(config.SupabaseStorageConfig{
		URL:            srv.URL,
		ServiceRoleKey: "service-key",
		Timeout:        5 * time.Second,
	}, "anachak", nil, zap.NewNop())
}

func TestSupabaseStorage_Put(t *testing.T) {
	var got struct {
		path, auth, upsert, cache, contentType, body string
	}
	s := newFakeSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.path = r.URL.EscapedPath()
		got.auth = r.Header.Get("Authorization")
		got.upsert = r.Header.Get("x-upsert")
		got.cache = r.Header.Get("Cache-Control")
		got.contentType = r.Header.Get("Content-Type")
		got.body = string(body)
		if strings.HasSuffix(r.URL.Path, "dup.png") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
			return
		}
		_, _ = w.Write([]byte(`{"Key":"anachak/products/a.png"}`))
	})
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "products/a b.png", strings.NewReader("img"), "image/png", "3600"))
	assert.Equal(t, "/storage/v1/object/anachak/products/a%20b.png", got.path)
	assert.Equal(t, "Bearer service-key", got.auth)
	assert.Equal(t, "false", got.upsert)
	assert.Equal(t, "max-age=3600", got.cache)
	assert.Equal(t, "image/png", got.contentType)
	assert.Equal(t, "img", got.body)

	assert.ErrorIs(t, s.Put(ctx, "products/dup.png", strings.NewReader("img"), "image/png", "3600"), ErrObjectExists)
}

func TestSupabaseStorage_List(t *testing.T) {
	s := newFakeSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/v1/object/list/anachak", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"prefix":"products"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":null,"name":"nested"},
			{"id":"1","name":"b.png","updated_at":"2024-05-02T10:00:00Z","metadata":{"size":10,"mimetype":"image/png"}},
			{"id":"2","name":"a.gif","created_at":"2024-05-01T10:00:00Z","metadata":{"size":5,"mimetype":"image/gif"}}
		]`))
	})

	objs, err := s.List(context.Background(), "products")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "products/b.png", objs[0].Path)
	assert.Equal(t, "image/gif", objs[1].ContentType)
	assert.False(t, objs[1].UpdatedAt.IsZero())
}

func TestSupabaseStorage_Errors(t *testing.T) {
	s := newFakeSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := s.List(context.Background(), "products")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Put(context.Background(), "..", strings.NewReader(""), "image/png", "3600"), ErrInvalidPath)
}

func TestSupabaseStorage_CanceledContext(t *testing.T) {
	s := newFakeSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.List(ctx, "products")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupabaseStorage_PublicURL(t *testing.T) {
	s := NewSupabaseStorage(config.SupabaseStorageConfig{URL: "https://proj.supabase.co/"}, "anachak", nil, zap.NewNop())
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/anachak/products/a.png", s.PublicURL("/products/a.png"))
}

func TestNewObjectStore(t *testing.T) {
	st, err := NewObjectStore(&config.StorageConfig{Type: "disk", Disk: config.DiskStorageConfig{Path: t.TempDir()}}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &DiskStorage{}, st)

	st, err = NewObjectStore(&config.StorageConfig{Type: "supabase", Bucket: "b"}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SupabaseStorage{}, st)

	_, err = NewObjectStore(&config.StorageConfig{Type: "s3"}, nil, zap.NewNop())
	assert.Error(t, err)
}
