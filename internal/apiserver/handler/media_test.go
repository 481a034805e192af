package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/anachak/anachak/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func (s *testServer) upload(token, folder, name string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if folder != "" {
		require.NoError(s.t, mw.WriteField("folder", folder))
	}
	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(s.t, err)
		_, err = part.Write(content)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func TestUploadMedia(t *testing.T) {
	s := newTestServer(t)
	_, token := s.account("alice", cnst.RoleUser)

	w := s.upload(token, "products", "latte.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var image media.Image
	decode(t, w, &image)
	assert.Contains(t, image.Path, "products/")
	assert.Contains(t, image.URL, "/media/products/")
	_, err := os.Stat(filepath.Join(s.mediaDir, filepath.FromSlash(image.Path)))
	assert.NoError(t, err)

	w = s.do(http.MethodGet, "/api/media?folder=products", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var images []media.Image
	decode(t, w, &images)
	require.Len(t, images, 1)
	assert.Equal(t, image.Path, images[0].Path)
}

func TestUploadMedia_Rejections(t *testing.T) {
	s := newTestServer(t)
	_, token := s.account("alice", cnst.RoleUser)

	w := s.upload(token, "products", "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = s.upload(token, "products", "fake.png", []byte("GIF89a not really a png"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	big := append(append([]byte{}, pngHeader...), make([]byte, media.MaxSize)...)
	w = s.upload(token, "products", "big.png", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = s.upload(token, "secrets", "latte.png", pngHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(token, "products", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries, err := os.ReadDir(s.mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
