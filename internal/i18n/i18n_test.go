package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func writeTranslations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.toml"), []byte(`[ErrorShopNotFound]
other = "Shop not found"

[SuccessItemDeleted]
other = "{{.Noun}} deleted successfully!"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "km.toml"), []byte(`[ErrorShopNotFound]
other = "រកមិនឃើញហាង"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	return dir
}

func resetTranslator(t *testing.T, dir string) {
	t.Helper()
	translatorOnce = sync.Once{}
	translator = nil
	t.Cleanup(func() {
		translatorOnce = sync.Once{}
		translator = nil
	})
	if dir != "" {
		require.NoError(t, InitTranslator(dir))
	}
}

func TestTranslate(t *testing.T) {
	i := NewI18n(language.English)
	require.NoError(t, i.LoadTranslations(writeTranslations(t)))

	assert.Equal(t, "Shop not found", i.Translate("ErrorShopNotFound", "en", nil))
	assert.Equal(t, "រកមិនឃើញហាង", i.Translate("ErrorShopNotFound", "km", nil))
	// km falls back to the default language for missing messages
	assert.Equal(t, "Product deleted successfully!", i.Translate("SuccessItemDeleted", "km", map[string]interface{}{"Noun": "Product"}))
	assert.Equal(t, "Missing", i.Translate("Missing", "en", nil))
}

func TestLoadTranslations_MissingDir(t *testing.T) {
	i := NewI18n(language.English)
	assert.Error(t, i.LoadTranslations(filepath.Join(t.TempDir(), "nope")))
}

func TestNormalizeLang(t *testing.T) {
	assert.Equal(t, "km", normalizeLang("km-KH"))
	assert.Equal(t, "en", normalizeLang("EN-us"))
	assert.Equal(t, defaultLang, normalizeLang("fr"))
}

func TestLanguageMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LanguageMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, contextLang(c))
	})

	cases := []struct {
		header, value, want string
	}{
		{cnst.XLang, "km", "km"},
		{"Accept-Language", "km-KH,en;q=0.8", "km"},
		{"Accept-Language", "de-DE", "en"},
		{"", "", "en"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Body.String(), fmt.Sprintf("%s=%s", tc.header, tc.value))
	}
}

func TestWithParamDoesNotMutateShared(t *testing.T) {
	e := ErrorDeleteFailed.WithParam("Noun", "product")
	assert.Empty(t, ErrorDeleteFailed.Data)
	assert.Equal(t, "product", e.Data["Noun"])
	assert.Equal(t, ErrorDeleteFailed.Code, e.Code)
	assert.True(t, errors.Is(e, ErrorDeleteFailed))
	assert.False(t, errors.Is(e, ErrorShopNotFound))
}

func TestErrorFallsBackToDefaultMessage(t *testing.T) {
	resetTranslator(t, "")
	err := ErrMissingFields.WithParam("Fields", "name, price")
	assert.Equal(t, "Please fill in all required fields: name, price", err.Error())
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resetTranslator(t, writeTranslations(t))

	r := gin.New()
	r.Use(LanguageMiddleware())
	r.GET("/coded", func(c *gin.Context) { RespondWithError(c, fmt.Errorf("lookup: %w", ErrorShopNotFound)) })
	r.GET("/plain", func(c *gin.Context) { RespondWithError(c, errors.New("pq: connection refused")) })

	req := httptest.NewRequest(http.MethodGet, "/coded", nil)
	req.Header.Set(cnst.XLang, "km")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "រកមិនឃើញហាង", body["error"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestSuccessResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resetTranslator(t, writeTranslations(t))

	r := gin.New()
	r.GET("/map", func(c *gin.Context) {
		Success(SuccessItemDeleted).With("Noun", "Product").WithPayload(gin.H{"removedId": 4}).Send(c)
	})
	r.POST("/obj", func(c *gin.Context) {
		Created(SuccessItemDeleted).With("Noun", "Shop").WithPayload([]int{1, 2}).Send(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Product deleted successfully!", body["message"])
	assert.Equal(t, float64(4), body["removedId"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/obj", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	body = map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []any{float64(1), float64(2)}, body["data"])
}
