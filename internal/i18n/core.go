package i18n

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/anachak/anachak/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	translatorOnce sync.Once
	translator     *I18n
	defaultLang    = cnst.LangDefault

	supportedLangs = []string{cnst.LangEN, cnst.LangKM}
)

// SetDefaultLanguage sets the language used when a request names none we support
func SetDefaultLanguage(lang string) {
	defaultLang = lang
}

// InitTranslator initializes the global translator
func InitTranslator(translationsPath string) error {
	var initErr error
	translatorOnce.Do(func() {
		translator = NewI18n(language.English)
		initErr = translator.LoadTranslations(translationsPath)
	})
	return initErr
}

// GetTranslator returns the global translator, or nil before InitTranslator
func GetTranslator() *I18n {
	return translator
}

// I18n manages internationalization and translations
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a new I18n instance with the specified default language
func NewI18n(defaultLang language.Tag) *I18n {
	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &I18n{
		bundle:      bundle,
		defaultLang: defaultLang,
	}
}

// LoadTranslations loads every *.toml file in the directory
func (i *I18n) LoadTranslations(translationsDir string) error {
	files, err := os.ReadDir(translationsDir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(translationsDir, file.Name())); err != nil {
			return fmt.Errorf("failed to load %s: %w", file.Name(), err)
		}
	}

	return nil
}

// Translate returns a localized string, or msgID when no translation exists.
// A message missing in lang falls back to the default language.
func (i *I18n) Translate(msgID string, lang string, templateData map[string]interface{}) string {
	localizer := i18n.NewLocalizer(i.bundle, language.Make(lang).String(), i.defaultLang.String())

	lc := &i18n.LocalizeConfig{MessageID: msgID}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}

	msg, err := localizer.Localize(lc)
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if msg == "" || !errors.As(err, &notFound) {
			return msgID
		}
	}
	return msg
}

// LanguageMiddleware resolves the request language once and stores it on the context
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cnst.XLang, getLanguageFromRequest(c.Request))
		c.Next()
	}
}

// getLanguageFromRequest extracts language preference from HTTP headers
func getLanguageFromRequest(r *http.Request) string {
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return normalizeLang(lang)
	}

	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		first := strings.TrimSpace(strings.Split(strings.Split(acceptLang, ",")[0], ";")[0])
		return normalizeLang(first)
	}

	return defaultLang
}

// normalizeLang reduces a tag such as "km-KH" to a supported base language
func normalizeLang(lang string) string {
	langCode := strings.ToLower(strings.Split(lang, "-")[0])
	for _, supported := range supportedLangs {
		if langCode == supported {
			return langCode
		}
	}
	return defaultLang
}

// contextLang returns the language stored by LanguageMiddleware
func contextLang(c *gin.Context) string {
	if c == nil {
		return defaultLang
	}
	if lang, ok := c.Get(cnst.XLang); ok {
		if s, ok := lang.(string); ok && s != "" {
			return s
		}
	}
	return defaultLang
}

// TranslateMessage translates a message ID using the context's language preference
func TranslateMessage(c *gin.Context, msgID string, data map[string]interface{}) string {
	if t := GetTranslator(); t != nil {
		return t.Translate(msgID, contextLang(c), data)
	}
	return msgID
}
