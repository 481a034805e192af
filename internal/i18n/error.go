package i18n

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents an HTTP status code
type ErrorCode int

const (
	ErrorBadRequest         ErrorCode = http.StatusBadRequest
	ErrorUnauthorized       ErrorCode = http.StatusUnauthorized
	ErrorForbidden          ErrorCode = http.StatusForbidden
	ErrorNotFound           ErrorCode = http.StatusNotFound
	ErrorConflict           ErrorCode = http.StatusConflict
	ErrorRequestTooLarge    ErrorCode = http.StatusRequestEntityTooLarge
	ErrorUnsupportedMedia   ErrorCode = http.StatusUnsupportedMediaType
	ErrorInternalServer     ErrorCode = http.StatusInternalServerError
	ErrorBadGateway         ErrorCode = http.StatusBadGateway
	ErrorServiceUnavailable ErrorCode = http.StatusServiceUnavailable
)

// I18nError represents an internationalized error
type I18nError struct {
	// MessageID is the key used for translation lookup
	MessageID string
	// DefaultMessage is used when translation is not available
	DefaultMessage string
	// Data holds template parameters for the message
	Data map[string]interface{}
}

// New creates a new I18nError with the given message ID
func New(messageID string) *I18nError {
	return NewWithMessage(messageID, messageID)
}

// NewWithMessage creates a new I18nError with a message ID and default message
func NewWithMessage(messageID, defaultMessage string) *I18nError {
	return &I18nError{
		MessageID:      messageID,
		DefaultMessage: defaultMessage,
		Data:           make(map[string]interface{}),
	}
}

// WithParam returns a copy carrying one more template parameter.
// Package-level errors are shared, so they are never mutated in place.
func (e *I18nError) WithParam(key string, value interface{}) *I18nError {
	cp := e.clone()
	cp.Data[key] = value
	return cp
}

func (e *I18nError) clone() *I18nError {
	data := make(map[string]interface{}, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	return &I18nError{MessageID: e.MessageID, DefaultMessage: e.DefaultMessage, Data: data}
}

// Error implements the error interface using the default language
func (e *I18nError) Error() string {
	return e.translate(defaultLang)
}

func (e *I18nError) translate(lang string) string {
	if t := GetTranslator(); t != nil {
		if translated := t.Translate(e.MessageID, lang, e.Data); translated != e.MessageID {
			return translated
		}
	}

	msg := e.DefaultMessage
	for k, v := range e.Data {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{{.%s}}", k), fmt.Sprintf("%v", v))
	}
	return msg
}

// TranslateByContext translates the error based on the context's language preference
func (e *I18nError) TranslateByContext(c *gin.Context) string {
	return e.translate(contextLang(c))
}

// ErrorWithCode is an error with a code that can be used in API responses
type ErrorWithCode struct {
	*I18nError
	Code ErrorCode
}

// NewErrorWithCode creates a new error with a code
func NewErrorWithCode(messageID string, code ErrorCode) *ErrorWithCode {
	return &ErrorWithCode{
		I18nError: New(messageID),
		Code:      code,
	}
}

// NewErrorWithMessage creates a coded error with an English fallback message
func NewErrorWithMessage(messageID, defaultMessage string, code ErrorCode) *ErrorWithCode {
	return &ErrorWithCode{
		I18nError: NewWithMessage(messageID, defaultMessage),
		Code:      code,
	}
}

// WithParam returns a copy carrying one more template parameter
func (e *ErrorWithCode) WithParam(key string, value interface{}) *ErrorWithCode {
	return &ErrorWithCode{I18nError: e.I18nError.WithParam(key, value), Code: e.Code}
}

// WithHttpCode returns a copy with a different HTTP status code
func (e *ErrorWithCode) WithHttpCode(code ErrorCode) *ErrorWithCode {
	return &ErrorWithCode{I18nError: e.I18nError, Code: code}
}

// GetCode returns the error code
func (e *ErrorWithCode) GetCode() ErrorCode {
	return e.Code
}

// Is matches coded errors by message ID so copies made by WithParam still match
func (e *ErrorWithCode) Is(target error) bool {
	var other *ErrorWithCode
	if errors.As(target, &other) {
		return other.MessageID == e.MessageID
	}
	return false
}

// TranslateError translates an error using the context's language preference
func TranslateError(c *gin.Context, err error) string {
	if err == nil {
		return ""
	}

	var errWithCode *ErrorWithCode
	if errors.As(err, &errWithCode) {
		return errWithCode.TranslateByContext(c)
	}

	var i18nErr *I18nError
	if errors.As(err, &i18nErr) {
		return i18nErr.TranslateByContext(c)
	}

	return err.Error()
}
