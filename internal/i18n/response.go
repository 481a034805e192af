package i18n

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondWithError sends an HTTP error response for err.
// Errors without a code are reported as a generic internal error; their text is not exposed.
func RespondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var errWithCode *ErrorWithCode
	if !errors.As(err, &errWithCode) {
		errWithCode = ErrInternalServer
	}

	c.AbortWithStatusJSON(int(errWithCode.GetCode()), gin.H{
		"success": false,
		"error":   errWithCode.TranslateByContext(c),
	})
}

// RespondWithSuccess sends a success HTTP response with an internationalized message
func RespondWithSuccess(c *gin.Context, statusCode int, msgID string, data map[string]any, payload interface{}) {
	response := gin.H{
		"success": true,
		"message": TranslateMessage(c, msgID, data),
	}

	if payload != nil {
		switch p := payload.(type) {
		case map[string]any:
			for k, v := range p {
				response[k] = v
			}
		case gin.H:
			for k, v := range p {
				response[k] = v
			}
		default:
			response["data"] = payload
		}
	}

	c.JSON(statusCode, response)
}

// SuccessResponse represents a response with success message
type SuccessResponse struct {
	StatusCode int
	MsgID      string
	Data       map[string]interface{}
	Payload    interface{}
}

// With adds a template parameter for the message
func (r *SuccessResponse) With(key string, value interface{}) *SuccessResponse {
	if r.Data == nil {
		r.Data = make(map[string]interface{})
	}
	r.Data[key] = value
	return r
}

// WithPayload sets the payload for the response
func (r *SuccessResponse) WithPayload(payload interface{}) *SuccessResponse {
	r.Payload = payload
	return r
}

// Send sends the response to the client
func (r *SuccessResponse) Send(c *gin.Context) {
	RespondWithSuccess(c, r.StatusCode, r.MsgID, r.Data, r.Payload)
}

// Success creates a new success response with status code 200
func Success(msgID string) *SuccessResponse {
	return &SuccessResponse{StatusCode: http.StatusOK, MsgID: msgID}
}

// Created creates a new success response with status code 201
func Created(msgID string) *SuccessResponse {
	return &SuccessResponse{StatusCode: http.StatusCreated, MsgID: msgID}
}
