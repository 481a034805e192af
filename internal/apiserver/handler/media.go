package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/anachak/anachak/internal/i18n"
	"github.com/anachak/anachak/internal/media"
	"github.com/anachak/anachak/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipart overhead allowed on top of the image size limit
const uploadSlack = 1 << 20

// ListMedia handles GET /api/media?folder=products
func (h *Handler) ListMedia(c *gin.Context) {
	images, err := h.media.List(c.Request.Context(), c.Query("folder"))
	if err != nil {
		h.failMedia(c, err, i18n.ErrorListFailed)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(images).Send(c)
}

// UploadMedia handles POST /api/media as multipart form data with a "file"
// part and a "folder" field naming one of the upload folders. The declared size is checked before
// any bytes reach storage.
func (h *Handler) UploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.media.MaxSize()+uploadSlack)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			i18n.RespondWithError(c, i18n.ErrorImageTooLarge)
			return
		}
		i18n.RespondWithError(c, i18n.ErrorImageRequired)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrorUploadFailed)
		return
	}
	defer file.Close()

	image, err := h.media.Upload(c.Request.Context(), c.PostForm("folder"), header.Filename, header.Size, file)
	if err != nil {
		h.failMedia(c, err, i18n.ErrorUploadFailed)
		return
	}
	i18n.Created(i18n.SuccessImageUploaded).WithPayload(image).Send(c)
}

// failMedia reports validation errors as such and any storage failure as
// fallback, so the widget can show a retryable message
func (h *Handler) failMedia(c *gin.Context, err error, fallback *i18n.ErrorWithCode) {
	switch {
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrTooLarge),
		errors.Is(err, media.ErrEmpty), errors.Is(err, media.ErrFolder),
		errors.Is(err, storage.ErrInvalidPath), errors.Is(err, context.Canceled):
		h.fail(c, err, nil)
	default:
		h.logger.Warn("media operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		i18n.RespondWithError(c, fallback)
	}
}
