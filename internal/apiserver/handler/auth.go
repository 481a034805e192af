package handler

import (
	"strings"

	"github.com/anachak/anachak/internal/apiserver/middleware"
	"github.com/anachak/anachak/internal/common/dto"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) || !requiredFields(c, req.Missing()) {
		return
	}

	result, err := h.sessions.SignIn(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.logger.Info("login rejected", zap.String("email", req.Email), zap.Error(err))
		h.fail(c, err, i18n.ErrorInvalidCredentials)
		return
	}
	i18n.Success(i18n.SuccessLogin).WithPayload(result).Send(c)
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}
	if err := h.sessions.SignOut(c.Request.Context(), sess.ID); err != nil {
		h.fail(c, err, nil)
		return
	}
	i18n.Success(i18n.SuccessLogout).Send(c)
}

// Me handles GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		i18n.RespondWithError(c, i18n.ErrUnauthorized)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(identity).Send(c)
}
