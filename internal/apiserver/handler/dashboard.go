package handler

import (
	"github.com/anachak/anachak/internal/apiserver/database"
	"github.com/anachak/anachak/internal/apiserver/middleware"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dashboard handles GET /api/dashboard with the row counts visible to the
// caller. An unresolved identity sees zero counts.
func (h *Handler) Dashboard(c *gin.Context) {
	scope := middleware.ScopeFrom(c)
	if scope == nil {
		h.logger.Warn("caller identity unresolved, returning empty dashboard", zap.String("path", c.FullPath()))
		i18n.Success(i18n.SuccessFetched).WithPayload(&database.Counts{}).Send(c)
		return
	}
	counts, err := h.db.Counts(c.Request.Context(), *scope)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	i18n.Success(i18n.SuccessFetched).WithPayload(counts).Send(c)
}
