package handler

import (
	"github.com/anachak/anachak/internal/apiserver/cache"
	"github.com/anachak/anachak/internal/i18n"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheStatsResponse represents the response for menu cache statistics
type CacheStatsResponse struct {
	Stats           cache.CacheStats `json:"stats"`
	HealthCheck     HealthStatus     `json:"healthCheck"`
	Recommendations []string         `json:"recommendations,omitempty"`
}

type HealthStatus struct {
	L1Status       string  `json:"l1Status"`
	L2Status       string  `json:"l2Status"`
	OverallHitRate float64 `json:"overallHitRate"`
	Performance    string  `json:"performance"`
}

// CacheStats handles GET /api/cache/stats
func (h *Handler) CacheStats(c *gin.Context) {
	stats := h.menus.Layers().GetStats()
	i18n.Success(i18n.SuccessFetched).WithPayload(CacheStatsResponse{
		Stats:           stats,
		HealthCheck:     healthOf(stats),
		Recommendations: recommendationsFor(stats),
	}).Send(c)
}

// ClearCache handles POST /api/cache/clear and drops every cached menu
func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.menus.Layers().Clear(c.Request.Context()); err != nil {
		h.logger.Error("failed to clear cache", zap.Error(err))
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}
	h.logger.Info("menu cache cleared")
	i18n.Success(i18n.SuccessFetched).Send(c)
}

// InvalidateShopCache handles DELETE /api/cache/shops/:id
func (h *Handler) InvalidateShopCache(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.menus.InvalidateShops(c.Request.Context(), id)
	i18n.Success(i18n.SuccessFetched).WithPayload(gin.H{"shopId": id}).Send(c)
}

func healthOf(stats cache.CacheStats) HealthStatus {
	l1Status := "healthy"
	if stats.L1Memory.Evictions > 100 {
		l1Status = "overloaded"
	} else if stats.L1Memory.Entries > 1000 {
		l1Status = "high_load"
	}

	l2Status := "disabled"
	if stats.L2Redis.Enabled {
		l2Status = "healthy"
		if stats.L2Redis.Errors > 0 {
			l2Status = "degraded"
		}
	}

	performance := "excellent"
	switch {
	case stats.Total.Operations == 0:
		performance = "idle"
	case stats.Total.HitRate < 0.5:
		performance = "poor"
	case stats.Total.HitRate < 0.8:
		performance = "fair"
	}

	return HealthStatus{
		L1Status:       l1Status,
		L2Status:       l2Status,
		OverallHitRate: stats.Total.HitRate,
		Performance:    performance,
	}
}

func recommendationsFor(stats cache.CacheStats) []string {
	var out []string
	if stats.Total.Operations > 0 && stats.Total.HitRate < 0.5 {
		out = append(out, "Hit rate is low; consider a longer l1_ttl")
	}
	if stats.L1Memory.Evictions > 100 {
		out = append(out, "Many L1 evictions; consider raising max_l1_size")
	}
	if stats.L2Redis.Errors > 0 {
		out = append(out, "Redis errors seen; check the cache redis connection")
	}
	return out
}
