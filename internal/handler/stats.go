package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orablu/space-adoption/internal/service"
)

// StatsHandler serves the campaign summary.  Responses are never cached.
type StatsHandler struct {
	Stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

// Get handles GET /api/stats.
func (h *StatsHandler) Get(c echo.Context) error {
	st, err := h.Stats.GetStats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, st)
}
