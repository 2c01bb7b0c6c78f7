package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Neruaka/jana-distribution/internal/service"
)

// StatsHandler exposes the admin dashboard.
type StatsHandler struct {
	Stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler { return &StatsHandler{Stats: stats} }

// Dashboard returns every dashboard block in one payload.
func (h *StatsHandler) Dashboard(c echo.Context) error {
	out, err := h.Stats.Dashboard(c.Request().Context(),
		queryInt(c, "days", 30), queryInt(c, "top", 5))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", out)
}
