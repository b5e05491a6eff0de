package handlers

import (
	"net/http"
	"strconv"

	"rescuetrack/internal/analytics"
	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DashboardHandlers struct {
	base
	dashboard *analytics.DashboardService
}

func NewDashboardHandlers(dashboard *analytics.DashboardService, logger *zap.Logger) *DashboardHandlers {
	return &DashboardHandlers{base: base{logger: logger}, dashboard: dashboard}
}

// Stats handles GET /dashboard/stats?start_date=&end_date=
func (h *DashboardHandlers) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	start, err := queryMillis(c, "start_date")
	if err != nil {
		return h.fail(c, err)
	}
	end, err := queryMillis(c, "end_date")
	if err != nil {
		return h.fail(c, err)
	}
	stats, err := h.dashboard.Stats(c.Request().Context(), p, start, end)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Activity handles GET /dashboard/activity?type=all|behaviors|exams&cursor=&limit=
func (h *DashboardHandlers) Activity(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	start, err := queryMillis(c, "start_date")
	if err != nil {
		return h.fail(c, err)
	}
	end, err := queryMillis(c, "end_date")
	if err != nil {
		return h.fail(c, err)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return h.fail(c, &services.ValidationError{Field: "limit", Message: "limit must be a number"})
		}
	}
	feed, err := h.dashboard.Activity(c.Request().Context(), p, c.QueryParam("type"), start, end, c.QueryParam("cursor"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, feed)
}
