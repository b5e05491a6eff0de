package handlers

import (
	"net/http"

	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuditLogsHandlers handles audit logs related HTTP requests
type AuditLogsHandlers struct {
	base
	auditLogsService services.AuditLogsService
}

func NewAuditLogsHandlers(auditLogsService services.AuditLogsService, logger *zap.Logger) *AuditLogsHandlers {
	return &AuditLogsHandlers{base: base{logger: logger}, auditLogsService: auditLogsService}
}

// ListAuditLogs handles GET /audit-logs?table=&record_id=&changed_by=&limit=&cursor=
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}

	filters := models.AuditLogFilters{}
	if table := c.QueryParam("table"); table != "" {
		filters.TableName = &table
	}
	if recordID := c.QueryParam("record_id"); recordID != "" {
		filters.RecordID = &recordID
	}
	if filters.ChangedBy, err = queryUUID(c, "changed_by"); err != nil {
		return h.fail(c, err)
	}

	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	logs, err := h.auditLogsService.ListAuditLogs(c.Request().Context(), p, filters, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
