package middleware

import (
	"net/http"
	"strings"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const auditTable = "http_requests"

// AuditMiddleware records mutating requests of authenticated callers
type AuditMiddleware struct {
	auditService services.AuditLogsService
	logger       *zap.Logger
}

func NewAuditMiddleware(auditService services.AuditLogsService, logger *zap.Logger) *AuditMiddleware {
	return &AuditMiddleware{
		auditService: auditService,
		logger:       logger,
	}
}

// AuditRequest logs the request after the handler ran. Failures never fail the request.
func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req := c.Request()
			if !shouldAudit(req.Method, c.Path()) {
				return err
			}
			principal, ok := common.GetPrincipalFromContext(req.Context())
			if !ok {
				return err
			}

			status := c.Response().Status
			if he, isHTTP := err.(*echo.HTTPError); isHTTP {
				status = he.Code
			}
			data := models.JSONB{
				"method":     req.Method,
				"route":      c.Path(),
				"path":       req.URL.Path,
				"status":     status,
				"ip":         c.RealIP(),
				"user_agent": req.UserAgent(),
				"timestamp":  time.Now().UTC().Format(time.RFC3339),
			}
			if err != nil {
				data["error"] = err.Error()
			}

			staffID := principal.StaffID
			action := req.Method + " " + c.Path()
			if logErr := m.auditService.LogActivity(req.Context(), principal.OrganizationID, auditTable, req.URL.Path, action, &staffID, nil, data); logErr != nil {
				m.logger.Error("failed to log audit activity", zap.String("action", action), zap.Error(logErr))
			}
			return err
		}
	}
}

// shouldAudit selects mutating requests outside the probe and docs endpoints.
func shouldAudit(method, path string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	for _, prefix := range []string{"/health", "/metrics", "/swagger"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
