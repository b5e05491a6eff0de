package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serveWithPrincipal(principal *models.Principal, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil)
	if principal != nil {
		req = req.WithContext(common.WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	_ = h(c)
	return rec
}

func TestRequirePermission(t *testing.T) {
	mw := NewRBACMiddleware(services.NewRBACService())

	admin := &models.Principal{StaffID: uuid.New(), OrganizationID: uuid.New(), Role: models.RoleAdmin}
	user := &models.Principal{StaffID: uuid.New(), OrganizationID: uuid.New(), Role: models.RoleUser}

	tests := []struct {
		name       string
		principal  *models.Principal
		permission string
		want       int
	}{
		{"admin reads audit log", admin, services.PermAuditRead, http.StatusNoContent},
		{"user cannot read audit log", user, services.PermAuditRead, http.StatusForbidden},
		{"user writes records", user, services.PermRecordsWrite, http.StatusNoContent},
		{"anonymous", nil, services.PermRecordsRead, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithPrincipal(tt.principal, mw.RequirePermission(tt.permission))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
