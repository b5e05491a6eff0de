package middleware

import (
	"rescuetrack/internal/common"
	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
)

// RBACMiddleware gates routes on the caller's role permissions.
type RBACMiddleware struct {
	rbac services.RBACService
}

func NewRBACMiddleware(rbac services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{rbac: rbac}
}

// RequirePermission answers 401 without a principal and 403 when the role lacks permission.
func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if m.rbac.HasPermission(p, permission) {
				return next(c)
			}
			return common.SendForbiddenError(c, "Missing permission "+permission)
		}
	}
}
