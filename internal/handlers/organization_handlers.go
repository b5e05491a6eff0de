package handlers

import (
	"net/http"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OrganizationHandlers struct {
	base
	organizationService services.OrganizationService
}

func NewOrganizationHandlers(organizationService services.OrganizationService, logger *zap.Logger) *OrganizationHandlers {
	return &OrganizationHandlers{base: base{logger: logger}, organizationService: organizationService}
}

func (h *OrganizationHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	org, err := h.organizationService.Get(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// GetByInviteCode is public; it only reveals the organization name.
func (h *OrganizationHandlers) GetByInviteCode(c echo.Context) error {
	preview, err := h.organizationService.GetByInviteCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *OrganizationHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.UpdateOrganizationRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	org, err := h.organizationService.Update(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandlers) RegenerateInviteCode(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	code, err := h.organizationService.RegenerateInviteCode(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"invite_code": code})
}
