package handlers

import (
	"net/http"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type InviteHandlers struct {
	base
	inviteService services.InviteService
}

func NewInviteHandlers(inviteService services.InviteService, logger *zap.Logger) *InviteHandlers {
	return &InviteHandlers{base: base{logger: logger}, inviteService: inviteService}
}

func (h *InviteHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.CreateInviteRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	invite, err := h.inviteService.Create(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, invite)
}

func (h *InviteHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.inviteService.List(c.Request().Context(), p, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *InviteHandlers) Revoke(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.inviteService.Revoke(c.Request().Context(), p, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Validate is public and backs the signup form.
func (h *InviteHandlers) Validate(c echo.Context) error {
	preview, err := h.inviteService.Validate(c.Request().Context(), c.QueryParam("code"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, preview)
}
