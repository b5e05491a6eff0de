package handlers

import (
	"net/http"
	"strings"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CommonBehaviorHandlers struct {
	base
	commonBehaviorService services.CommonBehaviorService
}

func NewCommonBehaviorHandlers(commonBehaviorService services.CommonBehaviorService, logger *zap.Logger) *CommonBehaviorHandlers {
	return &CommonBehaviorHandlers{base: base{logger: logger}, commonBehaviorService: commonBehaviorService}
}

func (h *CommonBehaviorHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	speciesID, err := queryUUID(c, "species_id")
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.commonBehaviorService.ListByOrganization(c.Request().Context(), p, speciesID, strings.TrimSpace(c.QueryParam("search")), page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListBySpecies handles GET /species/:id/common-behaviors
func (h *CommonBehaviorHandlers) ListBySpecies(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	speciesID, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.commonBehaviorService.ListBySpecies(c.Request().Context(), p, speciesID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CommonBehaviorHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.CreateCommonBehaviorRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	cb, err := h.commonBehaviorService.Create(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, cb)
}

func (h *CommonBehaviorHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	cb, err := h.commonBehaviorService.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, cb)
}

func (h *CommonBehaviorHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req services.UpdateCommonBehaviorRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	cb, err := h.commonBehaviorService.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, cb)
}

func (h *CommonBehaviorHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.commonBehaviorService.Delete(c.Request().Context(), p, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
