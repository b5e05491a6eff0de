package handlers

import (
	"net/http"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SpeciesHandlers struct {
	base
	speciesService services.SpeciesService
}

func NewSpeciesHandlers(speciesService services.SpeciesService, logger *zap.Logger) *SpeciesHandlers {
	return &SpeciesHandlers{base: base{logger: logger}, speciesService: speciesService}
}

func (h *SpeciesHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.speciesService.ListByOrganization(c.Request().Context(), p, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SpeciesHandlers) Count(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	n, err := h.speciesService.CountByOrganization(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *SpeciesHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.CreateSpeciesRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	species, err := h.speciesService.Create(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, species)
}

func (h *SpeciesHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	species, err := h.speciesService.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, species)
}

func (h *SpeciesHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req services.UpdateSpeciesRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	species, err := h.speciesService.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, species)
}

func (h *SpeciesHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.speciesService.Delete(c.Request().Context(), p, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
