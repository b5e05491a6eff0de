package handlers

import (
	"net/http"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AnimalHandlers handles animal endpoints
type AnimalHandlers struct {
	base
	animalService services.AnimalService
}

func NewAnimalHandlers(animalService services.AnimalService, logger *zap.Logger) *AnimalHandlers {
	return &AnimalHandlers{base: base{logger: logger}, animalService: animalService}
}

func (h *AnimalHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	speciesID, err := queryUUID(c, "species_id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	if speciesID != nil {
		result, err := h.animalService.ListBySpecies(ctx, p, *speciesID, page)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
	result, err := h.animalService.ListByOrganization(ctx, p, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListBySpecies handles GET /species/:id/animals
func (h *AnimalHandlers) ListBySpecies(c echo.Context) error {
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
	result, err := h.animalService.ListBySpecies(c.Request().Context(), p, speciesID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AnimalHandlers) Count(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	n, err := h.animalService.CountByOrganization(c.Request().Context(), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *AnimalHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.CreateAnimalRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	animal, err := h.animalService.Create(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, animal)
}

func (h *AnimalHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	animal, err := h.animalService.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, animal)
}

func (h *AnimalHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req services.UpdateAnimalRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	animal, err := h.animalService.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, animal)
}

func (h *AnimalHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.animalService.Delete(c.Request().Context(), p, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
