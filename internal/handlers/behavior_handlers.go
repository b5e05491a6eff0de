package handlers

import (
	"net/http"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BehaviorHandlers handles behavior record endpoints
type BehaviorHandlers struct {
	base
	behaviorService services.BehaviorService
}

func NewBehaviorHandlers(behaviorService services.BehaviorService, logger *zap.Logger) *BehaviorHandlers {
	return &BehaviorHandlers{base: base{logger: logger}, behaviorService: behaviorService}
}

// List handles GET /behaviors?animal_id=&start_date=&end_date=&search=&limit=&cursor=
func (h *BehaviorHandlers) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	query, err := recordQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.behaviorService.ListByOrganization(c.Request().Context(), p, query, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BehaviorHandlers) ListByAnimal(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	animalID, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.behaviorService.ListByAnimal(c.Request().Context(), p, animalID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BehaviorHandlers) ListByStaff(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	staffID, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	page, err := pageRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	result, err := h.behaviorService.ListByStaff(c.Request().Context(), p, staffID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BehaviorHandlers) Count(c echo.Context) error {
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
	n, err := h.behaviorService.CountByOrganization(c.Request().Context(), p, start, end)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *BehaviorHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.CreateBehaviorRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	behavior, err := h.behaviorService.Create(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, behavior)
}

func (h *BehaviorHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	behavior, err := h.behaviorService.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, behavior)
}

func (h *BehaviorHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req services.UpdateBehaviorRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	behavior, err := h.behaviorService.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, behavior)
}

func (h *BehaviorHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.behaviorService.Delete(c.Request().Context(), p, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
