package handlers

import (
	"net/http"

	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BodyExamHandlers handles body exam endpoints
type BodyExamHandlers struct {
	base
	examService services.BodyExamService
}

func NewBodyExamHandlers(examService services.BodyExamService, logger *zap.Logger) *BodyExamHandlers {
	return &BodyExamHandlers{base: base{logger: logger}, examService: examService}
}

// List handles GET /body-exams?animal_id=&start_date=&end_date=&search=&limit=&cursor=
func (h *BodyExamHandlers) List(c echo.Context) error {
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
	result, err := h.examService.ListByOrganization(c.Request().Context(), p, query, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BodyExamHandlers) ListByAnimal(c echo.Context) error {
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
	result, err := h.examService.ListByAnimal(c.Request().Context(), p, animalID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BodyExamHandlers) ListByStaff(c echo.Context) error {
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
	result, err := h.examService.ListByStaff(c.Request().Context(), p, staffID, page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *BodyExamHandlers) Count(c echo.Context) error {
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
	n, err := h.examService.CountByOrganization(c.Request().Context(), p, start, end)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *BodyExamHandlers) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req services.CreateBodyExamRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	exam, err := h.examService.Create(c.Request().Context(), p, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, exam)
}

func (h *BodyExamHandlers) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	exam, err := h.examService.GetByID(c.Request().Context(), p, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, exam)
}

func (h *BodyExamHandlers) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req services.UpdateBodyExamRequest
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}
	exam, err := h.examService.Update(c.Request().Context(), p, id, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, exam)
}

func (h *BodyExamHandlers) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.examService.Delete(c.Request().Context(), p, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
