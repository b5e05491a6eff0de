package handlers

import (
	"strconv"
	"strings"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func principal(c echo.Context) (models.Principal, error) {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return models.Principal{}, services.ErrUnauthenticated
	}
	return p, nil
}

// pathID parses the named path parameter as a UUID.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, &services.ValidationError{Field: name, Message: "invalid " + name}
	}
	return id, nil
}

func pageRequest(c echo.Context) (models.PageRequest, error) {
	var page models.PageRequest
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, &services.ValidationError{Field: "limit", Message: "limit must be a number"}
		}
		page.Limit = n
	}
	page.Cursor = c.QueryParam("cursor")
	return page, nil
}

// queryMillis parses an optional unix millisecond query parameter.
func queryMillis(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &services.ValidationError{Field: name, Message: name + " must be a unix timestamp in milliseconds"}
	}
	t := common.FromMillis(ms)
	return &t, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &services.ValidationError{Field: name, Message: "invalid " + name}
	}
	return &id, nil
}

// recordQuery reads the shared filters of the behavior and body exam listings.
func recordQuery(c echo.Context) (services.RecordQuery, error) {
	var q services.RecordQuery
	var err error
	if q.AnimalID, err = queryUUID(c, "animal_id"); err != nil {
		return q, err
	}
	if q.StaffID, err = queryUUID(c, "staff_id"); err != nil {
		return q, err
	}
	if q.Start, err = queryMillis(c, "start_date"); err != nil {
		return q, err
	}
	if q.End, err = queryMillis(c, "end_date"); err != nil {
		return q, err
	}
	q.Search = strings.TrimSpace(c.QueryParam("search"))
	return q, nil
}

func bindJSON(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return &services.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return nil
}
