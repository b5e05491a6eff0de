package handlers

import (
	"errors"
	"net/http"

	"rescuetrack/internal/analytics"
	"rescuetrack/internal/common"
	"rescuetrack/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// base carries what every handler group needs to answer errors.
type base struct {
	logger *zap.Logger
}

// fail maps service errors onto the error envelope.
func (b base) fail(c echo.Context, err error) error {
	var validation *services.ValidationError
	var missing *services.NotFoundError

	switch {
	case errors.As(err, &validation):
		return common.SendValidationError(c, validation.Field, validation.Message)
	case errors.As(err, &missing):
		return common.SendNotFoundError(c, missing.Resource)

	case errors.Is(err, services.ErrInvalidSpecies),
		errors.Is(err, services.ErrInvalidAnimal),
		errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrInviteUnusable),
		errors.Is(err, services.ErrInviteEmailMismatch),
		errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, analytics.ErrInvalidActivityType),
		errors.Is(err, analytics.ErrInvalidActivityCursor):
		return common.SendClientError(c, err.Error())

	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrSessionExpired):
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", err.Error(), nil))
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", err.Error(), nil))
	case errors.Is(err, services.ErrUnauthorized):
		return common.SendForbiddenError(c, err.Error())

	case errors.Is(err, services.ErrSpeciesHasAnimals),
		errors.Is(err, services.ErrAnimalHasRecords),
		errors.Is(err, services.ErrEmailInUse):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", err.Error(), nil))
	}

	b.logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err))
	return common.SendServerError(c, "Internal server error")
}
