package services

import (
	"errors"
	"fmt"

	"rescuetrack/internal/repositories"
)

var (
	ErrUnauthorized        = errors.New("Unauthorized")
	ErrUnauthenticated     = errors.New("Not authenticated")
	ErrInvalidSpecies      = errors.New("Invalid species")
	ErrInvalidAnimal       = errors.New("Invalid animal")
	ErrSpeciesHasAnimals   = errors.New("Cannot delete species with existing animals")
	ErrAnimalHasRecords    = errors.New("Cannot delete animal with existing records")
	ErrCannotDeleteSelf    = errors.New("Cannot delete yourself")
	ErrEmailInUse          = errors.New("Email already in use")
	ErrInvalidInviteCode   = errors.New("Invalid invite code")
	ErrInviteUnusable      = errors.New("Invalid or expired invite code")
	ErrInviteEmailMismatch = errors.New("Email doesn't match invite")
	ErrInvalidCredentials  = errors.New("Invalid email or password")
	ErrTooManyAttempts     = errors.New("Too many login attempts, try again later")
	ErrSessionExpired      = errors.New("Session expired")
	ErrStorageUnavailable  = errors.New("Report storage is not configured")
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Message: err.Error()}
}

// notFoundAs converts a repository miss into a NotFoundError for resource.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(resource)
	}
	return err
}

// pageError maps an undecodable cursor to a validation error.
func pageError(err error) error {
	if errors.Is(err, repositories.ErrInvalidCursor) {
		return &ValidationError{Field: "cursor", Message: "invalid cursor"}
	}
	return err
}
