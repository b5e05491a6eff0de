package services

import (
	"context"
	"errors"
	"time"

	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
)

// RecordQuery carries the optional filters of behavior and body exam listings.
type RecordQuery struct {
	AnimalID *uuid.UUID
	StaffID  *uuid.UUID
	Start    *time.Time
	End      *time.Time
	Search   string
}

func (q RecordQuery) filter(organizationID uuid.UUID) models.RecordFilter {
	return models.RecordFilter{
		OrganizationID: organizationID,
		AnimalID:       q.AnimalID,
		StaffID:        q.StaffID,
		Start:          q.Start,
		End:            q.End,
		Search:         q.Search,
	}
}

func (q RecordQuery) validate() error {
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return &ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}
	return nil
}

// animalGuard resolves animals against the caller's organization.
type animalGuard struct {
	animalRepo repositories.AnimalRepository
}

func (g animalGuard) check(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	animal, err := g.animalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidAnimal
		}
		return err
	}
	if animal.OrganizationID != actor.OrganizationID {
		return ErrInvalidAnimal
	}
	return nil
}

// checkAll fails with ErrInvalidAnimal unless every id belongs to the caller's organization.
func (g animalGuard) checkAll(ctx context.Context, actor models.Principal, ids []uuid.UUID) error {
	owned, err := g.animalRepo.GetByIDs(ctx, actor.OrganizationID, ids)
	if err != nil {
		return err
	}
	if len(owned) != len(ids) {
		return ErrInvalidAnimal
	}
	return nil
}
