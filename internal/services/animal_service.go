package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rescuetrack/internal/caching"
	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AnimalService interface {
	Create(ctx context.Context, actor models.Principal, req CreateAnimalRequest) (*models.Animal, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateAnimalRequest) (*models.Animal, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
	GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Animal, error)
	ListByOrganization(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Animal], error)
	ListBySpecies(ctx context.Context, actor models.Principal, speciesID uuid.UUID, page models.PageRequest) (models.Page[*models.Animal], error)
	CountByOrganization(ctx context.Context, actor models.Principal) (int64, error)
	GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Animal, error)
}

type CreateAnimalRequest struct {
	Name      string `json:"name"`
	SpeciesID string `json:"species_id"`
	// DateOfBirth in unix milliseconds.
	DateOfBirth          *int64  `json:"date_of_birth"`
	Gender               *string `json:"gender"`
	IdentificationNumber *string `json:"identification_number"`
	Status               string  `json:"status"`
}

type UpdateAnimalRequest struct {
	Name                 *string `json:"name"`
	SpeciesID            *string `json:"species_id"`
	DateOfBirth          *int64  `json:"date_of_birth"`
	Gender               *string `json:"gender"`
	IdentificationNumber *string `json:"identification_number"`
	Status               *string `json:"status"`
}

type animalService struct {
	animalRepo  repositories.AnimalRepository
	speciesRepo repositories.SpeciesRepository
	cacheSvc    caching.CacheService
	auditSvc    AuditLogsService
	logger      *zap.Logger
}

func NewAnimalService(
	animalRepo repositories.AnimalRepository,
	speciesRepo repositories.SpeciesRepository,
	cacheSvc caching.CacheService,
	auditSvc AuditLogsService,
	logger *zap.Logger,
) AnimalService {
	return &animalService{
		animalRepo:  animalRepo,
		speciesRepo: speciesRepo,
		cacheSvc:    cacheSvc,
		auditSvc:    auditSvc,
		logger:      logger,
	}
}

func (s *animalService) load(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Animal, error) {
	animal, err := s.animalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Animal")
	}
	if animal.OrganizationID != actor.OrganizationID {
		return nil, ErrUnauthorized
	}
	return animal, nil
}

// checkSpecies verifies the species exists in the caller's organization.
func (s *animalService) checkSpecies(ctx context.Context, actor models.Principal, raw string) (uuid.UUID, error) {
	speciesID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidSpecies
	}
	species, err := s.speciesRepo.GetByID(ctx, speciesID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return uuid.Nil, ErrInvalidSpecies
		}
		return uuid.Nil, err
	}
	if species.OrganizationID != actor.OrganizationID {
		return uuid.Nil, ErrInvalidSpecies
	}
	return speciesID, nil
}

func validateAnimalFields(gender, idNumber *string, status string) error {
	if gender != nil && !models.ValidGender(*gender) {
		return &ValidationError{Field: "gender", Message: "gender must be male, female or unknown"}
	}
	if !models.ValidAnimalStatus(status) {
		return &ValidationError{Field: "status", Message: "status must be active, released or deceased"}
	}
	if err := common.ValidateOptionalString(idNumber, "identification_number", 100); err != nil {
		return invalid("identification_number", err)
	}
	return nil
}

func millisPtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := common.FromMillis(*ms)
	return &t
}

func (s *animalService) Create(ctx context.Context, actor models.Principal, req CreateAnimalRequest) (*models.Animal, error) {
	if err := common.ValidateMinLength(req.Name, "name", 2); err != nil {
		return nil, invalid("name", err)
	}
	status := req.Status
	if status == "" {
		status = models.AnimalStatusActive
	}
	if err := validateAnimalFields(req.Gender, req.IdentificationNumber, status); err != nil {
		return nil, err
	}
	speciesID, err := s.checkSpecies(ctx, actor, req.SpeciesID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	animal := &models.Animal{
		ID:                   uuid.New(),
		OrganizationID:       actor.OrganizationID,
		SpeciesID:            speciesID,
		Name:                 strings.TrimSpace(req.Name),
		DateOfBirth:          millisPtr(req.DateOfBirth),
		Gender:               req.Gender,
		IdentificationNumber: req.IdentificationNumber,
		Status:               status,
		CreatedBy:            actor.StaffID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.animalRepo.Create(ctx, animal); err != nil {
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "animals", animal.ID, models.ActionInsert, nil, animal)
	return animal, nil
}

func (s *animalService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateAnimalRequest) (*models.Animal, error) {
	animal, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *animal

	if req.Name != nil {
		if err := common.ValidateMinLength(*req.Name, "name", 2); err != nil {
			return nil, invalid("name", err)
		}
		animal.Name = strings.TrimSpace(*req.Name)
	}
	if req.SpeciesID != nil {
		speciesID, err := s.checkSpecies(ctx, actor, *req.SpeciesID)
		if err != nil {
			return nil, err
		}
		animal.SpeciesID = speciesID
	}
	if req.DateOfBirth != nil {
		animal.DateOfBirth = millisPtr(req.DateOfBirth)
	}
	if req.Gender != nil {
		animal.Gender = req.Gender
	}
	if req.IdentificationNumber != nil {
		animal.IdentificationNumber = req.IdentificationNumber
	}
	if req.Status != nil {
		animal.Status = *req.Status
	}
	if err := validateAnimalFields(animal.Gender, animal.IdentificationNumber, animal.Status); err != nil {
		return nil, err
	}
	animal.UpdatedAt = time.Now()

	if err := s.animalRepo.Update(ctx, animal); err != nil {
		return nil, notFoundAs(err, "Animal")
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "animals", id, models.ActionUpdate, &before, animal)
	return animal, nil
}

func (s *animalService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	animal, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	hasRecords, err := s.animalRepo.HasRecords(ctx, id)
	if err != nil {
		return err
	}
	if hasRecords {
		return ErrAnimalHasRecords
	}
	if err := s.animalRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrReferenced) {
			return ErrAnimalHasRecords
		}
		return notFoundAs(err, "Animal")
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "animals", id, models.ActionDelete, animal, nil)
	return nil
}

func (s *animalService) GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Animal, error) {
	return s.load(ctx, actor, id)
}

func (s *animalService) ListByOrganization(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Animal], error) {
	result, err := s.animalRepo.ListByOrganization(ctx, actor.OrganizationID, nil, page.Normalize(models.MaxPageSize))
	return result, pageError(err)
}

func (s *animalService) ListBySpecies(ctx context.Context, actor models.Principal, speciesID uuid.UUID, page models.PageRequest) (models.Page[*models.Animal], error) {
	if _, err := s.checkSpecies(ctx, actor, speciesID.String()); err != nil {
		return models.Page[*models.Animal]{}, err
	}
	result, err := s.animalRepo.ListByOrganization(ctx, actor.OrganizationID, &speciesID, page.Normalize(models.MaxPageSize))
	return result, pageError(err)
}

func (s *animalService) CountByOrganization(ctx context.Context, actor models.Principal) (int64, error) {
	return s.animalRepo.CountByOrganization(ctx, actor.OrganizationID)
}

func (s *animalService) GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Animal, error) {
	if len(ids) == 0 {
		return []*models.Animal{}, nil
	}
	return s.animalRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(ids))
}
