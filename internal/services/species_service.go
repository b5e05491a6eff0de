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

type SpeciesService interface {
	Create(ctx context.Context, actor models.Principal, req CreateSpeciesRequest) (*models.Species, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateSpeciesRequest) (*models.Species, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
	GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Species, error)
	ListByOrganization(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Species], error)
	CountByOrganization(ctx context.Context, actor models.Principal) (int64, error)
	GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Species, error)
}

type CreateSpeciesRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UpdateSpeciesRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type speciesService struct {
	speciesRepo repositories.SpeciesRepository
	cacheSvc    caching.CacheService
	auditSvc    AuditLogsService
	logger      *zap.Logger
}

func NewSpeciesService(speciesRepo repositories.SpeciesRepository, cacheSvc caching.CacheService, auditSvc AuditLogsService, logger *zap.Logger) SpeciesService {
	return &speciesService{speciesRepo: speciesRepo, cacheSvc: cacheSvc, auditSvc: auditSvc, logger: logger}
}

func (s *speciesService) load(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Species, error) {
	species, err := s.speciesRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Species")
	}
	if species.OrganizationID != actor.OrganizationID {
		return nil, ErrUnauthorized
	}
	return species, nil
}

func (s *speciesService) Create(ctx context.Context, actor models.Principal, req CreateSpeciesRequest) (*models.Species, error) {
	if err := common.ValidateMinLength(req.Name, "name", 2); err != nil {
		return nil, invalid("name", err)
	}
	if err := common.ValidateOptionalString(req.Description, "description", 2000); err != nil {
		return nil, invalid("description", err)
	}

	now := time.Now()
	species := &models.Species{
		ID:             uuid.New(),
		OrganizationID: actor.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		CreatedBy:      actor.StaffID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.speciesRepo.Create(ctx, species); err != nil {
		return nil, fmt.Errorf("failed to create species: %w", err)
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "species", species.ID, models.ActionInsert, nil, species)
	return species, nil
}

func (s *speciesService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateSpeciesRequest) (*models.Species, error) {
	species, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *species

	if req.Name != nil {
		if err := common.ValidateMinLength(*req.Name, "name", 2); err != nil {
			return nil, invalid("name", err)
		}
		species.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		if err := common.ValidateOptionalString(req.Description, "description", 2000); err != nil {
			return nil, invalid("description", err)
		}
		species.Description = req.Description
	}
	species.UpdatedAt = time.Now()

	if err := s.speciesRepo.Update(ctx, species); err != nil {
		return nil, notFoundAs(err, "Species")
	}
	s.auditSvc.RecordChange(ctx, actor, "species", id, models.ActionUpdate, &before, species)
	return species, nil
}

func (s *speciesService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	species, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	hasAnimals, err := s.speciesRepo.HasAnimals(ctx, id)
	if err != nil {
		return err
	}
	if hasAnimals {
		return ErrSpeciesHasAnimals
	}
	if err := s.speciesRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrReferenced) {
			return ErrSpeciesHasAnimals
		}
		return notFoundAs(err, "Species")
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "species", id, models.ActionDelete, species, nil)
	return nil
}

func (s *speciesService) GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Species, error) {
	return s.load(ctx, actor, id)
}

func (s *speciesService) ListByOrganization(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Species], error) {
	result, err := s.speciesRepo.ListByOrganization(ctx, actor.OrganizationID, page.Normalize(models.MaxPageSize))
	return result, pageError(err)
}

func (s *speciesService) CountByOrganization(ctx context.Context, actor models.Principal) (int64, error) {
	return s.speciesRepo.CountByOrganization(ctx, actor.OrganizationID)
}

// GetByIDs returns the species of the caller's organization among ids; unknown ids are skipped.
func (s *speciesService) GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Species, error) {
	if len(ids) == 0 {
		return []*models.Species{}, nil
	}
	return s.speciesRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(ids))
}
