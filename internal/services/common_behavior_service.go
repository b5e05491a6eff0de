package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
)

type CommonBehaviorService interface {
	Create(ctx context.Context, actor models.Principal, req CreateCommonBehaviorRequest) (*models.CommonBehavior, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateCommonBehaviorRequest) (*models.CommonBehavior, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
	GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.CommonBehavior, error)
	ListByOrganization(ctx context.Context, actor models.Principal, speciesID *uuid.UUID, search string, page models.PageRequest) (models.Page[*models.CommonBehavior], error)
	ListBySpecies(ctx context.Context, actor models.Principal, speciesID uuid.UUID, page models.PageRequest) (models.Page[*models.CommonBehavior], error)
}

type CreateCommonBehaviorRequest struct {
	SpeciesID   string `json:"species_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCommonBehaviorRequest struct {
	SpeciesID   *string `json:"species_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type commonBehaviorService struct {
	repo        repositories.CommonBehaviorRepository
	speciesRepo repositories.SpeciesRepository
	auditSvc    AuditLogsService
}

func NewCommonBehaviorService(repo repositories.CommonBehaviorRepository, speciesRepo repositories.SpeciesRepository, auditSvc AuditLogsService) CommonBehaviorService {
	return &commonBehaviorService{repo: repo, speciesRepo: speciesRepo, auditSvc: auditSvc}
}

func (s *commonBehaviorService) species(ctx context.Context, actor models.Principal, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidSpecies
	}
	sp, err := s.speciesRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return uuid.Nil, ErrInvalidSpecies
		}
		return uuid.Nil, err
	}
	if sp.OrganizationID != actor.OrganizationID {
		return uuid.Nil, ErrInvalidSpecies
	}
	return id, nil
}

func (s *commonBehaviorService) load(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.CommonBehavior, error) {
	cb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Common behavior")
	}
	if cb.OrganizationID != actor.OrganizationID {
		return nil, ErrUnauthorized
	}
	return cb, nil
}

func (s *commonBehaviorService) Create(ctx context.Context, actor models.Principal, req CreateCommonBehaviorRequest) (*models.CommonBehavior, error) {
	if err := common.ValidateMinLength(req.Name, "name", 2); err != nil {
		return nil, invalid("name", err)
	}
	if err := common.ValidateMinLength(req.Description, "description", 2); err != nil {
		return nil, invalid("description", err)
	}
	speciesID, err := s.species(ctx, actor, req.SpeciesID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cb := &models.CommonBehavior{
		ID:             uuid.New(),
		OrganizationID: actor.OrganizationID,
		SpeciesID:      speciesID,
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		CreatedBy:      actor.StaffID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, cb); err != nil {
		return nil, fmt.Errorf("failed to create common behavior: %w", err)
	}
	s.auditSvc.RecordChange(ctx, actor, "common_behaviors", cb.ID, models.ActionInsert, nil, cb)
	return cb, nil
}

func (s *commonBehaviorService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateCommonBehaviorRequest) (*models.CommonBehavior, error) {
	cb, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *cb

	if req.SpeciesID != nil {
		speciesID, err := s.species(ctx, actor, *req.SpeciesID)
		if err != nil {
			return nil, err
		}
		cb.SpeciesID = speciesID
	}
	if req.Name != nil {
		if err := common.ValidateMinLength(*req.Name, "name", 2); err != nil {
			return nil, invalid("name", err)
		}
		cb.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		if err := common.ValidateMinLength(*req.Description, "description", 2); err != nil {
			return nil, invalid("description", err)
		}
		cb.Description = strings.TrimSpace(*req.Description)
	}
	cb.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, cb); err != nil {
		return nil, notFoundAs(err, "Common behavior")
	}
	s.auditSvc.RecordChange(ctx, actor, "common_behaviors", id, models.ActionUpdate, &before, cb)
	return cb, nil
}

func (s *commonBehaviorService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	cb, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "Common behavior")
	}
	s.auditSvc.RecordChange(ctx, actor, "common_behaviors", id, models.ActionDelete, cb, nil)
	return nil
}

func (s *commonBehaviorService) GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.CommonBehavior, error) {
	return s.load(ctx, actor, id)
}

func (s *commonBehaviorService) ListByOrganization(ctx context.Context, actor models.Principal, speciesID *uuid.UUID, search string, page models.PageRequest) (models.Page[*models.CommonBehavior], error) {
	filter := models.CommonBehaviorFilter{OrganizationID: actor.OrganizationID, SpeciesID: speciesID, Search: search}
	result, err := s.repo.List(ctx, filter, page.Normalize(models.MaxPageSize))
	return result, pageError(err)
}

func (s *commonBehaviorService) ListBySpecies(ctx context.Context, actor models.Principal, speciesID uuid.UUID, page models.PageRequest) (models.Page[*models.CommonBehavior], error) {
	if _, err := s.species(ctx, actor, speciesID.String()); err != nil {
		return models.Page[*models.CommonBehavior]{}, err
	}
	return s.ListByOrganization(ctx, actor, &speciesID, "", page)
}
