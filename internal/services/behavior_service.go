package services

import (
	"context"
	"fmt"
	"time"

	"rescuetrack/internal/caching"
	"rescuetrack/internal/common"
	"rescuetrack/internal/config"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BehaviorService interface {
	Create(ctx context.Context, actor models.Principal, req CreateBehaviorRequest) (*models.Behavior, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateBehaviorRequest) (*models.Behavior, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
	GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Behavior, error)

	ListByOrganization(ctx context.Context, actor models.Principal, query RecordQuery, page models.PageRequest) (models.Page[*models.Behavior], error)
	ListByAnimal(ctx context.Context, actor models.Principal, animalID uuid.UUID, page models.PageRequest) (models.Page[*models.Behavior], error)
	ListByStaff(ctx context.Context, actor models.Principal, staffID uuid.UUID, page models.PageRequest) (models.Page[*models.Behavior], error)
	ListByDateRange(ctx context.Context, actor models.Principal, start, end time.Time, page models.PageRequest) (models.Page[*models.Behavior], error)
	CountByOrganization(ctx context.Context, actor models.Principal, start, end *time.Time) (int64, error)
	GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Behavior, error)

	// ListByAnimalsDateRange merges the records of several animals into one offset paged listing.
	ListByAnimalsDateRange(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time, limit int, cursor string) (models.Page[*models.Behavior], error)
}

type CreateBehaviorRequest struct {
	AnimalID    string  `json:"animal_id"`
	Behavior    string  `json:"behavior"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type UpdateBehaviorRequest struct {
	Behavior    *string `json:"behavior"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type behaviorService struct {
	behaviorRepo repositories.BehaviorRepository
	animals      animalGuard
	cacheSvc     caching.CacheService
	auditSvc     AuditLogsService
	logger       *zap.Logger
	limits       config.LimitsConfig
}

func NewBehaviorService(
	behaviorRepo repositories.BehaviorRepository,
	animalRepo repositories.AnimalRepository,
	cacheSvc caching.CacheService,
	auditSvc AuditLogsService,
	logger *zap.Logger,
	limits config.LimitsConfig,
) BehaviorService {
	return &behaviorService{
		behaviorRepo: behaviorRepo,
		animals:      animalGuard{animalRepo: animalRepo},
		cacheSvc:     cacheSvc,
		auditSvc:     auditSvc,
		logger:       logger,
		limits:       limits,
	}
}

func validateBehaviorText(description, location *string) error {
	if err := common.ValidateOptionalString(description, "description", 2000); err != nil {
		return invalid("description", err)
	}
	if err := common.ValidateOptionalString(location, "location", 200); err != nil {
		return invalid("location", err)
	}
	return nil
}

func (s *behaviorService) load(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Behavior, error) {
	behavior, err := s.behaviorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Behavior")
	}
	if behavior.OrganizationID != actor.OrganizationID {
		return nil, ErrUnauthorized
	}
	return behavior, nil
}

func (s *behaviorService) Create(ctx context.Context, actor models.Principal, req CreateBehaviorRequest) (*models.Behavior, error) {
	if err := common.ValidateMinLength(req.Behavior, "behavior", 2); err != nil {
		return nil, invalid("behavior", err)
	}
	if err := validateBehaviorText(req.Description, req.Location); err != nil {
		return nil, err
	}
	animalID, err := uuid.Parse(req.AnimalID)
	if err != nil {
		return nil, ErrInvalidAnimal
	}
	if err := s.animals.check(ctx, actor, animalID); err != nil {
		return nil, err
	}

	behavior := &models.Behavior{
		ID:             uuid.New(),
		OrganizationID: actor.OrganizationID,
		AnimalID:       animalID,
		StaffID:        actor.StaffID,
		Behavior:       req.Behavior,
		Description:    req.Description,
		Location:       req.Location,
	}
	if err := s.behaviorRepo.Create(ctx, behavior); err != nil {
		return nil, fmt.Errorf("failed to create behavior: %w", err)
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "behaviors", behavior.ID, models.ActionInsert, nil, behavior)
	return behavior, nil
}

func (s *behaviorService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateBehaviorRequest) (*models.Behavior, error) {
	behavior, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *behavior
	if req.Behavior != nil {
		if err := common.ValidateMinLength(*req.Behavior, "behavior", 2); err != nil {
			return nil, invalid("behavior", err)
		}
		behavior.Behavior = *req.Behavior
	}
	if req.Description != nil {
		behavior.Description = req.Description
	}
	if req.Location != nil {
		behavior.Location = req.Location
	}
	if err := validateBehaviorText(behavior.Description, behavior.Location); err != nil {
		return nil, err
	}
	behavior.UpdatedAt = time.Now()

	if err := s.behaviorRepo.Update(ctx, behavior); err != nil {
		return nil, notFoundAs(err, "Behavior")
	}
	s.auditSvc.RecordChange(ctx, actor, "behaviors", id, models.ActionUpdate, &before, behavior)
	return behavior, nil
}

func (s *behaviorService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	existing, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.behaviorRepo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "Behavior")
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "behaviors", id, models.ActionDelete, existing, nil)
	return nil
}

func (s *behaviorService) GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Behavior, error) {
	return s.load(ctx, actor, id)
}

func (s *behaviorService) ListByOrganization(ctx context.Context, actor models.Principal, query RecordQuery, page models.PageRequest) (models.Page[*models.Behavior], error) {
	if err := query.validate(); err != nil {
		return models.Page[*models.Behavior]{}, err
	}
	result, err := s.behaviorRepo.List(ctx, query.filter(actor.OrganizationID), page.Normalize(s.limits.MaxPageSize))
	return result, pageError(err)
}

func (s *behaviorService) ListByAnimal(ctx context.Context, actor models.Principal, animalID uuid.UUID, page models.PageRequest) (models.Page[*models.Behavior], error) {
	if err := s.animals.check(ctx, actor, animalID); err != nil {
		return models.Page[*models.Behavior]{}, err
	}
	return s.ListByOrganization(ctx, actor, RecordQuery{AnimalID: &animalID}, page)
}

func (s *behaviorService) ListByStaff(ctx context.Context, actor models.Principal, staffID uuid.UUID, page models.PageRequest) (models.Page[*models.Behavior], error) {
	return s.ListByOrganization(ctx, actor, RecordQuery{StaffID: &staffID}, page)
}

func (s *behaviorService) ListByDateRange(ctx context.Context, actor models.Principal, start, end time.Time, page models.PageRequest) (models.Page[*models.Behavior], error) {
	return s.ListByOrganization(ctx, actor, RecordQuery{Start: &start, End: &end}, page)
}

func (s *behaviorService) CountByOrganization(ctx context.Context, actor models.Principal, start, end *time.Time) (int64, error) {
	return s.behaviorRepo.Count(ctx, RecordQuery{Start: start, End: end}.filter(actor.OrganizationID))
}

func (s *behaviorService) GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Behavior, error) {
	if len(ids) == 0 {
		return []*models.Behavior{}, nil
	}
	return s.behaviorRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(ids))
}

func (s *behaviorService) ListByAnimalsDateRange(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time, limit int, cursor string) (models.Page[*models.Behavior], error) {
	if len(animalIDs) == 0 {
		return models.Page[*models.Behavior]{}, &ValidationError{Field: "animal_ids", Message: "at least one animal is required"}
	}
	if end.Before(start) {
		return models.Page[*models.Behavior]{}, &ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}
	ids := dedupeIDs(animalIDs)
	if err := s.animals.checkAll(ctx, actor, ids); err != nil {
		return models.Page[*models.Behavior]{}, err
	}

	rows, err := fanOut(ctx, ids, s.limits.ReportFanOut, func(ctx context.Context, animalID uuid.UUID) ([]*models.Behavior, error) {
		filter := models.RecordFilter{OrganizationID: actor.OrganizationID, AnimalID: &animalID, Start: &start, End: &end}
		return drain(ctx, s.limits.ReportRecordCap, func(ctx context.Context, page models.PageRequest) (models.Page[*models.Behavior], error) {
			return s.behaviorRepo.List(ctx, filter, page)
		})
	})
	if err != nil {
		return models.Page[*models.Behavior]{}, err
	}

	page := models.PageRequest{Limit: limit}.Normalize(s.limits.ReportRecordCap)
	return MergePage(rows, cursor, page.Limit)
}
