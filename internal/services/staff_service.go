package services

import (
	"context"
	"errors"

	"rescuetrack/internal/caching"
	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StaffService interface {
	GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Staff, error)
	ListByOrganization(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Staff], error)
	CountByOrganization(ctx context.Context, actor models.Principal) (int64, error)
	GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Staff, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateStaffRequest) (*models.Staff, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
}

type UpdateStaffRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type staffService struct {
	staffRepo repositories.StaffRepository
	cacheSvc  caching.CacheService
	auditSvc  AuditLogsService
	logger    *zap.Logger
}

func NewStaffService(staffRepo repositories.StaffRepository, cacheSvc caching.CacheService, auditSvc AuditLogsService, logger *zap.Logger) StaffService {
	return &staffService{staffRepo: staffRepo, cacheSvc: cacheSvc, auditSvc: auditSvc, logger: logger}
}

// load fetches a staff member of the actor's organization.
func (s *staffService) load(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Staff")
	}
	if staff.OrganizationID != actor.OrganizationID {
		return nil, ErrUnauthorized
	}
	return staff, nil
}

func (s *staffService) GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Staff, error) {
	return s.load(ctx, actor, id)
}

func (s *staffService) ListByOrganization(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Staff], error) {
	result, err := s.staffRepo.ListByOrganization(ctx, actor.OrganizationID, page.Normalize(models.MaxPageSize))
	return result, pageError(err)
}

func (s *staffService) CountByOrganization(ctx context.Context, actor models.Principal) (int64, error) {
	return s.staffRepo.CountByOrganization(ctx, actor.OrganizationID)
}

func (s *staffService) GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.Staff, error) {
	if len(ids) == 0 {
		return []*models.Staff{}, nil
	}
	return s.staffRepo.GetByIDs(ctx, actor.OrganizationID, ids)
}

func (s *staffService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateStaffRequest) (*models.Staff, error) {
	if !actor.IsAdmin() && actor.StaffID != id {
		return nil, ErrUnauthorized
	}
	staff, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *staff

	if v := common.NilIfEmpty(req.Name); v != nil {
		if err := common.ValidateMinLength(*v, "name", 2); err != nil {
			return nil, invalid("name", err)
		}
		staff.Name = *v
	}
	if v := common.NilIfEmpty(req.Email); v != nil {
		if err := common.ValidateEmail(*v); err != nil {
			return nil, invalid("email", err)
		}
		email := common.NormalizeEmail(*v)
		if email != staff.Email {
			existing, err := s.staffRepo.GetByEmail(ctx, email)
			if err == nil && existing.ID != staff.ID {
				return nil, ErrEmailInUse
			}
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			staff.Email = email
		}
	}

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, notFoundAs(err, "Staff")
	}
	s.auditSvc.RecordChange(ctx, actor, "staff", staff.ID, models.ActionUpdate, &before, staff)
	return staff, nil
}

func (s *staffService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	if actor.StaffID == id {
		return ErrCannotDeleteSelf
	}
	staff, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.staffRepo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "Staff")
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "staff", id, models.ActionDelete, staff, nil)
	return nil
}
