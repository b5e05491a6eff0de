package services

import (
	"context"
	"errors"
	"strings"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"
)

type OrganizationService interface {
	Get(ctx context.Context, actor models.Principal) (*models.Organization, error)
	GetByInviteCode(ctx context.Context, code string) (*models.OrganizationPreview, error)
	Update(ctx context.Context, actor models.Principal, req UpdateOrganizationRequest) (*models.Organization, error)
	RegenerateInviteCode(ctx context.Context, actor models.Principal) (string, error)
}

type UpdateOrganizationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
}

type organizationService struct {
	orgRepo  repositories.OrganizationRepository
	auditSvc AuditLogsService
}

func NewOrganizationService(orgRepo repositories.OrganizationRepository, auditSvc AuditLogsService) OrganizationService {
	return &organizationService{orgRepo: orgRepo, auditSvc: auditSvc}
}

func (s *organizationService) Get(ctx context.Context, actor models.Principal) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, notFoundAs(err, "Organization")
	}
	return org, nil
}

func (s *organizationService) GetByInviteCode(ctx context.Context, code string) (*models.OrganizationPreview, error) {
	org, err := s.orgRepo.GetByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, err
	}
	return &models.OrganizationPreview{ID: org.ID, Name: org.Name}, nil
}

func (s *organizationService) Update(ctx context.Context, actor models.Principal, req UpdateOrganizationRequest) (*models.Organization, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, notFoundAs(err, "Organization")
	}
	before := *org

	if v := common.NilIfEmpty(req.Name); v != nil {
		if err := common.ValidateMinLength(*v, "name", 2); err != nil {
			return nil, invalid("name", err)
		}
		org.Name = *v
	}
	if v := common.NilIfEmpty(req.Address); v != nil {
		if err := common.ValidateMinLength(*v, "address", 5); err != nil {
			return nil, invalid("address", err)
		}
		org.Address = *v
	}
	if v := common.NilIfEmpty(req.Email); v != nil {
		if err := common.ValidateEmail(*v); err != nil {
			return nil, invalid("email", err)
		}
		org.Email = common.NormalizeEmail(*v)
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, notFoundAs(err, "Organization")
	}
	s.auditSvc.RecordChange(ctx, actor, "organizations", org.ID, models.ActionUpdate, &before, org)
	return org, nil
}

func (s *organizationService) RegenerateInviteCode(ctx context.Context, actor models.Principal) (string, error) {
	if !actor.IsAdmin() {
		return "", ErrUnauthorized
	}
	code := GenerateInviteCode()
	if err := s.orgRepo.UpdateInviteCode(ctx, actor.OrganizationID, code); err != nil {
		return "", notFoundAs(err, "Organization")
	}
	s.auditSvc.RecordChange(ctx, actor, "organizations", actor.OrganizationID, models.ActionUpdate, nil, map[string]interface{}{"invite_code": "regenerated"})
	return code, nil
}
