package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InviteService interface {
	Create(ctx context.Context, actor models.Principal, req CreateInviteRequest) (*models.Invite, error)
	List(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Invite], error)
	Revoke(ctx context.Context, actor models.Principal, id uuid.UUID) error
	Validate(ctx context.Context, code string) (*models.InvitePreview, error)
	ExpirePending(ctx context.Context) (int64, error)
}

type CreateInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	orgRepo    repositories.OrganizationRepository
	staffRepo  repositories.StaffRepository
	notifier   InviteNotifier
	auditSvc   AuditLogsService
	logger     *zap.Logger
	siteURL    string
	ttl        time.Duration
	now        func() time.Time
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	orgRepo repositories.OrganizationRepository,
	staffRepo repositories.StaffRepository,
	notifier InviteNotifier,
	auditSvc AuditLogsService,
	logger *zap.Logger,
	siteURL string,
	ttl time.Duration,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		orgRepo:    orgRepo,
		staffRepo:  staffRepo,
		notifier:   notifier,
		auditSvc:   auditSvc,
		logger:     logger,
		siteURL:    strings.TrimRight(siteURL, "/"),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *inviteService) Create(ctx context.Context, actor models.Principal, req CreateInviteRequest) (*models.Invite, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if err := common.ValidateEmail(req.Email); err != nil {
		return nil, invalid("email", err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, &ValidationError{Field: "role", Message: "role must be admin or user"}
	}

	email := common.NormalizeEmail(req.Email)
	if _, err := s.staffRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, notFoundAs(err, "Organization")
	}

	now := s.now()
	invite := &models.Invite{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Email:          email,
		Role:           role,
		Code:           GenerateInviteCode(),
		Status:         models.InviteStatusPending,
		ExpiresAt:      now.Add(s.ttl),
		CreatedBy:      actor.StaffID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	notification := InviteNotification{
		InviteID:         invite.ID.String(),
		Email:            invite.Email,
		OrganizationName: org.Name,
		Role:             invite.Role,
		Code:             invite.Code,
		SignupURL:        s.siteURL + "/signup?invite=" + url.QueryEscape(invite.Code),
		ExpiresAt:        invite.ExpiresAt,
	}
	if err := s.notifier.NotifyInvite(ctx, notification); err != nil {
		// The invite stays valid; the admin can share the code manually.
		s.logger.Error("failed to enqueue invite email", zap.String("invite_id", invite.ID.String()), zap.Error(err))
	}

	s.auditSvc.RecordChange(ctx, actor, "invites", invite.ID, models.ActionInsert, nil, invite)
	return invite, nil
}

func (s *inviteService) List(ctx context.Context, actor models.Principal, page models.PageRequest) (models.Page[*models.Invite], error) {
	if !actor.IsAdmin() {
		return models.Page[*models.Invite]{}, ErrUnauthorized
	}
	result, err := s.inviteRepo.ListByOrganization(ctx, actor.OrganizationID, page.Normalize(models.MaxPageSize))
	return result, pageError(err)
}

func (s *inviteService) Revoke(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	invite, err := s.inviteRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, "Invite")
	}
	if invite.OrganizationID != actor.OrganizationID {
		return ErrUnauthorized
	}
	if invite.Status != models.InviteStatusPending {
		return &ValidationError{Field: "status", Message: "only pending invites can be revoked"}
	}
	if err := s.inviteRepo.UpdateStatus(ctx, id, models.InviteStatusRevoked); err != nil {
		return notFoundAs(err, "Invite")
	}
	s.auditSvc.RecordChange(ctx, actor, "invites", id, models.ActionUpdate, invite, map[string]interface{}{"status": models.InviteStatusRevoked})
	return nil
}

func (s *inviteService) Validate(ctx context.Context, code string) (*models.InvitePreview, error) {
	invite, err := s.inviteRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInviteUnusable
		}
		return nil, err
	}
	if !invite.Usable(s.now()) {
		return nil, ErrInviteUnusable
	}
	org, err := s.orgRepo.GetByID(ctx, invite.OrganizationID)
	if err != nil {
		return nil, notFoundAs(err, "Organization")
	}
	return &models.InvitePreview{
		Email:            invite.Email,
		Role:             invite.Role,
		OrganizationName: org.Name,
		ExpiresAt:        invite.ExpiresAt,
	}, nil
}

func (s *inviteService) ExpirePending(ctx context.Context) (int64, error) {
	return s.inviteRepo.ExpirePending(ctx, s.now())
}
