package services

import (
	"context"
	"testing"

	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStaffService_UpdateSelf(t *testing.T) {
	repo := &MockStaffRepository{}
	audit := &recordingAudit{}
	svc := NewStaffService(repo, nil, audit, zap.NewNop())
	ctx := context.Background()
	orgID := uuid.New()
	actor := userOf(orgID)
	staff := &models.Staff{ID: actor.StaffID, OrganizationID: orgID, Name: "Jane", Email: "jane@example.org", Role: models.RoleUser}

	repo.On("GetByID", ctx, staff.ID).Return(staff, nil)
	repo.On("GetByEmail", ctx, "jane.doe@example.org").Return(nil, repositories.ErrNotFound)
	repo.On("Update", ctx, mock.MatchedBy(func(s *models.Staff) bool {
		return s.Email == "jane.doe@example.org" && s.Name == "Jane"
	})).Return(nil)

	updated, err := svc.Update(ctx, actor, staff.ID, UpdateStaffRequest{Email: stringPtr("Jane.Doe@example.org")})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.org", updated.Email)
	assert.Equal(t, []string{"staff:" + models.ActionUpdate}, audit.actions())
	repo.AssertExpectations(t)
}

func TestStaffService_UpdateOtherRequiresAdmin(t *testing.T) {
	repo := &MockStaffRepository{}
	svc := NewStaffService(repo, nil, &recordingAudit{}, zap.NewNop())

	_, err := svc.Update(context.Background(), userOf(uuid.New()), uuid.New(), UpdateStaffRequest{Name: stringPtr("Other")})
	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestStaffService_UpdateEmailTaken(t *testing.T) {
	repo := &MockStaffRepository{}
	svc := NewStaffService(repo, nil, &recordingAudit{}, zap.NewNop())
	ctx := context.Background()
	orgID := uuid.New()
	staff := &models.Staff{ID: uuid.New(), OrganizationID: orgID, Name: "Jane", Email: "jane@example.org"}

	repo.On("GetByID", ctx, staff.ID).Return(staff, nil)
	repo.On("GetByEmail", ctx, "bob@example.org").Return(&models.Staff{ID: uuid.New()}, nil)

	_, err := svc.Update(ctx, adminOf(orgID), staff.ID, UpdateStaffRequest{Email: stringPtr("bob@example.org")})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestStaffService_Delete(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	admin := adminOf(orgID)

	t.Run("self", func(t *testing.T) {
		svc := NewStaffService(&MockStaffRepository{}, nil, &recordingAudit{}, zap.NewNop())
		assert.ErrorIs(t, svc.Delete(ctx, admin, admin.StaffID), ErrCannotDeleteSelf)
	})

	t.Run("non admin", func(t *testing.T) {
		svc := NewStaffService(&MockStaffRepository{}, nil, &recordingAudit{}, zap.NewNop())
		assert.ErrorIs(t, svc.Delete(ctx, userOf(orgID), uuid.New()), ErrUnauthorized)
	})

	t.Run("foreign", func(t *testing.T) {
		repo := &MockStaffRepository{}
		other := &models.Staff{ID: uuid.New(), OrganizationID: uuid.New()}
		repo.On("GetByID", ctx, other.ID).Return(other, nil)
		svc := NewStaffService(repo, nil, &recordingAudit{}, zap.NewNop())
		assert.ErrorIs(t, svc.Delete(ctx, admin, other.ID), ErrUnauthorized)
	})

	t.Run("success", func(t *testing.T) {
		repo := &MockStaffRepository{}
		cacheSvc := &MockCacheService{}
		audit := &recordingAudit{}
		member := &models.Staff{ID: uuid.New(), OrganizationID: orgID}
		repo.On("GetByID", ctx, member.ID).Return(member, nil)
		repo.On("Delete", ctx, member.ID).Return(nil)
		cacheSvc.On("InvalidateOrganizationCache", ctx, orgID).Return(nil)

		svc := NewStaffService(repo, cacheSvc, audit, zap.NewNop())
		require.NoError(t, svc.Delete(ctx, admin, member.ID))
		assert.Equal(t, []string{"staff:" + models.ActionDelete}, audit.actions())
		repo.AssertExpectations(t)
		cacheSvc.AssertExpectations(t)
	})
}
