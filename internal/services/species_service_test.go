package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"rescuetrack/internal/models"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type SpeciesServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockSpeciesRepository
	mockCache *MockCacheService
	audit     *recordingAudit
	service   SpeciesService
	orgID     uuid.UUID
	actor     models.Principal
	ctx       context.Context
}

func (suite *SpeciesServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockSpeciesRepository{}
	suite.mockRepo.Test(suite.T())
	suite.mockCache = &MockCacheService{}
	suite.mockCache.Test(suite.T())
	suite.audit = &recordingAudit{}
	suite.service = NewSpeciesService(suite.mockRepo, suite.mockCache, suite.audit, zap.NewNop())
	suite.orgID = uuid.New()
	suite.actor = userOf(suite.orgID)
	suite.ctx = context.Background()
}

func (suite *SpeciesServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestSpeciesServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SpeciesServiceTestSuite))
}

func (suite *SpeciesServiceTestSuite) existing() *models.Species {
	return &models.Species{
		ID:             uuid.New(),
		OrganizationID: suite.orgID,
		Name:           "Red fox",
		CreatedBy:      suite.actor.StaffID,
		CreatedAt:      time.Now(),
	}
}

func (suite *SpeciesServiceTestSuite) TestCreate_Success() {
	suite.mockRepo.On("Create", suite.ctx, mock.MatchedBy(func(s *models.Species) bool {
		return s.Name == "Hedgehog" && s.OrganizationID == suite.orgID && s.CreatedBy == suite.actor.StaffID
	})).Return(nil)
	suite.mockCache.On("InvalidateOrganizationCache", suite.ctx, suite.orgID).Return(nil)

	species, err := suite.service.Create(suite.ctx, suite.actor, CreateSpeciesRequest{Name: "  Hedgehog ", Description: stringPtr("Spiny")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Hedgehog", species.Name)
	assert.NotEqual(suite.T(), uuid.Nil, species.ID)
	assert.Equal(suite.T(), []string{"species:" + models.ActionInsert}, suite.audit.actions())
}

func (suite *SpeciesServiceTestSuite) TestCreate_ValidationShortName() {
	_, err := suite.service.Create(suite.ctx, suite.actor, CreateSpeciesRequest{Name: " x "})

	var ve *ValidationError
	require.ErrorAs(suite.T(), err, &ve)
	assert.Equal(suite.T(), "name", ve.Field)
	suite.mockRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *SpeciesServiceTestSuite) TestCreate_CacheFailureIsNotFatal() {
	suite.mockRepo.On("Create", suite.ctx, mock.Anything).Return(nil)
	suite.mockCache.On("InvalidateOrganizationCache", suite.ctx, suite.orgID).Return(errors.New("redis down"))

	_, err := suite.service.Create(suite.ctx, suite.actor, CreateSpeciesRequest{Name: "Badger"})
	assert.NoError(suite.T(), err)
}

func (suite *SpeciesServiceTestSuite) TestGetByID_OtherOrganization() {
	s := suite.existing()
	s.OrganizationID = uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, s.ID).Return(s, nil)

	_, err := suite.service.GetByID(suite.ctx, suite.actor, s.ID)
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *SpeciesServiceTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.mockRepo.On("GetByID", suite.ctx, id).Return(nil, repositories.ErrNotFound)

	_, err := suite.service.GetByID(suite.ctx, suite.actor, id)
	var nf *NotFoundError
	assert.ErrorAs(suite.T(), err, &nf)
}

func (suite *SpeciesServiceTestSuite) TestUpdate_PartialFields() {
	s := suite.existing()
	suite.mockRepo.On("GetByID", suite.ctx, s.ID).Return(s, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.MatchedBy(func(u *models.Species) bool {
		return u.Name == "Red fox" && u.Description != nil && *u.Description == "Vulpes vulpes"
	})).Return(nil)

	updated, err := suite.service.Update(suite.ctx, suite.actor, s.ID, UpdateSpeciesRequest{Description: stringPtr("Vulpes vulpes")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Vulpes vulpes", *updated.Description)
	assert.Equal(suite.T(), []string{"species:" + models.ActionUpdate}, suite.audit.actions())
}

func (suite *SpeciesServiceTestSuite) TestDelete_RejectsSpeciesWithAnimals() {
	s := suite.existing()
	suite.mockRepo.On("GetByID", suite.ctx, s.ID).Return(s, nil)
	suite.mockRepo.On("HasAnimals", suite.ctx, s.ID).Return(true, nil)

	err := suite.service.Delete(suite.ctx, suite.actor, s.ID)
	assert.ErrorIs(suite.T(), err, ErrSpeciesHasAnimals)
	suite.mockRepo.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *SpeciesServiceTestSuite) TestDelete_AnimalAddedConcurrently() {
	s := suite.existing()
	suite.mockRepo.On("GetByID", suite.ctx, s.ID).Return(s, nil)
	suite.mockRepo.On("HasAnimals", suite.ctx, s.ID).Return(false, nil)
	suite.mockRepo.On("Delete", suite.ctx, s.ID).Return(fmt.Errorf("%w: animals_species_id_fkey", repositories.ErrReferenced))

	err := suite.service.Delete(suite.ctx, suite.actor, s.ID)
	assert.ErrorIs(suite.T(), err, ErrSpeciesHasAnimals)
	assert.Empty(suite.T(), suite.audit.actions())
}

func (suite *SpeciesServiceTestSuite) TestDelete_Success() {
	s := suite.existing()
	suite.mockRepo.On("GetByID", suite.ctx, s.ID).Return(s, nil)
	suite.mockRepo.On("HasAnimals", suite.ctx, s.ID).Return(false, nil)
	suite.mockRepo.On("Delete", suite.ctx, s.ID).Return(nil)
	suite.mockCache.On("InvalidateOrganizationCache", suite.ctx, suite.orgID).Return(nil)

	assert.NoError(suite.T(), suite.service.Delete(suite.ctx, suite.actor, s.ID))
	assert.Equal(suite.T(), []string{"species:" + models.ActionDelete}, suite.audit.actions())
}

func (suite *SpeciesServiceTestSuite) TestListByOrganization_InvalidCursor() {
	suite.mockRepo.On("ListByOrganization", suite.ctx, suite.orgID, models.PageRequest{Limit: 5, Cursor: "junk"}).
		Return(models.Page[*models.Species]{}, repositories.ErrInvalidCursor)

	_, err := suite.service.ListByOrganization(suite.ctx, suite.actor, models.PageRequest{Limit: 5, Cursor: "junk"})
	var ve *ValidationError
	require.ErrorAs(suite.T(), err, &ve)
	assert.Equal(suite.T(), "cursor", ve.Field)
}

func (suite *SpeciesServiceTestSuite) TestGetByIDs_DedupesAndSkipsEmpty() {
	empty, err := suite.service.GetByIDs(suite.ctx, suite.actor, nil)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), empty)

	id := uuid.New()
	suite.mockRepo.On("GetByIDs", suite.ctx, suite.orgID, []uuid.UUID{id}).Return([]*models.Species{{ID: id}}, nil)

	got, err := suite.service.GetByIDs(suite.ctx, suite.actor, []uuid.UUID{id, id})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)
}
