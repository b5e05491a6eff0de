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
	"github.com/stretchr/testify/suite"
)

type OrganizationServiceTestSuite struct {
	suite.Suite
	orgRepo *MockOrganizationRepository
	audit   *recordingAudit
	service OrganizationService
	org     *models.Organization
	ctx     context.Context
}

func (suite *OrganizationServiceTestSuite) SetupTest() {
	suite.orgRepo = &MockOrganizationRepository{}
	suite.orgRepo.Test(suite.T())
	suite.audit = &recordingAudit{}
	suite.service = NewOrganizationService(suite.orgRepo, suite.audit)
	suite.org = &models.Organization{
		ID:         uuid.New(),
		Name:       "Coastal Wildlife Rescue",
		Address:    "12 Harbour Road",
		Email:      "hello@coastal.example",
		InviteCode: "ABCD1234",
	}
	suite.ctx = context.Background()
}

func (suite *OrganizationServiceTestSuite) TearDownTest() {
	suite.orgRepo.AssertExpectations(suite.T())
}

func TestOrganizationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationServiceTestSuite))
}

func (suite *OrganizationServiceTestSuite) TestUpdate_AdminOnly() {
	_, err := suite.service.Update(suite.ctx, userOf(suite.org.ID), UpdateOrganizationRequest{Name: stringPtr("New name")})
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
	suite.orgRepo.AssertNotCalled(suite.T(), "GetByID", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestUpdate_Success() {
	suite.orgRepo.On("GetByID", suite.ctx, suite.org.ID).Return(suite.org, nil)
	suite.orgRepo.On("Update", suite.ctx, mock.MatchedBy(func(o *models.Organization) bool {
		return o.Name == "Coastal Rescue" && o.Email == "team@coastal.example"
	})).Return(nil)

	org, err := suite.service.Update(suite.ctx, adminOf(suite.org.ID), UpdateOrganizationRequest{
		Name:    stringPtr(" Coastal Rescue "),
		Address: stringPtr("   "),
		Email:   stringPtr(" Team@Coastal.example "),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "12 Harbour Road", org.Address)
	assert.Equal(suite.T(), []string{"organizations:" + models.ActionUpdate}, suite.audit.actions())
}

func (suite *OrganizationServiceTestSuite) TestUpdate_Validation() {
	suite.orgRepo.On("GetByID", suite.ctx, suite.org.ID).Return(suite.org, nil)

	_, err := suite.service.Update(suite.ctx, adminOf(suite.org.ID), UpdateOrganizationRequest{Email: stringPtr("not-an-email")})

	var ve *ValidationError
	require.ErrorAs(suite.T(), err, &ve)
	assert.Equal(suite.T(), "email", ve.Field)
	suite.orgRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *OrganizationServiceTestSuite) TestRegenerateInviteCode_AdminOnly() {
	_, err := suite.service.RegenerateInviteCode(suite.ctx, userOf(suite.org.ID))
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *OrganizationServiceTestSuite) TestRegenerateInviteCode_Success() {
	var stored string
	suite.orgRepo.On("UpdateInviteCode", suite.ctx, suite.org.ID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { stored = args.String(2) }).
		Return(nil)

	code, err := suite.service.RegenerateInviteCode(suite.ctx, adminOf(suite.org.ID))
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), code, 8)
	assert.Equal(suite.T(), stored, code)
	assert.Regexp(suite.T(), "^[A-Z0-9]{8}$", code)
}

func (suite *OrganizationServiceTestSuite) TestGetByInviteCode() {
	suite.orgRepo.On("GetByInviteCode", suite.ctx, "ABCD1234").Return(suite.org, nil)
	suite.orgRepo.On("GetByInviteCode", suite.ctx, "NOPE0000").Return(nil, repositories.ErrNotFound)

	preview, err := suite.service.GetByInviteCode(suite.ctx, " abcd1234 ")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.org.Name, preview.Name)

	_, err = suite.service.GetByInviteCode(suite.ctx, "nope0000")
	assert.ErrorIs(suite.T(), err, ErrInvalidInviteCode)
}
