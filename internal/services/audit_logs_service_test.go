package services

import (
	"context"
	"errors"
	"testing"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AuditLogsServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAuditLogsRepository
	service  AuditLogsService
	orgID    uuid.UUID
	ctx      context.Context
}

func (suite *AuditLogsServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockAuditLogsRepository{}
	suite.mockRepo.Test(suite.T())
	suite.service = NewAuditLogsService(suite.mockRepo, zap.NewNop())
	suite.orgID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *AuditLogsServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAuditLogsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLogsServiceTestSuite))
}

func (suite *AuditLogsServiceTestSuite) TestLogActivity_Success() {
	staffID := uuid.New()
	suite.mockRepo.On("Create", suite.ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.OrganizationID == suite.orgID && l.TableName == "animals" && l.Action == models.ActionInsert && *l.ChangedBy == staffID
	})).Return(nil)

	err := suite.service.LogActivity(suite.ctx, suite.orgID, "animals", uuid.NewString(), models.ActionInsert, &staffID, nil, models.JSONB{"name": "Rusty"})
	assert.NoError(suite.T(), err)
}

func (suite *AuditLogsServiceTestSuite) TestLogActivity_RequiresTableAndAction() {
	err := suite.service.LogActivity(suite.ctx, suite.orgID, "", "1", models.ActionInsert, nil, nil, nil)
	assert.EqualError(suite.T(), err, "table_name is required")

	err = suite.service.LogActivity(suite.ctx, suite.orgID, "animals", "1", "", nil, nil, nil)
	assert.EqualError(suite.T(), err, "action is required")
}

func (suite *AuditLogsServiceTestSuite) TestRecordChange_SwallowsErrors() {
	suite.mockRepo.On("Create", suite.ctx, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(suite.T(), func() {
		suite.service.RecordChange(suite.ctx, adminOf(suite.orgID), "species", uuid.New(), models.ActionDelete, &models.Species{Name: "Fox"}, nil)
	})
}

func (suite *AuditLogsServiceTestSuite) TestRecordChange_SkipsSecrets() {
	staff := &models.Staff{ID: uuid.New(), Name: "Ana", Email: "ana@example.org", PasswordHash: "$2a$10$secret"}
	suite.mockRepo.On("Create", suite.ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
		_, leaked := l.NewValues["password_hash"]
		_, leakedField := l.NewValues["PasswordHash"]
		return !leaked && !leakedField && l.NewValues["email"] == "ana@example.org" && l.OldValues == nil
	})).Return(nil)

	suite.service.RecordChange(suite.ctx, adminOf(suite.orgID), "staff", staff.ID, models.ActionInsert, nil, staff)
}

func (suite *AuditLogsServiceTestSuite) TestListAuditLogs_AdminOnly() {
	_, err := suite.service.ListAuditLogs(suite.ctx, userOf(suite.orgID), models.AuditLogFilters{}, models.PageRequest{})
	assert.ErrorIs(suite.T(), err, ErrUnauthorized)
}

func (suite *AuditLogsServiceTestSuite) TestListAuditLogs_NormalizesPage() {
	table := "animals"
	filters := models.AuditLogFilters{TableName: &table}
	expected := models.Page[*models.AuditLog]{Page: []*models.AuditLog{{ID: uuid.New(), TableName: table}}, IsDone: true}
	suite.mockRepo.On("List", suite.ctx, suite.orgID, filters, models.PageRequest{Limit: models.DefaultPageSize}).Return(expected, nil)

	page, err := suite.service.ListAuditLogs(suite.ctx, adminOf(suite.orgID), filters, models.PageRequest{})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), page.Page, 1)
}

func TestSnapshot(t *testing.T) {
	assert.Nil(t, Snapshot(nil))
	assert.Nil(t, Snapshot((*models.Species)(nil)))
	assert.Nil(t, Snapshot("plain string"))

	desc := "Small canid"
	snap := Snapshot(&models.Species{Name: "Fox", Description: &desc})
	assert.Equal(t, "Fox", snap["name"])
	assert.Equal(t, &desc, snap["description"])

	raw := models.JSONB{"k": "v"}
	assert.Equal(t, raw, Snapshot(raw))
}
