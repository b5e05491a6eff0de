package services

import (
	"context"
	"io"
	"sync"
	"time"

	"rescuetrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSpeciesRepository struct {
	mock.Mock
}

func (m *MockSpeciesRepository) Create(ctx context.Context, species *models.Species) error {
	return m.Called(ctx, species).Error(0)
}

func (m *MockSpeciesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Species, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Species), args.Error(1)
}

func (m *MockSpeciesRepository) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Species, error) {
	args := m.Called(ctx, organizationID, ids)
	return args.Get(0).([]*models.Species), args.Error(1)
}

func (m *MockSpeciesRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Species], error) {
	args := m.Called(ctx, organizationID, page)
	return args.Get(0).(models.Page[*models.Species]), args.Error(1)
}

func (m *MockSpeciesRepository) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSpeciesRepository) Update(ctx context.Context, species *models.Species) error {
	return m.Called(ctx, species).Error(0)
}

func (m *MockSpeciesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSpeciesRepository) HasAnimals(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockAnimalRepository struct {
	mock.Mock
}

func (m *MockAnimalRepository) Create(ctx context.Context, animal *models.Animal) error {
	return m.Called(ctx, animal).Error(0)
}

func (m *MockAnimalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Animal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Animal), args.Error(1)
}

func (m *MockAnimalRepository) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Animal, error) {
	args := m.Called(ctx, organizationID, ids)
	return args.Get(0).([]*models.Animal), args.Error(1)
}

func (m *MockAnimalRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, speciesID *uuid.UUID, page models.PageRequest) (models.Page[*models.Animal], error) {
	args := m.Called(ctx, organizationID, speciesID, page)
	return args.Get(0).(models.Page[*models.Animal]), args.Error(1)
}

func (m *MockAnimalRepository) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnimalRepository) Update(ctx context.Context, animal *models.Animal) error {
	return m.Called(ctx, animal).Error(0)
}

func (m *MockAnimalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAnimalRepository) HasRecords(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockBehaviorRepository struct {
	mock.Mock
}

func (m *MockBehaviorRepository) Create(ctx context.Context, behavior *models.Behavior) error {
	return m.Called(ctx, behavior).Error(0)
}

func (m *MockBehaviorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Behavior, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Behavior), args.Error(1)
}

func (m *MockBehaviorRepository) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Behavior, error) {
	args := m.Called(ctx, organizationID, ids)
	return args.Get(0).([]*models.Behavior), args.Error(1)
}

func (m *MockBehaviorRepository) List(ctx context.Context, filter models.RecordFilter, page models.PageRequest) (models.Page[*models.Behavior], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(models.Page[*models.Behavior]), args.Error(1)
}

func (m *MockBehaviorRepository) Count(ctx context.Context, filter models.RecordFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBehaviorRepository) Update(ctx context.Context, behavior *models.Behavior) error {
	return m.Called(ctx, behavior).Error(0)
}

func (m *MockBehaviorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockBodyExamRepository struct {
	mock.Mock
}

func (m *MockBodyExamRepository) Create(ctx context.Context, exam *models.BodyExam) error {
	return m.Called(ctx, exam).Error(0)
}

func (m *MockBodyExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BodyExam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BodyExam), args.Error(1)
}

func (m *MockBodyExamRepository) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.BodyExam, error) {
	args := m.Called(ctx, organizationID, ids)
	return args.Get(0).([]*models.BodyExam), args.Error(1)
}

func (m *MockBodyExamRepository) List(ctx context.Context, filter models.RecordFilter, page models.PageRequest) (models.Page[*models.BodyExam], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(models.Page[*models.BodyExam]), args.Error(1)
}

func (m *MockBodyExamRepository) Count(ctx context.Context, filter models.RecordFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBodyExamRepository) Update(ctx context.Context, exam *models.BodyExam) error {
	return m.Called(ctx, exam).Error(0)
}

func (m *MockBodyExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCommonBehaviorRepository struct {
	mock.Mock
}

func (m *MockCommonBehaviorRepository) Create(ctx context.Context, cb *models.CommonBehavior) error {
	return m.Called(ctx, cb).Error(0)
}

func (m *MockCommonBehaviorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CommonBehavior, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommonBehavior), args.Error(1)
}

func (m *MockCommonBehaviorRepository) List(ctx context.Context, filter models.CommonBehaviorFilter, page models.PageRequest) (models.Page[*models.CommonBehavior], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(models.Page[*models.CommonBehavior]), args.Error(1)
}

func (m *MockCommonBehaviorRepository) Update(ctx context.Context, cb *models.CommonBehavior) error {
	return m.Called(ctx, cb).Error(0)
}

func (m *MockCommonBehaviorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *MockStaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) GetByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]*models.Staff, error) {
	args := m.Called(ctx, organizationID, ids)
	return args.Get(0).([]*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Staff], error) {
	args := m.Called(ctx, organizationID, page)
	return args.Get(0).(models.Page[*models.Staff]), args.Error(1)
}

func (m *MockStaffRepository) CountByOrganization(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *MockStaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	return m.Called(ctx, invite).Error(0)
}

func (m *MockInviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, page models.PageRequest) (models.Page[*models.Invite], error) {
	args := m.Called(ctx, organizationID, page)
	return args.Get(0).(models.Page[*models.Invite]), args.Error(1)
}

func (m *MockInviteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockInviteRepository) Accept(ctx context.Context, invite *models.Invite, staff *models.Staff) error {
	return m.Called(ctx, invite, staff).Error(0)
}

func (m *MockInviteRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) CreateWithAdmin(ctx context.Context, org *models.Organization, admin *models.Staff) error {
	return m.Called(ctx, org, admin).Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) GetByInviteCode(ctx context.Context, code string) (*models.Organization, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return m.Called(ctx, org).Error(0)
}

func (m *MockOrganizationRepository) UpdateInviteCode(ctx context.Context, id uuid.UUID, code string) error {
	return m.Called(ctx, id, code).Error(0)
}

func (m *MockOrganizationRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	return m.Called(ctx, auditLog).Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, organizationID uuid.UUID, filters models.AuditLogFilters, page models.PageRequest) (models.Page[*models.AuditLog], error) {
	args := m.Called(ctx, organizationID, filters, page)
	return args.Get(0).(models.Page[*models.AuditLog]), args.Error(1)
}

// MockCacheService records invalidations and otherwise behaves like an empty cache.
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockCacheService) SetSession(ctx context.Context, session *models.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockCacheService) GetDashboardStats(ctx context.Context, organizationID uuid.UUID, variant string) (*models.DashboardStats, error) {
	args := m.Called(ctx, organizationID, variant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockCacheService) SetDashboardStats(ctx context.Context, organizationID uuid.UUID, variant string, stats *models.DashboardStats, ttl time.Duration) error {
	return m.Called(ctx, organizationID, variant, stats, ttl).Error(0)
}

func (m *MockCacheService) InvalidateOrganizationCache(ctx context.Context, organizationID uuid.UUID) error {
	return m.Called(ctx, organizationID).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadObject(ctx context.Context, objectName, contentType string, reader io.Reader, objectSize int64) error {
	return m.Called(ctx, objectName, contentType, reader, objectSize).Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteObject(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockMinioService) BucketName() string {
	return m.Called().String(0)
}

type MockInviteNotifier struct {
	mock.Mock
}

func (m *MockInviteNotifier) NotifyInvite(ctx context.Context, n InviteNotification) error {
	return m.Called(ctx, n).Error(0)
}

type auditEntry struct {
	table  string
	id     uuid.UUID
	action string
}

// recordingAudit is an AuditLogsService that keeps entity changes in memory.
type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (r *recordingAudit) LogActivity(ctx context.Context, organizationID uuid.UUID, tableName, recordID, action string, changedBy *uuid.UUID, oldValues, newValues models.JSONB) error {
	return nil
}

func (r *recordingAudit) RecordChange(ctx context.Context, actor models.Principal, tableName string, recordID uuid.UUID, action string, oldEntity, newEntity interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, auditEntry{table: tableName, id: recordID, action: action})
}

func (r *recordingAudit) ListAuditLogs(ctx context.Context, actor models.Principal, filters models.AuditLogFilters, page models.PageRequest) (models.Page[*models.AuditLog], error) {
	return models.Page[*models.AuditLog]{}, nil
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.table + ":" + e.action
	}
	return out
}

func adminOf(orgID uuid.UUID) models.Principal {
	return models.Principal{StaffID: uuid.New(), OrganizationID: orgID, Role: models.RoleAdmin, Email: "admin@example.org"}
}

func userOf(orgID uuid.UUID) models.Principal {
	return models.Principal{StaffID: uuid.New(), OrganizationID: orgID, Role: models.RoleUser, Email: "user@example.org"}
}

func stringPtr(s string) *string {
	return &s
}
