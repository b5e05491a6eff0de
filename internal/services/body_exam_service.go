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

type BodyExamService interface {
	Create(ctx context.Context, actor models.Principal, req CreateBodyExamRequest) (*models.BodyExam, error)
	Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateBodyExamRequest) (*models.BodyExam, error)
	Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error
	GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.BodyExam, error)

	ListByOrganization(ctx context.Context, actor models.Principal, query RecordQuery, page models.PageRequest) (models.Page[*models.BodyExam], error)
	ListByAnimal(ctx context.Context, actor models.Principal, animalID uuid.UUID, page models.PageRequest) (models.Page[*models.BodyExam], error)
	ListByStaff(ctx context.Context, actor models.Principal, staffID uuid.UUID, page models.PageRequest) (models.Page[*models.BodyExam], error)
	ListByDateRange(ctx context.Context, actor models.Principal, start, end time.Time, page models.PageRequest) (models.Page[*models.BodyExam], error)
	CountByOrganization(ctx context.Context, actor models.Principal, start, end *time.Time) (int64, error)
	GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.BodyExam, error)

	// ListByAnimalsDateRange merges the records of several animals into one offset paged listing.
	ListByAnimalsDateRange(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time, limit int, cursor string) (models.Page[*models.BodyExam], error)
}

type CreateBodyExamRequest struct {
	AnimalID string `json:"animal_id"`
	// Weight in kilograms.
	Weight    *float64 `json:"weight"`
	Diagnosis *string  `json:"diagnosis"`
	Notes     *string  `json:"notes"`
}

type UpdateBodyExamRequest struct {
	Weight    *float64 `json:"weight"`
	Diagnosis *string  `json:"diagnosis"`
	Notes     *string  `json:"notes"`
}

type bodyExamService struct {
	examRepo repositories.BodyExamRepository
	animals  animalGuard
	cacheSvc caching.CacheService
	auditSvc AuditLogsService
	logger   *zap.Logger
	limits   config.LimitsConfig
}

func NewBodyExamService(
	examRepo repositories.BodyExamRepository,
	animalRepo repositories.AnimalRepository,
	cacheSvc caching.CacheService,
	auditSvc AuditLogsService,
	logger *zap.Logger,
	limits config.LimitsConfig,
) BodyExamService {
	return &bodyExamService{
		examRepo: examRepo,
		animals:  animalGuard{animalRepo: animalRepo},
		cacheSvc: cacheSvc,
		auditSvc: auditSvc,
		logger:   logger,
		limits:   limits,
	}
}

func validateExamFields(weight *float64, diagnosis, notes *string) error {
	if weight != nil && *weight <= 0 {
		return &ValidationError{Field: "weight", Message: "weight must be greater than 0"}
	}
	if err := common.ValidateOptionalString(diagnosis, "diagnosis", 2000); err != nil {
		return invalid("diagnosis", err)
	}
	if err := common.ValidateOptionalString(notes, "notes", 5000); err != nil {
		return invalid("notes", err)
	}
	return nil
}

func (s *bodyExamService) load(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.BodyExam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Body exam")
	}
	if exam.OrganizationID != actor.OrganizationID {
		return nil, ErrUnauthorized
	}
	return exam, nil
}

func (s *bodyExamService) Create(ctx context.Context, actor models.Principal, req CreateBodyExamRequest) (*models.BodyExam, error) {
	if err := validateExamFields(req.Weight, req.Diagnosis, req.Notes); err != nil {
		return nil, err
	}
	animalID, err := uuid.Parse(req.AnimalID)
	if err != nil {
		return nil, ErrInvalidAnimal
	}
	if err := s.animals.check(ctx, actor, animalID); err != nil {
		return nil, err
	}

	exam := &models.BodyExam{
		ID:             uuid.New(),
		OrganizationID: actor.OrganizationID,
		AnimalID:       animalID,
		StaffID:        actor.StaffID,
		Weight:         req.Weight,
		Diagnosis:      req.Diagnosis,
		Notes:          req.Notes,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create body exam: %w", err)
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "body_exams", exam.ID, models.ActionInsert, nil, exam)
	return exam, nil
}

func (s *bodyExamService) Update(ctx context.Context, actor models.Principal, id uuid.UUID, req UpdateBodyExamRequest) (*models.BodyExam, error) {
	exam, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := *exam
	if req.Weight != nil {
		exam.Weight = req.Weight
	}
	if req.Diagnosis != nil {
		exam.Diagnosis = req.Diagnosis
	}
	if req.Notes != nil {
		exam.Notes = req.Notes
	}
	if err := validateExamFields(exam.Weight, exam.Diagnosis, exam.Notes); err != nil {
		return nil, err
	}
	exam.UpdatedAt = time.Now()

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, notFoundAs(err, "Body exam")
	}
	s.auditSvc.RecordChange(ctx, actor, "body_exams", id, models.ActionUpdate, &before, exam)
	return exam, nil
}

func (s *bodyExamService) Delete(ctx context.Context, actor models.Principal, id uuid.UUID) error {
	existing, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "Body exam")
	}
	invalidateDashboard(ctx, s.cacheSvc, s.logger, actor.OrganizationID)
	s.auditSvc.RecordChange(ctx, actor, "body_exams", id, models.ActionDelete, existing, nil)
	return nil
}

func (s *bodyExamService) GetByID(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.BodyExam, error) {
	return s.load(ctx, actor, id)
}

func (s *bodyExamService) ListByOrganization(ctx context.Context, actor models.Principal, query RecordQuery, page models.PageRequest) (models.Page[*models.BodyExam], error) {
	if err := query.validate(); err != nil {
		return models.Page[*models.BodyExam]{}, err
	}
	result, err := s.examRepo.List(ctx, query.filter(actor.OrganizationID), page.Normalize(s.limits.MaxPageSize))
	return result, pageError(err)
}

func (s *bodyExamService) ListByAnimal(ctx context.Context, actor models.Principal, animalID uuid.UUID, page models.PageRequest) (models.Page[*models.BodyExam], error) {
	if err := s.animals.check(ctx, actor, animalID); err != nil {
		return models.Page[*models.BodyExam]{}, err
	}
	return s.ListByOrganization(ctx, actor, RecordQuery{AnimalID: &animalID}, page)
}

func (s *bodyExamService) ListByStaff(ctx context.Context, actor models.Principal, staffID uuid.UUID, page models.PageRequest) (models.Page[*models.BodyExam], error) {
	return s.ListByOrganization(ctx, actor, RecordQuery{StaffID: &staffID}, page)
}

func (s *bodyExamService) ListByDateRange(ctx context.Context, actor models.Principal, start, end time.Time, page models.PageRequest) (models.Page[*models.BodyExam], error) {
	return s.ListByOrganization(ctx, actor, RecordQuery{Start: &start, End: &end}, page)
}

func (s *bodyExamService) CountByOrganization(ctx context.Context, actor models.Principal, start, end *time.Time) (int64, error) {
	return s.examRepo.Count(ctx, RecordQuery{Start: start, End: end}.filter(actor.OrganizationID))
}

func (s *bodyExamService) GetByIDs(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]*models.BodyExam, error) {
	if len(ids) == 0 {
		return []*models.BodyExam{}, nil
	}
	return s.examRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(ids))
}

func (s *bodyExamService) ListByAnimalsDateRange(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time, limit int, cursor string) (models.Page[*models.BodyExam], error) {
	if len(animalIDs) == 0 {
		return models.Page[*models.BodyExam]{}, &ValidationError{Field: "animal_ids", Message: "at least one animal is required"}
	}
	if end.Before(start) {
		return models.Page[*models.BodyExam]{}, &ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}
	ids := dedupeIDs(animalIDs)
	if err := s.animals.checkAll(ctx, actor, ids); err != nil {
		return models.Page[*models.BodyExam]{}, err
	}

	rows, err := fanOut(ctx, ids, s.limits.ReportFanOut, func(ctx context.Context, animalID uuid.UUID) ([]*models.BodyExam, error) {
		filter := models.RecordFilter{OrganizationID: actor.OrganizationID, AnimalID: &animalID, Start: &start, End: &end}
		return drain(ctx, s.limits.ReportRecordCap, func(ctx context.Context, page models.PageRequest) (models.Page[*models.BodyExam], error) {
			return s.examRepo.List(ctx, filter, page)
		})
	})
	if err != nil {
		return models.Page[*models.BodyExam]{}, err
	}

	page := models.PageRequest{Limit: limit}.Normalize(s.limits.ReportRecordCap)
	return MergePage(rows, cursor, page.Limit)
}
