package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"rescuetrack/internal/config"
	"rescuetrack/internal/metrics"
	"rescuetrack/internal/models"
	"rescuetrack/internal/reports"
	"rescuetrack/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reportURLExpiry = 24 * time.Hour

// ReportService backs the /api/reports endpoints.
type ReportService interface {
	Behaviors(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time) ([]*models.Behavior, error)
	BodyExams(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time) ([]*models.BodyExam, error)
	Species(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]models.SpeciesSummary, error)
	Staff(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]models.StaffSummary, error)
	GeneratePDF(ctx context.Context, actor models.Principal, req PDFReportRequest) (*PDFReport, error)
}

type PDFReportRequest struct {
	AnimalIDs []uuid.UUID
	Start     time.Time
	End       time.Time
	Store     bool
}

type PDFReport struct {
	Filename string
	Content  []byte
	// Stored is set when the report was uploaded to object storage.
	Stored *models.StoredReport
}

type reportService struct {
	behaviorSvc BehaviorService
	examSvc     BodyExamService
	animalRepo  repositories.AnimalRepository
	speciesRepo repositories.SpeciesRepository
	staffRepo   repositories.StaffRepository
	orgRepo     repositories.OrganizationRepository
	storage     MinioService
	metrics     *metrics.Metrics
	logger      *zap.Logger
	limits      config.LimitsConfig
	now         func() time.Time
}

// NewReportService wires the report queries. storage may be nil when object storage is not configured.
func NewReportService(
	behaviorSvc BehaviorService,
	examSvc BodyExamService,
	animalRepo repositories.AnimalRepository,
	speciesRepo repositories.SpeciesRepository,
	staffRepo repositories.StaffRepository,
	orgRepo repositories.OrganizationRepository,
	storage MinioService,
	m *metrics.Metrics,
	logger *zap.Logger,
	limits config.LimitsConfig,
) ReportService {
	return &reportService{
		behaviorSvc: behaviorSvc,
		examSvc:     examSvc,
		animalRepo:  animalRepo,
		speciesRepo: speciesRepo,
		staffRepo:   staffRepo,
		orgRepo:     orgRepo,
		storage:     storage,
		metrics:     m,
		logger:      logger,
		limits:      limits,
		now:         time.Now,
	}
}

func (s *reportService) Behaviors(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time) ([]*models.Behavior, error) {
	page, err := s.behaviorSvc.ListByAnimalsDateRange(ctx, actor, animalIDs, start, end, s.limits.ReportRecordCap, "")
	if err != nil {
		return nil, err
	}
	s.metrics.ReportsGenerated.WithLabelValues("behaviors").Inc()
	return page.Page, nil
}

func (s *reportService) BodyExams(ctx context.Context, actor models.Principal, animalIDs []uuid.UUID, start, end time.Time) ([]*models.BodyExam, error) {
	page, err := s.examSvc.ListByAnimalsDateRange(ctx, actor, animalIDs, start, end, s.limits.ReportRecordCap, "")
	if err != nil {
		return nil, err
	}
	s.metrics.ReportsGenerated.WithLabelValues("body_exams").Inc()
	return page.Page, nil
}

func (s *reportService) Species(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]models.SpeciesSummary, error) {
	species, err := s.speciesRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make([]models.SpeciesSummary, 0, len(species))
	for _, sp := range species {
		out = append(out, models.SpeciesSummary{ID: sp.ID, Name: sp.Name, Description: sp.Description})
	}
	return out, nil
}

func (s *reportService) Staff(ctx context.Context, actor models.Principal, ids []uuid.UUID) ([]models.StaffSummary, error) {
	staff, err := s.staffRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make([]models.StaffSummary, 0, len(staff))
	for _, st := range staff {
		out = append(out, models.StaffSummary{ID: st.ID, Name: st.Name})
	}
	return out, nil
}

func (s *reportService) GeneratePDF(ctx context.Context, actor models.Principal, req PDFReportRequest) (*PDFReport, error) {
	if req.Store && s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	data, err := s.collect(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	content, err := reports.Render(*data)
	if err != nil {
		return nil, err
	}
	s.metrics.ReportsGenerated.WithLabelValues("pdf").Inc()

	result := &PDFReport{Filename: reports.Filename(data.GeneratedAt), Content: content}
	if !req.Store {
		return result, nil
	}

	objectName := fmt.Sprintf("reports/%s/%d/%s.pdf", actor.OrganizationID, data.GeneratedAt.Year(), uuid.New())
	if err := s.storage.UploadObject(ctx, objectName, "application/pdf", bytes.NewReader(content), int64(len(content))); err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}
	url, err := s.storage.GetPresignedURL(ctx, objectName, reportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign report: %w", err)
	}
	result.Stored = &models.StoredReport{
		ObjectName: objectName,
		URL:        url,
		ExpiresAt:  data.GeneratedAt.Add(reportURLExpiry),
		Size:       int64(len(content)),
	}
	s.logger.Info("report stored",
		zap.String("organization_id", actor.OrganizationID.String()),
		zap.String("object", objectName),
		zap.Int("size", len(content)))
	return result, nil
}

// collect loads everything printed in the report, keeping the requested animal order.
func (s *reportService) collect(ctx context.Context, actor models.Principal, req PDFReportRequest) (*models.ReportData, error) {
	behaviors, err := s.behaviorSvc.ListByAnimalsDateRange(ctx, actor, req.AnimalIDs, req.Start, req.End, s.limits.ReportRecordCap, "")
	if err != nil {
		return nil, err
	}
	exams, err := s.examSvc.ListByAnimalsDateRange(ctx, actor, req.AnimalIDs, req.Start, req.End, s.limits.ReportRecordCap, "")
	if err != nil {
		return nil, err
	}

	ids := dedupeIDs(req.AnimalIDs)
	animals, err := s.animalRepo.GetByIDs(ctx, actor.OrganizationID, ids)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	if err != nil {
		return nil, notFoundAs(err, "Organization")
	}

	speciesIDs := make([]uuid.UUID, 0, len(animals))
	for _, a := range animals {
		speciesIDs = append(speciesIDs, a.SpeciesID)
	}
	species, err := s.speciesRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(speciesIDs))
	if err != nil {
		return nil, err
	}
	speciesByID := make(map[uuid.UUID]*models.Species, len(species))
	for _, sp := range species {
		speciesByID[sp.ID] = sp
	}

	var staffIDs []uuid.UUID
	byAnimalBehaviors := make(map[uuid.UUID][]*models.Behavior)
	for _, b := range behaviors.Page {
		byAnimalBehaviors[b.AnimalID] = append(byAnimalBehaviors[b.AnimalID], b)
		staffIDs = append(staffIDs, b.StaffID)
	}
	byAnimalExams := make(map[uuid.UUID][]*models.BodyExam)
	for _, e := range exams.Page {
		byAnimalExams[e.AnimalID] = append(byAnimalExams[e.AnimalID], e)
		staffIDs = append(staffIDs, e.StaffID)
	}

	staffNames := make(map[string]string)
	if len(staffIDs) > 0 {
		staff, err := s.staffRepo.GetByIDs(ctx, actor.OrganizationID, dedupeIDs(staffIDs))
		if err != nil {
			return nil, err
		}
		for _, st := range staff {
			staffNames[st.ID.String()] = st.Name
		}
	}

	animalByID := make(map[uuid.UUID]*models.Animal, len(animals))
	for _, a := range animals {
		animalByID[a.ID] = a
	}
	sections := make([]models.AnimalReport, 0, len(ids))
	for _, id := range ids {
		a, ok := animalByID[id]
		if !ok {
			continue
		}
		sections = append(sections, models.AnimalReport{
			Animal:    a,
			Species:   speciesByID[a.SpeciesID],
			Behaviors: byAnimalBehaviors[id],
			BodyExams: byAnimalExams[id],
		})
	}

	return &models.ReportData{
		OrganizationName: org.Name,
		Start:            req.Start,
		End:              req.End,
		Animals:          sections,
		StaffNames:       staffNames,
		GeneratedAt:      s.now().UTC(),
	}, nil
}
