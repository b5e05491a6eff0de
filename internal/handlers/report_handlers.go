package handlers

import (
	"net/http"
	"time"

	"rescuetrack/internal/common"
	"rescuetrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ReportHandlers serves the multi-animal report queries and the PDF export
type ReportHandlers struct {
	base
	reportService services.ReportService
}

func NewReportHandlers(reportService services.ReportService, logger *zap.Logger) *ReportHandlers {
	return &ReportHandlers{base: base{logger: logger}, reportService: reportService}
}

// RecordReportRequest selects the animals and the period of a report. Dates are unix milliseconds.
// Both snake_case and camelCase keys are accepted; snake_case wins when both are sent.
type RecordReportRequest struct {
	AnimalIDs []string `json:"animal_ids"`
	StartDate *int64   `json:"start_date"`
	EndDate   *int64   `json:"end_date"`
	// Store uploads the generated PDF and returns a download link instead of the file.
	Store bool `json:"store"`

	AnimalIDsCamel []string `json:"animalIds" swaggerignore:"true"`
	StartDateCamel *int64   `json:"startDate" swaggerignore:"true"`
	EndDateCamel   *int64   `json:"endDate" swaggerignore:"true"`
}

func (r *RecordReportRequest) merge() {
	if len(r.AnimalIDs) == 0 {
		r.AnimalIDs = r.AnimalIDsCamel
	}
	if r.StartDate == nil {
		r.StartDate = r.StartDateCamel
	}
	if r.EndDate == nil {
		r.EndDate = r.EndDateCamel
	}
}

type SpeciesReportRequest struct {
	SpeciesIDs      []string `json:"species_ids"`
	SpeciesIDsCamel []string `json:"speciesIds" swaggerignore:"true"`
}

func (r *SpeciesReportRequest) ids() []string {
	if len(r.SpeciesIDs) > 0 {
		return r.SpeciesIDs
	}
	return r.SpeciesIDsCamel
}

type StaffReportRequest struct {
	StaffIDs      []string `json:"staff_ids"`
	StaffIDsCamel []string `json:"staffIds" swaggerignore:"true"`
}

func (r *StaffReportRequest) ids() []string {
	if len(r.StaffIDs) > 0 {
		return r.StaffIDs
	}
	return r.StaffIDsCamel
}

type recordSelection struct {
	animalIDs  []uuid.UUID
	start, end time.Time
}

// parseSelection validates the body, answering the 400 itself when it returns ok == false.
func parseSelection(c echo.Context, req *RecordReportRequest) (recordSelection, bool, error) {
	if err := c.Bind(req); err != nil {
		return recordSelection{}, false, common.SendClientError(c, "Invalid request body")
	}
	req.merge()
	if len(req.AnimalIDs) == 0 {
		return recordSelection{}, false, common.SendClientError(c, "Invalid animal IDs")
	}
	ids, err := common.ValidateUUIDList(req.AnimalIDs, "animal_ids")
	if err != nil {
		return recordSelection{}, false, common.SendClientError(c, "Invalid animal IDs")
	}
	if req.StartDate == nil || req.EndDate == nil {
		return recordSelection{}, false, common.SendClientError(c, "Invalid date range")
	}
	start, end := common.FromMillis(*req.StartDate), common.FromMillis(*req.EndDate)
	if err := common.ValidateDateRange(start, end); err != nil {
		return recordSelection{}, false, common.SendClientError(c, "Invalid date range")
	}
	return recordSelection{animalIDs: ids, start: start, end: end}, true, nil
}

// Behaviors godoc
// @Summary Behaviors of several animals in a period
// @Tags reports
// @Accept json
// @Produce json
// @Param payload body RecordReportRequest true "animal ids and period in ms"
// @Success 200 {array} models.Behavior
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /reports/behaviors [post]
func (h *ReportHandlers) Behaviors(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req RecordReportRequest
	sel, ok, err := parseSelection(c, &req)
	if !ok {
		return err
	}
	behaviors, err := h.reportService.Behaviors(c.Request().Context(), p, sel.animalIDs, sel.start, sel.end)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, behaviors)
}

// BodyExams godoc
// @Summary Body exams of several animals in a period
// @Tags reports
// @Accept json
// @Produce json
// @Param payload body RecordReportRequest true "animal ids and period in ms"
// @Success 200 {array} models.BodyExam
// @Failure 400 {object} common.ErrorResponse
// @Router /reports/body-exams [post]
func (h *ReportHandlers) BodyExams(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req RecordReportRequest
	sel, ok, err := parseSelection(c, &req)
	if !ok {
		return err
	}
	exams, err := h.reportService.BodyExams(c.Request().Context(), p, sel.animalIDs, sel.start, sel.end)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, exams)
}

// Species godoc
// @Summary Species lookup for report headers
// @Tags reports
// @Param payload body SpeciesReportRequest true "species ids"
// @Success 200 {array} models.SpeciesSummary
// @Router /reports/species [post]
func (h *ReportHandlers) Species(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req SpeciesReportRequest
	if err := c.Bind(&req); err != nil || len(req.ids()) == 0 {
		return common.SendClientError(c, "Invalid species IDs")
	}
	ids, err := common.ValidateUUIDList(req.ids(), "species_ids")
	if err != nil {
		return common.SendClientError(c, "Invalid species IDs")
	}
	species, err := h.reportService.Species(c.Request().Context(), p, ids)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, species)
}

// Staff godoc
// @Summary Staff name lookup for "recorded by" columns
// @Tags reports
// @Param payload body StaffReportRequest true "staff ids"
// @Success 200 {array} models.StaffSummary
// @Router /reports/staff [post]
func (h *ReportHandlers) Staff(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req StaffReportRequest
	if err := c.Bind(&req); err != nil || len(req.ids()) == 0 {
		return common.SendClientError(c, "Invalid staff IDs")
	}
	ids, err := common.ValidateUUIDList(req.ids(), "staff_ids")
	if err != nil {
		return common.SendClientError(c, "Invalid staff IDs")
	}
	staff, err := h.reportService.Staff(c.Request().Context(), p, ids)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, staff)
}

// PDF godoc
// @Summary Animal behavior and health report
// @Tags reports
// @Accept json
// @Produce application/pdf
// @Param payload body RecordReportRequest true "animal ids, period in ms and store flag"
// @Success 200 {file} file
// @Success 201 {object} models.StoredReport
// @Failure 400 {object} common.ErrorResponse
// @Failure 503 {object} common.ErrorResponse
// @Router /reports/pdf [post]
func (h *ReportHandlers) PDF(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req RecordReportRequest
	sel, ok, err := parseSelection(c, &req)
	if !ok {
		return err
	}
	report, err := h.reportService.GeneratePDF(c.Request().Context(), p, services.PDFReportRequest{
		AnimalIDs: sel.animalIDs,
		Start:     sel.start,
		End:       sel.end,
		Store:     req.Store,
	})
	if err != nil {
		return h.fail(c, err)
	}
	if report.Stored != nil {
		return c.JSON(http.StatusCreated, report.Stored)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+report.Filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", report.Content)
}
