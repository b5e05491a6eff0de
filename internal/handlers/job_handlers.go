package handlers

import (
	"errors"
	"net/http"

	"rescuetrack/internal/common"
	"rescuetrack/internal/jobs/background"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JobHandlers exposes the scheduler to administrators
type JobHandlers struct {
	base
	scheduler *background.JobScheduler
}

func NewJobHandlers(scheduler *background.JobScheduler, logger *zap.Logger) *JobHandlers {
	return &JobHandlers{base: base{logger: logger}, scheduler: scheduler}
}

// List handles GET /jobs
func (h *JobHandlers) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}

// Run handles POST /jobs/:name/run
func (h *JobHandlers) Run(c echo.Context) error {
	name := c.Param("name")
	if err := h.scheduler.RunNow(name); err != nil {
		if errors.Is(err, background.ErrUnknownJob) {
			return common.SendNotFoundError(c, "Job")
		}
		return h.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"job": name, "status": "triggered"})
}
