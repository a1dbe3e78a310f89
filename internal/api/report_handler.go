package api

import (
	"context"
	"net/http"

	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/scheduler"
	"alcyxob/gym-platform/internal/service"

	"github.com/gin-gonic/gin"
)

// WeeklyRunner runs the weekly report job on demand.
type WeeklyRunner interface {
	RunWeekly(ctx context.Context, trigger string) (*scheduler.RunResult, error)
}

type ReportHandler struct {
	reportService service.ReportService
	runner        WeeklyRunner
}

func NewReportHandler(reportService service.ReportService, runner WeeklyRunner) *ReportHandler {
	return &ReportHandler{reportService: reportService, runner: runner}
}

type TriggerWeeklyResponse struct {
	Result *scheduler.RunResult `json:"result"`
	Errors string               `json:"errors,omitempty"`
}

// Performance godoc
// @Summary Coach performance or sales statistics for a period
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param type query string true "coach or sales"
// @Param startDate query string true "DD-MM-YYYY"
// @Param endDate query string true "DD-MM-YYYY"
// @Success 200 {object} domain.Report
// @Failure 400 {object} errorResponse
// @Router /api/reports/performance [get]
func (h *ReportHandler) Performance(c *gin.Context) {
	report, err := h.reportService.GenerateReport(c.Request.Context(),
		domain.ReportType(c.Query("type")), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TriggerWeekly godoc
// @Summary Run the weekly report job now
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TriggerWeeklyResponse
// @Failure 409 {object} errorResponse "a run is already in progress"
// @Router /api/reports/trigger-weekly [post]
func (h *ReportHandler) TriggerWeekly(c *gin.Context) {
	if h.runner == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Weekly reports are not configured")
		return
	}
	result, err := h.runner.RunWeekly(c.Request.Context(), scheduler.TriggerManual)
	if result == nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	resp := TriggerWeeklyResponse{Result: result}
	if err != nil {
		// reports were generated but mailing or archiving partly failed
		logger.WithError(err).Warn("manual weekly run finished with errors")
		status = http.StatusMultiStatus
		resp.Errors = err.Error()
	}
	c.JSON(status, resp)
}
