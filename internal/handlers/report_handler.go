package handlers

import (
	"net/http"

	"github.com/edunite/exam-result-service/internal/services"
	"github.com/edunite/exam-result-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GenerateReport builds the analysis report for a graded attempt
// @Summary Generate analysis report
// @Description Builds and persists the per-attempt analysis report, or returns the stored one
// @Tags reports
// @Accept json
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param report body services.GenerateReportRequest true "Submission reference"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/reports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	examID := h.parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	var req services.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.ExamID = examID

	h.LogRequest(c, "Generating analysis report", "exam_id", examID, "submission_id", req.SubmissionID)

	response, err := h.reportService.Generate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Consumers expect the report wrapped in a list
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Report generated successfully",
		Data:    []*services.ReportResponse{response},
	})
}

// GetReport returns the stored analysis report for a submission
// @Summary Get analysis report
// @Description Returns the analysis report generated for the given submission's attempt
// @Tags reports
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Success 200 {object} services.ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{submission_id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	response, err := h.reportService.GetBySubmissionID(c.Request.Context(), submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
