package handlers

import (
	"fmt"
	"net/http"

	"github.com/edunite/exam-result-service/internal/services"
	"github.com/edunite/exam-result-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatisticsHandler struct {
	BaseHandler
	statisticsService services.StatisticsService
	exportService     services.ExportService
}

func NewStatisticsHandler(
	statisticsService services.StatisticsService,
	exportService services.ExportService,
	logger utils.Logger,
) *StatisticsHandler {
	return &StatisticsHandler{
		BaseHandler:       NewBaseHandler(logger),
		statisticsService: statisticsService,
		exportService:     exportService,
	}
}

// GetStatistics returns the exam's aggregate statistics
// @Summary Get exam statistics
// @Description Returns attempt count, score aggregates and top performers for the exam
// @Tags statistics
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} services.StatisticsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	examID := h.parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	response, err := h.statisticsService.GetByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetLeaderboard returns the ranked attempt list for an exam
// @Summary Get exam leaderboard
// @Description Returns ranked attempts for the exam with user names resolved
// @Tags statistics
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.LeaderboardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/leaderboard [get]
func (h *StatisticsHandler) GetLeaderboard(c *gin.Context) {
	examID := h.parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	limit, offset := parsePagination(c)

	response, err := h.statisticsService.GetLeaderboard(c.Request.Context(), examID, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportResults streams the exam's results as an xlsx workbook
// @Summary Export exam results
// @Description Renders all graded attempts and the aggregate summary as a spreadsheet
// @Tags statistics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param exam_id path uint true "Exam ID"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/attempts/export [get]
func (h *StatisticsHandler) ExportResults(c *gin.Context) {
	examID := h.parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Exporting exam results", "exam_id", examID)

	data, err := h.exportService.ExportExamResults(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_%d_results.xlsx", examID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
