package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edunite/exam-result-service/internal/repositories"
	"github.com/edunite/exam-result-service/internal/services"
	"github.com/edunite/exam-result-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// SubmitAttempt grades a submission and records the attempt
// @Summary Submit attempt
// @Description Grades the referenced submission, records the attempt and refreshes exam statistics
// @Tags attempts
// @Accept json
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param attempt body services.SubmitAttemptRequest true "Submission reference"
// @Success 201 {object} services.AttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{exam_id}/attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	examID := h.parseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	// The exam in the path is authoritative over any exam_id in the body
	req.ExamID = examID

	h.LogRequest(c, "Submitting attempt", "exam_id", examID, "submission_id", req.SubmissionID)

	response, err := h.attemptService.SubmitAttempt(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetAttempt returns the graded attempt for a submission
// @Summary Get attempt
// @Description Returns the graded attempt recorded for the given submission
// @Tags attempts
// @Produce json
// @Param submission_id path uint true "Submission ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{submission_id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	response, err := h.attemptService.GetBySubmissionID(c.Request.Context(), submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUserAttempts lists a user's graded attempts
// @Summary List user attempts
// @Description Returns the user's attempts, newest first, with optional exam and date filters
// @Tags attempts
// @Produce json
// @Param user_id path string true "User ID"
// @Param exam_id query uint false "Filter by exam"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} PaginatedResponse
// @Failure 400 {object} ErrorResponse
// @Router /attempts/user/{user_id} [get]
func (h *AttemptHandler) GetUserAttempts(c *gin.Context) {
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	filters := h.parseAttemptFilters(c)

	attempts, total, err := h.attemptService.GetUserAttempts(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   attempts,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

func (h *AttemptHandler) parseAttemptFilters(c *gin.Context) repositories.AttemptFilters {
	filters := repositories.AttemptFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	filters.Limit, filters.Offset = parsePagination(c)

	if examIDStr := c.Query("exam_id"); examIDStr != "" {
		if examID, err := strconv.ParseUint(examIDStr, 10, 32); err == nil {
			id := uint(examID)
			filters.ExamID = &id
		}
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
