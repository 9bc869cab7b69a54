package services

import (
	"context"
	"time"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

// SubmitAttemptRequest carries the caller's wall-clock sitting time in
// seconds. Submission answers may also carry per-answer timings, but those
// are optional and only used as a fallback.
type SubmitAttemptRequest struct {
	ExamID       uint   `json:"exam_id" validate:"required"`
	SubmissionID uint   `json:"submission_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
	TimeTaken    int    `json:"time_taken" validate:"gte=0"`
}

type GenerateReportRequest struct {
	ExamID       uint   `json:"exam_id" validate:"required"`
	SubmissionID uint   `json:"submission_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
}

type AttemptResponse struct {
	*models.ExamAttempt
	TotalQuestions int  `json:"total_questions"`
	HasReport      bool `json:"has_report"`
}

// ReportResponse wraps the stored report together with display fields the
// persisted row does not carry.
type ReportResponse struct {
	*models.AnalysisReport
	ExamTitle    string    `json:"exam_title"`
	CategoryName string    `json:"category_name"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type StatisticsResponse struct {
	*models.ExamStatistics
	ExamTitle string `json:"exam_title"`
}

type LeaderboardResponse struct {
	ExamID  uint                            `json:"exam_id"`
	Entries []repositories.LeaderboardEntry `json:"entries"`
	Total   int64                           `json:"total"`
}

// ===== SERVICE INTERFACES =====

// AttemptService records graded attempts and reads them back.
type AttemptService interface {
	// SubmitAttempt grades the referenced submission, persists the attempt
	// and refreshes the exam statistics in one transaction.
	SubmitAttempt(ctx context.Context, req *SubmitAttemptRequest) (*AttemptResponse, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (*AttemptResponse, error)
	GetUserAttempts(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*AttemptResponse, int64, error)
}

// StatisticsService owns the per-exam aggregate and its derived views.
type StatisticsService interface {
	// Recompute rebuilds ranks, percentiles and aggregates for the exam's
	// whole attempt population. txRepo must be transaction-bound when the
	// caller needs atomicity with other writes.
	Recompute(ctx context.Context, txRepo repositories.Repository, examID uint) (*models.ExamStatistics, error)
	GetByExam(ctx context.Context, examID uint) (*StatisticsResponse, error)
	GetLeaderboard(ctx context.Context, examID uint, limit, offset int) (*LeaderboardResponse, error)
}

// ReportService generates and serves per-attempt analysis reports.
type ReportService interface {
	// Generate returns the stored report when one exists, otherwise builds
	// and persists it. Safe to call repeatedly.
	Generate(ctx context.Context, req *GenerateReportRequest) (*ReportResponse, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (*ReportResponse, error)
}

// ExportService renders exam results as downloadable spreadsheets.
type ExportService interface {
	ExportExamResults(ctx context.Context, examID uint) ([]byte, error)
}
