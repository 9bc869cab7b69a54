package repositories

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository persists graded attempts. All methods accept an optional
// transaction handle; a nil tx falls back to the repository's own connection.
type AttemptRepository interface {
	// Basic operations
	Create(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error)
	GetBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uint) (*models.ExamAttempt, error)
	GetBySubmissionIDWithReport(ctx context.Context, tx *gorm.DB, submissionID uint) (*models.ExamAttempt, error)

	// Population queries
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamAttempt, error) // score desc, created_at asc
	GetScoresByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]ScoreSample, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters AttemptFilters) ([]*models.ExamAttempt, int64, error)

	// Ranking back-fill, applied in one batch
	UpdateRanks(ctx context.Context, tx *gorm.DB, ranks []AttemptRank) error

	// Validation and checks
	ExistsBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uint) (bool, error)
}

// StatisticsRepository persists the per-exam aggregate row.
type StatisticsRepository interface {
	// Upsert overwrites the whole row keyed by exam_id (last writer wins).
	Upsert(ctx context.Context, tx *gorm.DB, stats *models.ExamStatistics) error
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) (*models.ExamStatistics, error)
}

// ReportRepository persists analysis reports, one per attempt.
type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.AnalysisReport) error
	GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uint) (*models.AnalysisReport, error)
}
