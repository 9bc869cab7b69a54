package repositories

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"gorm.io/gorm"
)

// ExamRepository reads exam catalog data. The catalog service owns these
// tables; nothing here mutates them.
type ExamRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	GetByIDWithCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	GetQuestions(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) // includes options and chapter
	CountQuestions(ctx context.Context, tx *gorm.DB, examID uint) (int64, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
}

// SubmissionRepository reads raw submissions produced by the exam-taking
// flow. Read-only for the same reason as ExamRepository.
type SubmissionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSubmission, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSubmission, error)
}
