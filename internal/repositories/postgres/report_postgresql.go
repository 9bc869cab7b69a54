package postgres

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
)

type ReportPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts the report. The unique index on exam_attempt_id keeps the
// report 1:1 with its attempt under concurrent generation.
func (r *ReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.AnalysisReport) error {
	db := r.helpers.getDB(tx)
	return db.WithContext(ctx).Create(report).Error
}

func (r *ReportPostgreSQL) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID uint) (*models.AnalysisReport, error) {
	db := r.helpers.getDB(tx)
	var report models.AnalysisReport
	if err := db.WithContext(ctx).
		Where("exam_attempt_id = ?", attemptID).
		First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
