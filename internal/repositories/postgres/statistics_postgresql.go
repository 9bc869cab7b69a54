package postgres

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticsPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewStatisticsPostgreSQL(db *gorm.DB) repositories.StatisticsRepository {
	return &StatisticsPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Upsert writes the aggregate row keyed by exam_id. Every recompute produces
// a complete row, so on conflict all value columns are overwritten and the
// last writer wins.
func (s *StatisticsPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, stats *models.ExamStatistics) error {
	db := s.helpers.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "exam_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_attempts",
				"average_score",
				"highest_score",
				"lowest_score",
				"median_score",
				"standard_deviation",
				"average_time_taken",
				"top_performers",
				"updated_at",
			}),
		}).
		Create(stats).Error
}

func (s *StatisticsPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) (*models.ExamStatistics, error) {
	db := s.helpers.getDB(tx)
	var stats models.ExamStatistics
	if err := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
