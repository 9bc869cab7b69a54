package postgres

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts the graded attempt. The unique index on submission_id
// rejects a second attempt for the same submission; the duplicated-key
// error is returned as-is so callers can translate it into a conflict.
func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) error {
	db := a.helpers.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uint) (*models.ExamAttempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetBySubmissionIDWithReport(ctx context.Context, tx *gorm.DB, submissionID uint) (*models.ExamAttempt, error) {
	db := a.helpers.getDB(tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).
		Preload("Report").
		Where("submission_id = ?", submissionID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// GetByExam returns the whole attempt population for an exam in ranking
// order: score descending, earlier submission first on ties.
func (a *AttemptPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.ExamAttempt, error) {
	db := a.helpers.getDB(tx)
	var attempts []*models.ExamAttempt
	if err := db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Order("score DESC, created_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// GetScoresByExam projects the population down to the fields the aggregate
// computations need, in the same ranking order as GetByExam.
func (a *AttemptPostgreSQL) GetScoresByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]repositories.ScoreSample, error) {
	db := a.helpers.getDB(tx)
	var samples []repositories.ScoreSample
	if err := db.WithContext(ctx).
		Model(&models.ExamAttempt{}).
		Select("id AS attempt_id, user_id, score, time_taken").
		Where("exam_id = ?", examID).
		Order("score DESC, created_at ASC").
		Scan(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (a *AttemptPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.AttemptFilters) ([]*models.ExamAttempt, int64, error) {
	db := a.helpers.getDB(tx)
	var attempts []*models.ExamAttempt
	var total int64

	query := db.WithContext(ctx).Model(&models.ExamAttempt{}).Where("user_id = ?", userID)
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Exam").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// UpdateRanks back-fills rank and percentile for the given attempts. Callers
// run it inside the recompute transaction so a half-applied ranking is never
// observable.
func (a *AttemptPostgreSQL) UpdateRanks(ctx context.Context, tx *gorm.DB, ranks []repositories.AttemptRank) error {
	db := a.helpers.getDB(tx)
	for _, r := range ranks {
		if err := db.WithContext(ctx).
			Model(&models.ExamAttempt{}).
			Where("id = ?", r.AttemptID).
			Updates(map[string]interface{}{
				"rank":       r.Rank,
				"percentile": r.Percentile,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (a *AttemptPostgreSQL) ExistsBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uint) (bool, error) {
	db := a.helpers.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.ExamAttempt{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	return count > 0, err
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.ScoreKind != nil {
		query = query.Where("score_kind = ?", *filters.ScoreKind)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
