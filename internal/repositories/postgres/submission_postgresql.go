package postgres

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSubmission, error) {
	db := s.helpers.getDB(tx)
	var submission models.ExamSubmission
	if err := db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetByIDWithAnswers loads the full answer tree the grader consumes: every
// answer with its chosen options, plus each question's answer key and
// chapter for the report breakdowns.
func (s *SubmissionPostgreSQL) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSubmission, error) {
	db := s.helpers.getDB(tx)
	var submission models.ExamSubmission
	if err := db.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.ChosenOptions").
		Preload("Answers.Question").
		Preload("Answers.Question.Options").
		Preload("Answers.Question.Chapter").
		First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}
