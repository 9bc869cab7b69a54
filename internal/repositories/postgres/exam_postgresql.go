package postgres

import (
	"context"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := e.helpers.getDB(tx)
	var exam models.Exam
	if err := db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDWithCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := e.helpers.getDB(tx)
	var exam models.Exam
	if err := db.WithContext(ctx).
		Preload("Category").
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

// GetQuestions loads every question of the exam across its sections,
// together with the answer key and chapter needed for grading and the
// topic breakdown.
func (e *ExamPostgreSQL) GetQuestions(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	db := e.helpers.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Joins("JOIN exam_sections ON exam_sections.id = questions.section_id").
		Where("exam_sections.exam_id = ?", examID).
		Preload("Options").
		Preload("Chapter").
		Order("questions.section_id ASC, questions.\"order\" ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (e *ExamPostgreSQL) CountQuestions(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	db := e.helpers.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Joins("JOIN exam_sections ON exam_sections.id = questions.section_id").
		Where("exam_sections.exam_id = ?", examID).
		Count(&count).Error
	return count, err
}

func (e *ExamPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := e.helpers.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
