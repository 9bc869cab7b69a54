package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportExamResults renders the exam's graded attempts and aggregate
// summary as an xlsx workbook with a Results and a Summary sheet.
func (s *exportService) ExportExamResults(ctx context.Context, examID uint) ([]byte, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}

	attempts, err := s.repo.Attempt().GetByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	names := s.resolveNames(ctx, attempts)

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Rank", "User ID", "User Name", "Score", "Score Kind", "Accuracy (%)",
		"Attempted", "Correct", "Incorrect", "Percentile", "Time Taken (s)", "Submitted At",
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := []interface{}{
			valueOrEmpty(attempt.Rank),
			attempt.UserID,
			names[attempt.UserID],
			attempt.Score,
			string(attempt.ScoreKind),
			attempt.Accuracy,
			attempt.AttemptedQuestions,
			attempt.CorrectAnswers,
			attempt.IncorrectAnswers,
			valueOrEmpty(attempt.Percentile),
			attempt.TimeTaken,
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	if err := s.writeSummarySheet(ctx, f, exam); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported exam results",
		"exam_id", examID,
		"attempts", len(attempts),
		"generated_at", time.Now())

	return buf.Bytes(), nil
}

func (s *exportService) writeSummarySheet(ctx context.Context, f *excelize.File, exam *models.Exam) error {
	stats, err := s.repo.Statistics().GetByExam(ctx, nil, exam.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // no attempts yet, Results sheet stands alone
		}
		return fmt.Errorf("failed to load statistics: %w", err)
	}

	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Exam", exam.Title},
		{"Total Attempts", stats.TotalAttempts},
		{"Average Score", stats.AverageScore},
		{"Highest Score", stats.HighestScore},
		{"Lowest Score", stats.LowestScore},
		{"Median Score", stats.MedianScore},
		{"Standard Deviation", stats.StandardDeviation},
		{"Average Time Taken (s)", stats.AverageTimeTaken},
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return nil
}

func (s *exportService) resolveNames(ctx context.Context, attempts []*models.ExamAttempt) map[string]string {
	ids := make([]string, 0, len(attempts))
	seen := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		if !seen[a.UserID] {
			ids = append(ids, a.UserID)
			seen[a.UserID] = true
		}
	}

	names := make(map[string]string, len(ids))
	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve user names for export", "error", err)
		return names
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}
	return names
}

func valueOrEmpty[T any](v *T) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
