package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/edunite/exam-result-service/internal/events"
	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name           string
		score          float64
		kind           models.ScoreKind
		totalQuestions int
		wantScore      float64
		wantMax        float64
	}{
		{"raw count", 7, models.ScoreRawCount, 10, 70, 100},
		{"raw count partial", 1, models.ScoreRawCount, 3, 33.33, 100},
		{"raw count zero questions", 0, models.ScoreRawCount, 0, 0, 100},
		{"percentage passes through", 85.5, models.ScorePercentage, 10, 85.5, 100},
		{"untagged above 100 must be raw", 120, "", 200, 60, 100},
		{"untagged within 100 treated as percentage", 80, "", 10, 80, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, max := NormalizeScore(tt.score, tt.kind, tt.totalQuestions)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

func TestTopicBreakdown(t *testing.T) {
	results := []QuestionResult{
		{Attempted: true, Correct: true, Topic: "Algebra"},
		{Attempted: true, Correct: false, Topic: "Algebra"},
		{Attempted: true, Correct: true, Topic: "Geometry"},
		{Attempted: false, Topic: "Geometry"}, // skipped, not attempted
		{Attempted: true, Correct: false},     // no chapter
	}

	topics := topicBreakdown(results)
	require.Len(t, topics, 3)

	assert.Equal(t, "Algebra", topics[0].Topic)
	assert.Equal(t, 50.0, topics[0].Accuracy)
	assert.Equal(t, 2, topics[0].Questions)

	assert.Equal(t, "Geometry", topics[1].Topic)
	assert.Equal(t, 100.0, topics[1].Accuracy)
	assert.Equal(t, 1, topics[1].Questions)

	assert.Equal(t, "Uncategorized", topics[2].Topic)
	assert.Equal(t, 0.0, topics[2].Accuracy)
}

func TestDifficultyBreakdown_AllBucketsAlwaysPresent(t *testing.T) {
	results := []QuestionResult{
		{Attempted: true, Correct: true, Difficulty: models.DifficultyEasy},
		{Attempted: true, Correct: false, Difficulty: models.DifficultyEasy},
	}

	buckets := difficultyBreakdown(results)
	require.Len(t, buckets, 3)

	assert.Equal(t, models.DifficultyEasy, buckets[0].Difficulty)
	assert.Equal(t, 50.0, buckets[0].Accuracy)
	assert.Equal(t, 2, buckets[0].Questions)

	assert.Equal(t, models.DifficultyMedium, buckets[1].Difficulty)
	assert.Equal(t, 0, buckets[1].Questions)
	assert.Equal(t, 0.0, buckets[1].Accuracy)

	assert.Equal(t, models.DifficultyHard, buckets[2].Difficulty)
	assert.Equal(t, 0, buckets[2].Questions)
}

func TestSplitStrengthsWeaknesses(t *testing.T) {
	topics := []models.TopicPerformance{
		{Topic: "Algebra", Accuracy: 85},
		{Topic: "Geometry", Accuracy: 70}, // boundary: strength
		{Topic: "Calculus", Accuracy: 60}, // between thresholds: neither
		{Topic: "Trigonometry", Accuracy: 49.99},
		{Topic: "Statistics", Accuracy: 50}, // boundary: neither
	}

	strengths, weaknesses := splitStrengthsWeaknesses(topics)

	assert.Equal(t, []string{"Algebra", "Geometry"}, strengths)
	assert.Equal(t, []string{"Trigonometry"}, weaknesses)
	assert.NotContains(t, strengths, "Calculus")
	assert.NotContains(t, weaknesses, "Calculus")
	assert.NotContains(t, weaknesses, "Statistics")
}

func TestSuggestImprovements(t *testing.T) {
	t.Run("weak topics produce topic suggestions", func(t *testing.T) {
		grade := GradeResult{TotalQuestions: 5, AttemptedQuestions: 5}
		suggestions := suggestImprovements([]string{"Algebra"}, grade)

		require.Len(t, suggestions, 1)
		assert.Contains(t, suggestions[0], "Algebra")
	})

	t.Run("unattempted questions are called out", func(t *testing.T) {
		grade := GradeResult{TotalQuestions: 10, AttemptedQuestions: 7}
		suggestions := suggestImprovements(nil, grade)

		require.Len(t, suggestions, 1)
		assert.Contains(t, suggestions[0], "3 went unanswered")
	})

	t.Run("clean performance still gets a suggestion", func(t *testing.T) {
		grade := GradeResult{TotalQuestions: 5, AttemptedQuestions: 5}
		suggestions := suggestImprovements(nil, grade)

		require.Len(t, suggestions, 1)
	})
}

func newTestReportService(repo *memoryRepository) (ReportService, *events.MockEventPublisher) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	return NewReportService(repo, publisher, logger, validator.New()), publisher
}

func submitGradedAttempt(t *testing.T, repo *memoryRepository, submissionID uint) {
	t.Helper()
	attempts, _ := newTestAttemptService(repo)
	_, err := attempts.SubmitAttempt(context.Background(), &SubmitAttemptRequest{ExamID: 1, UserID: "user-1", SubmissionID: submissionID})
	require.NoError(t, err)
}

func TestGenerateReport(t *testing.T) {
	repo := newMemoryRepository()
	seedMathExam(repo)
	seedSubmissionWithAnswers(repo, 100, "user-1", []models.UserAnswer{
		{QuestionID: 1, IsAttempted: true, TimeSpent: 30, ChosenOptions: []models.UserAnswerOption{{OptionID: 11}}},
		{QuestionID: 2, IsAttempted: true, TimeSpent: 45, ChosenOptions: []models.UserAnswerOption{{OptionID: 21}}},
		{QuestionID: 3, IsAttempted: false, TimeSpent: 10},
	})
	submitGradedAttempt(t, repo, 100)

	service, publisher := newTestReportService(repo)

	report, err := service.Generate(context.Background(), &GenerateReportRequest{ExamID: 1, UserID: "user-1", SubmissionID: 100})
	require.NoError(t, err)

	assert.Equal(t, "Midterm Mathematics", report.ExamTitle)
	assert.Equal(t, "Mathematics", report.CategoryName)

	overall := report.OverallPerformance.Data()
	assert.Equal(t, 33.33, overall.Score) // 1 of 3 raw, normalized
	assert.Equal(t, 100.0, overall.MaxMarks)
	assert.Equal(t, 3, overall.TotalQuestions)
	assert.Equal(t, 2, overall.AttemptedQuestions)
	assert.Equal(t, 1, overall.CorrectAnswers)
	assert.Equal(t, 1, overall.UnattemptedQuestions)

	difficulties := []models.DifficultyPerformance(report.DifficultyWisePerformance)
	require.Len(t, difficulties, 3)
	assert.Equal(t, models.DifficultyEasy, difficulties[0].Difficulty)
	assert.Equal(t, 100.0, difficulties[0].Accuracy)
	assert.Equal(t, 0, difficulties[2].Questions) // HARD unattempted, bucket still present

	sw := report.StrengthsAndWeaknesses.Data()
	assert.Contains(t, sw.Strengths, "Algebra")
	assert.Contains(t, sw.Weaknesses, "Geometry")

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventReportGenerated, published[0].Type)
}

func TestGenerateReport_Idempotent(t *testing.T) {
	repo := newMemoryRepository()
	seedMathExam(repo)
	seedSubmissionWithAnswers(repo, 100, "user-1", []models.UserAnswer{
		{QuestionID: 1, IsAttempted: true, TimeSpent: 30, ChosenOptions: []models.UserAnswerOption{{OptionID: 11}}},
	})
	submitGradedAttempt(t, repo, 100)

	service, publisher := newTestReportService(repo)

	first, err := service.Generate(context.Background(), &GenerateReportRequest{ExamID: 1, UserID: "user-1", SubmissionID: 100})
	require.NoError(t, err)
	publisher.ClearEvents()

	second, err := service.Generate(context.Background(), &GenerateReportRequest{ExamID: 1, UserID: "user-1", SubmissionID: 100})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, publisher.GetPublishedEvents(), "repeat generation must not republish")
}

func TestGenerateReport_AttemptNotFound(t *testing.T) {
	repo := newMemoryRepository()
	seedMathExam(repo)

	service, _ := newTestReportService(repo)

	_, err := service.Generate(context.Background(), &GenerateReportRequest{ExamID: 1, UserID: "user-1", SubmissionID: 404})
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestGenerateReport_ExamCategoryMissing(t *testing.T) {
	repo := newMemoryRepository()
	repo.seedExam(
		&models.Exam{ID: 1, Title: "Uncategorized Exam"},
		&models.Question{
			ID:      1,
			Options: []models.Option{{ID: 11, QuestionID: 1, IsCorrect: true}},
		},
	)
	seedSubmissionWithAnswers(repo, 100, "user-1", []models.UserAnswer{
		{QuestionID: 1, IsAttempted: true, TimeSpent: 30, ChosenOptions: []models.UserAnswerOption{{OptionID: 11}}},
	})
	submitGradedAttempt(t, repo, 100)

	service, _ := newTestReportService(repo)

	_, err := service.Generate(context.Background(), &GenerateReportRequest{ExamID: 1, UserID: "user-1", SubmissionID: 100})
	assert.ErrorIs(t, err, ErrExamCategoryMissing)
	assert.True(t, IsNotFound(err))
}

func TestGenerateReport_StrayAnswersClampUnattempted(t *testing.T) {
	repo := newMemoryRepository()
	categoryID := uint(5)
	repo.seedExam(
		&models.Exam{
			ID:         1,
			Title:      "Quick Quiz",
			CategoryID: &categoryID,
			Category:   &models.ExamCategory{ID: categoryID, Name: "Mathematics"},
		},
		&models.Question{
			ID: 1, Difficulty: models.DifficultyEasy,
			Options: []models.Option{{ID: 11, QuestionID: 1, IsCorrect: true}},
		},
	)
	// The second answer references a question no longer on the exam, so more
	// answers count as attempted than the exam has questions.
	seedSubmissionWithAnswers(repo, 100, "user-1", []models.UserAnswer{
		{QuestionID: 1, IsAttempted: true, TimeSpent: 20, ChosenOptions: []models.UserAnswerOption{{OptionID: 11}}},
		{QuestionID: 99, IsAttempted: true, TimeSpent: 20, ChosenOptions: []models.UserAnswerOption{{OptionID: 991}}},
	})
	err := repo.Attempt().Create(context.Background(), nil, &models.ExamAttempt{
		ExamID:             1,
		SubmissionID:       100,
		UserID:             "user-1",
		Score:              1,
		ScoreKind:          models.ScoreRawCount,
		Accuracy:           50,
		AttemptedQuestions: 2,
		CorrectAnswers:     1,
		IncorrectAnswers:   1,
		TimeTaken:          40,
	})
	require.NoError(t, err)

	service, _ := newTestReportService(repo)

	report, err := service.Generate(context.Background(), &GenerateReportRequest{ExamID: 1, UserID: "user-1", SubmissionID: 100})
	require.NoError(t, err)

	overall := report.OverallPerformance.Data()
	assert.Equal(t, 1, overall.TotalQuestions)
	assert.Equal(t, 2, overall.AttemptedQuestions)
	assert.Equal(t, 0, overall.UnattemptedQuestions)
}

func TestGetReportBySubmissionID_NotGenerated(t *testing.T) {
	repo := newMemoryRepository()
	seedMathExam(repo)
	seedSubmissionWithAnswers(repo, 100, "user-1", []models.UserAnswer{
		{QuestionID: 1, IsAttempted: true, TimeSpent: 30, ChosenOptions: []models.UserAnswerOption{{OptionID: 11}}},
	})
	submitGradedAttempt(t, repo, 100)

	service, _ := newTestReportService(repo)

	_, err := service.GetBySubmissionID(context.Background(), 100)
	assert.ErrorIs(t, err, ErrReportNotFound)
}
