package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edunite/exam-result-service/internal/events"
	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"github.com/edunite/exam-result-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Accuracy thresholds for the strengths/weaknesses split. Topics between
// the two are listed in neither bucket.
const (
	strengthThreshold = 70.0
	weaknessThreshold = 50.0
)

type reportService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReportService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ReportService {
	return &reportService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Generate builds the analysis report for a graded attempt, or returns the
// stored one. Reports are immutable once written; repeated calls are cheap
// reads.
func (s *reportService) Generate(ctx context.Context, req *GenerateReportRequest) (*ReportResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetBySubmissionID(ctx, nil, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt.ExamID != req.ExamID || attempt.UserID != req.UserID {
		return nil, ErrAttemptNotFound
	}

	exam, err := s.repo.Exam().GetByIDWithCategory(ctx, nil, attempt.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam.CategoryID == nil || exam.Category == nil {
		return nil, ErrExamCategoryMissing
	}

	submission, err := s.repo.Submission().GetByIDWithAnswers(ctx, nil, attempt.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	// Idempotency: serve the stored report when one exists
	if existing, err := s.repo.Report().GetByAttemptID(ctx, nil, attempt.ID); err == nil {
		return s.buildResponse(existing, exam, submission), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing report: %w", err)
	}

	questions, err := s.repo.Exam().GetQuestions(ctx, nil, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}

	report := s.buildReport(attempt, submission, questions)

	if err := s.repo.Report().Create(ctx, nil, report); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a concurrent generation race; the winner's report is
			// equivalent, serve it.
			existing, getErr := s.repo.Report().GetByAttemptID(ctx, nil, attempt.ID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load concurrent report: %w", getErr)
			}
			return s.buildResponse(existing, exam, submission), nil
		}
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	event := events.NewReportGeneratedEvent(events.ReportGeneratedEvent{
		ReportID:    report.ID,
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		UserID:      attempt.UserID,
		GeneratedAt: report.CreatedAt,
	})
	if err := s.publisher.PublishResultEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish report generated event", "report_id", report.ID, "error", err)
	}

	s.logger.Info("Generated analysis report",
		"report_id", report.ID,
		"attempt_id", attempt.ID,
		"exam_id", attempt.ExamID)

	return s.buildResponse(report, exam, submission), nil
}

func (s *reportService) GetBySubmissionID(ctx context.Context, submissionID uint) (*ReportResponse, error) {
	attempt, err := s.repo.Attempt().GetBySubmissionID(ctx, nil, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}

	report, err := s.repo.Report().GetByAttemptID(ctx, nil, attempt.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	exam, err := s.repo.Exam().GetByIDWithCategory(ctx, nil, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	submission, err := s.repo.Submission().GetByID(ctx, nil, attempt.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	return s.buildResponse(report, exam, submission), nil
}

// ===== REPORT CONSTRUCTION =====

func (s *reportService) buildReport(attempt *models.ExamAttempt, submission *models.ExamSubmission, questions []*models.Question) *models.AnalysisReport {
	grade := GradeSubmission(submission, questions)

	normalizedScore, maxMarks := NormalizeScore(attempt.Score, attempt.ScoreKind, len(questions))

	topics := topicBreakdown(grade.Questions)
	difficulties := difficultyBreakdown(grade.Questions)
	strengths, weaknesses := splitStrengthsWeaknesses(topics)

	avgTimePerQuestion := 0.0
	if grade.AttemptedQuestions > 0 {
		avgTimePerQuestion = Round2(float64(attempt.TimeTaken) / float64(grade.AttemptedQuestions))
	}

	// Stray answers referencing questions outside the exam still count as
	// attempted, so the difference can go negative without the clamp.
	unattempted := len(questions) - grade.AttemptedQuestions
	if unattempted < 0 {
		unattempted = 0
	}

	return &models.AnalysisReport{
		ExamAttemptID: attempt.ID,
		ExamID:        attempt.ExamID,
		UserID:        attempt.UserID,
		OverallPerformance: datatypes.NewJSONType(models.OverallPerformance{
			Score:                normalizedScore,
			MaxMarks:             maxMarks,
			Rank:                 attempt.Rank,
			Percentile:           attempt.Percentile,
			Accuracy:             attempt.Accuracy,
			TotalQuestions:       len(questions),
			AttemptedQuestions:   grade.AttemptedQuestions,
			CorrectAnswers:       grade.CorrectAnswers,
			IncorrectAnswers:     grade.IncorrectAnswers,
			UnattemptedQuestions: unattempted,
		}),
		TopicWisePerformance:      datatypes.NewJSONSlice(topics),
		DifficultyWisePerformance: datatypes.NewJSONSlice(difficulties),
		TimeManagement: datatypes.NewJSONType(models.TimeManagement{
			TotalTimeTaken:         attempt.TimeTaken,
			AverageTimePerQuestion: avgTimePerQuestion,
		}),
		StrengthsAndWeaknesses: datatypes.NewJSONType(models.StrengthsAndWeaknesses{
			Strengths:  strengths,
			Weaknesses: weaknesses,
		}),
		SuggestedImprovements: datatypes.NewJSONSlice(suggestImprovements(weaknesses, grade)),
	}
}

func (s *reportService) buildResponse(report *models.AnalysisReport, exam *models.Exam, submission *models.ExamSubmission) *ReportResponse {
	response := &ReportResponse{
		AnalysisReport: report,
		ExamTitle:      exam.Title,
		SubmittedAt:    submission.SubmittedAt,
	}
	if exam.Category != nil {
		response.CategoryName = exam.Category.Name
	}
	return response
}

// NormalizeScore converts a stored score to the 0-100 scale. Reports present
// every exam on the same scale, so maxMarks is always 100. The kind tag is
// authoritative; rows written before the tag existed fall back to the only
// safe inference: a score above 100 cannot be a percentage.
func NormalizeScore(score float64, kind models.ScoreKind, totalQuestions int) (normalized, maxMarks float64) {
	switch kind {
	case models.ScorePercentage:
		return Round2(score), 100
	case models.ScoreRawCount:
		if totalQuestions == 0 {
			return 0, 100
		}
		return Round2(score / float64(totalQuestions) * 100), 100
	default:
		if score > 100 {
			return NormalizeScore(score, models.ScoreRawCount, totalQuestions)
		}
		return NormalizeScore(score, models.ScorePercentage, totalQuestions)
	}
}

// topicBreakdown groups attempted answers by chapter. Questions without a
// chapter fall into "Uncategorized".
func topicBreakdown(results []QuestionResult) []models.TopicPerformance {
	type bucket struct {
		questions int
		correct   int
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, r := range results {
		if !r.Attempted {
			continue
		}
		topic := r.Topic
		if topic == "" {
			topic = "Uncategorized"
		}
		b, ok := buckets[topic]
		if !ok {
			b = &bucket{}
			buckets[topic] = b
			order = append(order, topic)
		}
		b.questions++
		if r.Correct {
			b.correct++
		}
	}

	breakdown := make([]models.TopicPerformance, 0, len(order))
	for _, topic := range order {
		b := buckets[topic]
		breakdown = append(breakdown, models.TopicPerformance{
			Topic:     topic,
			Accuracy:  Accuracy(b.correct, b.questions),
			Questions: b.questions,
			Correct:   b.correct,
		})
	}
	return breakdown
}

// difficultyBreakdown computes per-difficulty accuracy over attempted
// answers. All three buckets are always present, in fixed order, so clients
// never need to handle a missing difficulty.
func difficultyBreakdown(results []QuestionResult) []models.DifficultyPerformance {
	type bucket struct {
		questions int
		correct   int
	}
	buckets := make(map[models.DifficultyLevel]*bucket, len(models.DifficultyLevels))
	for _, level := range models.DifficultyLevels {
		buckets[level] = &bucket{}
	}

	for _, r := range results {
		if !r.Attempted {
			continue
		}
		b, ok := buckets[r.Difficulty]
		if !ok {
			continue
		}
		b.questions++
		if r.Correct {
			b.correct++
		}
	}

	breakdown := make([]models.DifficultyPerformance, 0, len(models.DifficultyLevels))
	for _, level := range models.DifficultyLevels {
		b := buckets[level]
		breakdown = append(breakdown, models.DifficultyPerformance{
			Difficulty: level,
			Accuracy:   Accuracy(b.correct, b.questions),
			Questions:  b.questions,
			Correct:    b.correct,
		})
	}
	return breakdown
}

// splitStrengthsWeaknesses buckets topics by accuracy. A topic at 70%+ is a
// strength, below 50% a weakness, anything between is listed in neither.
func splitStrengthsWeaknesses(topics []models.TopicPerformance) (strengths, weaknesses []string) {
	strengths = make([]string, 0, len(topics))
	weaknesses = make([]string, 0, len(topics))
	for _, t := range topics {
		switch {
		case t.Accuracy >= strengthThreshold:
			strengths = append(strengths, t.Topic)
		case t.Accuracy < weaknessThreshold:
			weaknesses = append(weaknesses, t.Topic)
		}
	}
	return strengths, weaknesses
}

func suggestImprovements(weaknesses []string, grade GradeResult) []string {
	suggestions := make([]string, 0, len(weaknesses)+2)
	for _, topic := range weaknesses {
		suggestions = append(suggestions, fmt.Sprintf("Revise %s and practice more questions from this topic", topic))
	}
	if unattempted := grade.TotalQuestions - grade.AttemptedQuestions; unattempted > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Attempt all questions; %d went unanswered", unattempted))
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Keep practicing to maintain your performance")
	}
	return suggestions
}
