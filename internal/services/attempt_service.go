package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edunite/exam-result-service/internal/cache"
	"github.com/edunite/exam-result-service/internal/events"
	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"github.com/edunite/exam-result-service/internal/validator"
	"gorm.io/gorm"
)

// submitTxTimeout bounds the grade-insert-recompute transaction so a stuck
// recompute cannot hold row locks indefinitely.
const submitTxTimeout = 30 * time.Second

type attemptService struct {
	repo      repositories.Repository
	stats     StatisticsService
	publisher events.EventPublisher
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAttemptService(
	repo repositories.Repository,
	stats StatisticsService,
	publisher events.EventPublisher,
	cacheManager *cache.CacheManager,
	logger *slog.Logger,
	v *validator.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		stats:     stats,
		publisher: publisher,
		cache:     cacheManager,
		logger:    logger,
		validator: v,
	}
}

// SubmitAttempt grades the submission, records the attempt and refreshes the
// exam's statistics inside one transaction. The unique index on
// submission_id is the arbiter under concurrent submits for the same
// submission: exactly one transaction commits, the rest surface a conflict.
func (s *attemptService) SubmitAttempt(ctx context.Context, req *SubmitAttemptRequest) (*AttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Recording exam attempt", "submission_id", req.SubmissionID)

	// Cheap pre-check; the unique index still guards the race window.
	exists, err := s.repo.Attempt().ExistsBySubmissionID(ctx, nil, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing attempt: %w", err)
	}
	if exists {
		return nil, ErrAttemptAlreadyExists
	}

	submission, err := s.repo.Submission().GetByIDWithAnswers(ctx, nil, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission.ExamID != req.ExamID || submission.UserID != req.UserID {
		// The submission exists but not under this exam and user
		return nil, ErrSubmissionNotFound
	}

	questions, err := s.repo.Exam().GetQuestions(ctx, nil, submission.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}
	if len(questions) == 0 {
		if exists, err := s.repo.Exam().Exists(ctx, nil, submission.ExamID); err != nil {
			return nil, err
		} else if !exists {
			return nil, ErrExamNotFound
		}
		return nil, ErrExamHasNoQuestions
	}

	if errs := s.validator.Submission().ValidateForGrading(submission, questions); len(errs) > 0 {
		return nil, errs
	}

	grade := GradeSubmission(submission, questions)

	// The caller's sitting time is authoritative; summed per-answer time is
	// the fallback for clients that do not track it.
	timeTaken := req.TimeTaken
	if timeTaken == 0 {
		timeTaken = grade.TimeTaken
	}

	attempt := &models.ExamAttempt{
		ExamID:             submission.ExamID,
		SubmissionID:       submission.ID,
		UserID:             submission.UserID,
		Score:              grade.Score,
		ScoreKind:          grade.ScoreKind,
		Accuracy:           grade.Accuracy,
		AttemptedQuestions: grade.AttemptedQuestions,
		CorrectAnswers:     grade.CorrectAnswers,
		IncorrectAnswers:   grade.IncorrectAnswers,
		TimeTaken:          timeTaken,
	}

	txCtx, cancel := context.WithTimeout(ctx, submitTxTimeout)
	defer cancel()

	var stats *models.ExamStatistics
	err = s.repo.WithTransaction(txCtx, func(txRepo repositories.Repository) error {
		if err := txRepo.Attempt().Create(txCtx, nil, attempt); err != nil {
			return err
		}

		stats, err = s.stats.Recompute(txCtx, txRepo, submission.ExamID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAttemptAlreadyExists
		}
		return nil, fmt.Errorf("submit transaction failed: %w", err)
	}

	// The recompute back-filled rank and percentile after the insert
	attempt, err = s.repo.Attempt().GetBySubmissionID(ctx, nil, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload attempt: %w", err)
	}

	if err := s.cache.InvalidateExam(ctx, submission.ExamID); err != nil {
		s.logger.Warn("Failed to invalidate exam caches", "exam_id", submission.ExamID, "error", err)
	}

	s.publishGraded(ctx, attempt, stats)

	s.logger.Info("Recorded exam attempt",
		"attempt_id", attempt.ID,
		"exam_id", attempt.ExamID,
		"user_id", attempt.UserID,
		"score", attempt.Score,
		"accuracy", attempt.Accuracy)

	return &AttemptResponse{
		ExamAttempt:    attempt,
		TotalQuestions: grade.TotalQuestions,
		HasReport:      false,
	}, nil
}

func (s *attemptService) GetBySubmissionID(ctx context.Context, submissionID uint) (*AttemptResponse, error) {
	attempt, err := s.repo.Attempt().GetBySubmissionIDWithReport(ctx, nil, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	total, err := s.repo.Exam().CountQuestions(ctx, nil, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to count exam questions: %w", err)
	}

	return &AttemptResponse{
		ExamAttempt:    attempt,
		TotalQuestions: int(total),
		HasReport:      attempt.Report != nil,
	}, nil
}

func (s *attemptService) GetUserAttempts(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*AttemptResponse, int64, error) {
	attempts, total, err := s.repo.Attempt().GetByUser(ctx, nil, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user attempts: %w", err)
	}

	responses := make([]*AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, &AttemptResponse{ExamAttempt: attempt})
	}

	return responses, total, nil
}

// publishGraded emits the post-commit events. Publishing failures are
// logged, not returned; the attempt is already durable.
func (s *attemptService) publishGraded(ctx context.Context, attempt *models.ExamAttempt, stats *models.ExamStatistics) {
	gradedEvent := events.NewAttemptGradedEvent(events.AttemptGradedEvent{
		AttemptID:    attempt.ID,
		SubmissionID: attempt.SubmissionID,
		ExamID:       attempt.ExamID,
		UserID:       attempt.UserID,
		Score:        attempt.Score,
		ScoreKind:    string(attempt.ScoreKind),
		Accuracy:     attempt.Accuracy,
		Rank:         attempt.Rank,
		Percentile:   attempt.Percentile,
		GradedAt:     attempt.CreatedAt,
	})
	if err := s.publisher.PublishResultEvent(ctx, gradedEvent); err != nil {
		s.logger.Error("Failed to publish attempt graded event", "attempt_id", attempt.ID, "error", err)
	}

	if stats == nil {
		return
	}
	statsEvent := events.NewStatisticsRecomputedEvent(events.StatisticsRecomputedEvent{
		ExamID:        stats.ExamID,
		TotalAttempts: stats.TotalAttempts,
		AverageScore:  stats.AverageScore,
		RecomputedAt:  time.Now(),
	})
	if err := s.publisher.PublishResultEvent(ctx, statsEvent); err != nil {
		s.logger.Error("Failed to publish statistics recomputed event", "exam_id", stats.ExamID, "error", err)
	}
}
