package services

import (
	"math"

	"github.com/edunite/exam-result-service/internal/models"
)

// GradeResult is the outcome of grading one submission against the exam's
// answer key.
type GradeResult struct {
	TotalQuestions     int
	AttemptedQuestions int
	CorrectAnswers     int
	IncorrectAnswers   int
	Score              float64
	ScoreKind          models.ScoreKind
	Accuracy           float64
	TimeTaken          int // seconds

	// Per-question outcomes in answer order, for the report breakdowns
	Questions []QuestionResult
}

// QuestionResult is the graded outcome for a single answered question.
type QuestionResult struct {
	QuestionID uint
	Attempted  bool
	Correct    bool
	TimeSpent  int
	Difficulty models.DifficultyLevel
	Topic      string
}

// GradeSubmission grades every answer of the submission against the answer
// key. An answer is correct only when its chosen option set equals the
// question's correct option set exactly; supersets and subsets score as
// incorrect. The raw score is the number of correct answers.
func GradeSubmission(submission *models.ExamSubmission, questions []*models.Question) GradeResult {
	questionsByID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		questionsByID[q.ID] = q
	}

	result := GradeResult{
		TotalQuestions: len(questions),
		ScoreKind:      models.ScoreRawCount,
		Questions:      make([]QuestionResult, 0, len(submission.Answers)),
	}

	for _, answer := range submission.Answers {
		question := questionsByID[answer.QuestionID]

		qr := QuestionResult{
			QuestionID: answer.QuestionID,
			Attempted:  answer.IsAttempted,
			TimeSpent:  answer.TimeSpent,
		}
		if question != nil {
			qr.Difficulty = question.Difficulty
			if question.Chapter != nil {
				qr.Topic = question.Chapter.Name
			}
		}

		result.TimeTaken += answer.TimeSpent

		if !answer.IsAttempted {
			result.Questions = append(result.Questions, qr)
			continue
		}

		result.AttemptedQuestions++

		if question != nil && isExactMatch(answer.ChosenOptions, question.Options) {
			qr.Correct = true
			result.CorrectAnswers++
		} else {
			result.IncorrectAnswers++
		}

		result.Questions = append(result.Questions, qr)
	}

	result.Score = float64(result.CorrectAnswers)
	result.Accuracy = Accuracy(result.CorrectAnswers, result.AttemptedQuestions)

	return result
}

// isExactMatch reports whether the chosen option set equals the correct
// option set. A question with no correct options can never be matched, so
// answers to it grade as incorrect rather than panicking.
func isExactMatch(chosen []models.UserAnswerOption, options []models.Option) bool {
	correct := make(map[uint]bool)
	for _, opt := range options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}
	if len(correct) == 0 {
		return false
	}

	picked := make(map[uint]bool, len(chosen))
	for _, c := range chosen {
		picked[c.OptionID] = true
	}

	if len(picked) != len(correct) {
		return false
	}
	for id := range picked {
		if !correct[id] {
			return false
		}
	}
	return true
}

// Accuracy is the percentage of attempted questions answered correctly,
// rounded to two decimals. Zero attempted questions yield zero, not NaN.
func Accuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return Round2(float64(correct) / float64(attempted) * 100)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
