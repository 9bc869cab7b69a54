package validator

import (
	"fmt"

	"github.com/edunite/exam-result-service/internal/models"
)

// SubmissionValidator checks the referential integrity of a submission's
// answer tree before it is graded. Grading itself tolerates odd data (an
// answer to an optionless question is simply incorrect); these checks catch
// data that points outside the exam entirely.
type SubmissionValidator struct{}

func NewSubmissionValidator() *SubmissionValidator {
	return &SubmissionValidator{}
}

// ValidateForGrading verifies every answer references a question of the exam
// and every chosen option belongs to that question. An empty answer list is
// valid; it grades to zero.
func (v *SubmissionValidator) ValidateForGrading(submission *models.ExamSubmission, questions []*models.Question) ValidationErrors {
	var errs ValidationErrors

	optionsByQuestion := make(map[uint]map[uint]bool, len(questions))
	for _, q := range questions {
		options := make(map[uint]bool, len(q.Options))
		for _, opt := range q.Options {
			options[opt.ID] = true
		}
		optionsByQuestion[q.ID] = options
	}

	seen := make(map[uint]bool, len(submission.Answers))
	for _, answer := range submission.Answers {
		options, ok := optionsByQuestion[answer.QuestionID]
		if !ok {
			errs = append(errs, ValidationError{
				Field:   "answers",
				Message: fmt.Sprintf("question %d does not belong to exam %d", answer.QuestionID, submission.ExamID),
				Value:   answer.QuestionID,
			})
			continue
		}

		if seen[answer.QuestionID] {
			errs = append(errs, ValidationError{
				Field:   "answers",
				Message: fmt.Sprintf("duplicate answer for question %d", answer.QuestionID),
				Value:   answer.QuestionID,
			})
		}
		seen[answer.QuestionID] = true

		if answer.TimeSpent < 0 {
			errs = append(errs, ValidationError{
				Field:   "answers",
				Message: fmt.Sprintf("negative time spent on question %d", answer.QuestionID),
				Value:   answer.TimeSpent,
			})
		}

		for _, chosen := range answer.ChosenOptions {
			if !options[chosen.OptionID] {
				errs = append(errs, ValidationError{
					Field:   "answers",
					Message: fmt.Sprintf("option %d does not belong to question %d", chosen.OptionID, answer.QuestionID),
					Value:   chosen.OptionID,
				})
			}
		}
	}

	return errs
}
