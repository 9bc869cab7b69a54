package services

import (
	"errors"
	"fmt"

	apperrors "github.com/edunite/exam-result-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Exam specific errors
	ErrExamNotFound = errors.New("exam not found")
	// ErrExamCategoryMissing guards report generation against catalog rows
	// whose category link was lost. Surfaced as not-found rather than a 500.
	ErrExamCategoryMissing = errors.New("exam category not found")
	ErrExamHasNoQuestions  = errors.New("exam has no questions")

	// Submission specific errors
	ErrSubmissionNotFound = errors.New("submission not found")

	// Attempt specific errors
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptAlreadyExists = errors.New("attempt already recorded for this submission")

	// Statistics specific errors
	ErrStatisticsNotFound = errors.New("statistics not found for exam")

	// Report specific errors
	ErrReportNotFound = errors.New("analysis report not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrExamCategoryMissing) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrStatisticsNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrBadRequest) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAttemptAlreadyExists)
}
