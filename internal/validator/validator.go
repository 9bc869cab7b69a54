package validator

import (
	"github.com/edunite/exam-result-service/internal/utils"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines struct tag
// validation with submission integrity checks.
type Validator struct {
	structValidator     *validator.Validate
	submissionValidator *SubmissionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	utils.RegisterCustomValidators(structValidator)

	return &Validator{
		structValidator:     structValidator,
		submissionValidator: NewSubmissionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to the shared
// validation error type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Submission returns the submission validator
func (v *Validator) Submission() *SubmissionValidator {
	return v.submissionValidator
}
