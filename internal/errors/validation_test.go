package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("submission_id", "is required", nil))
	assert.Equal(t, "validation failed: submission_id is required", errs.Error())

	errs = append(errs, *NewValidationError("time_taken", "must be at least 0", -5))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("score_kind", "must be raw_count or percentage", "score_kind", "points")

	assert.Equal(t, "score_kind", err.Field)
	assert.Equal(t, "score_kind", err.Rule)
	assert.Equal(t, "points", err.Value)
	assert.Equal(t, "validation error on field 'score_kind': must be raw_count or percentage", err.Error())
}

// ToValidationErrors must translate the domain's custom tags into the
// messages clients see, not the generic fallback.
func TestToValidationErrors_DomainMessages(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("score_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		return kind == "raw_count" || kind == "percentage"
	}))
	require.NoError(t, v.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		return level == "EASY" || level == "MEDIUM" || level == "HARD"
	}))

	type gradedRow struct {
		SubmissionID uint   `validate:"required"`
		ScoreKind    string `validate:"score_kind"`
		Difficulty   string `validate:"difficulty_level"`
	}

	err := v.Struct(gradedRow{ScoreKind: "points", Difficulty: "IMPOSSIBLE"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 3)

	messages := make(map[string]string, len(errs))
	rules := make(map[string]string, len(errs))
	for _, e := range errs {
		messages[e.Field] = e.Message
		rules[e.Field] = e.Rule
	}

	assert.Equal(t, "is required", messages["SubmissionID"])
	assert.Equal(t, "must be raw_count or percentage", messages["ScoreKind"])
	assert.Equal(t, "must be EASY, MEDIUM, or HARD", messages["Difficulty"])
	assert.Equal(t, "score_kind", rules["ScoreKind"])
	assert.Equal(t, "difficulty_level", rules["Difficulty"])
}

func TestToValidationErrors_UnknownError(t *testing.T) {
	errs := ToValidationErrors(assert.AnError)
	assert.Empty(t, errs)
}
