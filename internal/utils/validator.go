package utils

import (
	"reflect"
	"strings"

	"github.com/edunite/exam-result-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Custom validation functions

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validLevel := range models.DifficultyLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func ValidateScoreKind(fl validator.FieldLevel) bool {
	validKinds := []models.ScoreKind{
		models.ScoreRawCount,
		models.ScorePercentage,
	}

	value := fl.Field().String()
	for _, validKind := range validKinds {
		if string(validKind) == value {
			return true
		}
	}
	return false
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleTeacher,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)
	validate.RegisterValidation("score_kind", ValidateScoreKind)
	validate.RegisterValidation("user_role", ValidateUserRole)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
