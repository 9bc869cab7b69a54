package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisReport is the 1:1 performance report for an attempt, created
// lazily on the first report request and never recomputed afterwards.
// Breakdowns are stored as typed jsonb documents rather than open maps so
// the report schema is enforced at compile time.
type AnalysisReport struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	ExamAttemptID uint   `json:"exam_attempt_id" gorm:"not null;uniqueIndex"`
	ExamID        uint   `json:"exam_id" gorm:"not null;index"`
	UserID        string `json:"user_id" gorm:"not null;index;size:255"`

	OverallPerformance        datatypes.JSONType[OverallPerformance]     `json:"overall_performance" gorm:"type:jsonb"`
	TopicWisePerformance      datatypes.JSONSlice[TopicPerformance]      `json:"topic_wise_performance" gorm:"type:jsonb"`
	DifficultyWisePerformance datatypes.JSONSlice[DifficultyPerformance] `json:"difficulty_wise_performance" gorm:"type:jsonb"`
	TimeManagement            datatypes.JSONType[TimeManagement]         `json:"time_management" gorm:"type:jsonb"`
	StrengthsAndWeaknesses    datatypes.JSONType[StrengthsAndWeaknesses] `json:"strengths_and_weaknesses" gorm:"type:jsonb"`
	SuggestedImprovements     datatypes.JSONSlice[string]                `json:"suggested_improvements" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OverallPerformance struct {
	Score                float64  `json:"score"` // normalized to 0-100
	MaxMarks             float64  `json:"max_marks"`
	Rank                 *int     `json:"rank"`
	Percentile           *float64 `json:"percentile"`
	Accuracy             float64  `json:"accuracy"`
	TotalQuestions       int      `json:"total_questions"`
	AttemptedQuestions   int      `json:"attempted_questions"`
	CorrectAnswers       int      `json:"correct_answers"`
	IncorrectAnswers     int      `json:"incorrect_answers"`
	UnattemptedQuestions int      `json:"unattempted_questions"`
}

type TopicPerformance struct {
	Topic     string  `json:"topic"`
	Accuracy  float64 `json:"accuracy"`
	Questions int     `json:"questions"`
	Correct   int     `json:"correct"`
}

type DifficultyPerformance struct {
	Difficulty DifficultyLevel `json:"difficulty"`
	Accuracy   float64         `json:"accuracy"`
	Questions  int             `json:"questions"`
	Correct    int             `json:"correct"`
}

type TimeManagement struct {
	TotalTimeTaken         int     `json:"total_time_taken"` // seconds
	AverageTimePerQuestion float64 `json:"average_time_per_question"`
}

type StrengthsAndWeaknesses struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

func (AnalysisReport) TableName() string {
	return "analysis_reports"
}
