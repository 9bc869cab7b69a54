package models

import (
	"time"

	"gorm.io/datatypes"
)

// ScoreKind tags how ExamAttempt.Score is encoded so downstream consumers
// never have to infer it from the score's magnitude.
type ScoreKind string

const (
	ScoreRawCount   ScoreKind = "raw_count"  // count of correct answers
	ScorePercentage ScoreKind = "percentage" // already scaled to 0-100
)

// ExamAttempt is the graded record for one submission. At most one attempt
// exists per submission; the unique index on submission_id is the source of
// truth under concurrent submits. Rank and percentile are back-filled by the
// statistics recompute inside the same transaction that creates the row, and
// the record is immutable afterwards.
type ExamAttempt struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	ExamID       uint   `json:"exam_id" gorm:"not null;index"`
	SubmissionID uint   `json:"submission_id" gorm:"not null;uniqueIndex"`
	UserID       string `json:"user_id" gorm:"not null;index;size:255"`

	// Scoring
	Score              float64   `json:"score"`
	ScoreKind          ScoreKind `json:"score_kind" gorm:"default:raw_count;size:20"`
	Accuracy           float64   `json:"accuracy"` // percent of attempted answered correctly
	AttemptedQuestions int       `json:"attempted_questions"`
	CorrectAnswers     int       `json:"correct_answers"`
	IncorrectAnswers   int       `json:"incorrect_answers"`
	TimeTaken          int       `json:"time_taken"` // seconds

	// Population placement, null until the first statistics recompute
	Rank       *int     `json:"rank"`
	Percentile *float64 `json:"percentile"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam       Exam            `json:"exam" gorm:"foreignKey:ExamID"`
	Submission ExamSubmission  `json:"submission" gorm:"foreignKey:SubmissionID"`
	Report     *AnalysisReport `json:"report" gorm:"foreignKey:ExamAttemptID"`
}

type TopPerformer struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// ExamStatistics is the per-exam running aggregate, one row per exam.
// It is fully recomputed from the attempt population on every new attempt
// and overwritten in place; concurrent recomputes are each individually
// correct, so last writer wins.
type ExamStatistics struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	ExamID uint `json:"exam_id" gorm:"not null;uniqueIndex"`

	TotalAttempts     int     `json:"total_attempts"`
	AverageScore      float64 `json:"average_score"`
	HighestScore      float64 `json:"highest_score"`
	LowestScore       float64 `json:"lowest_score"`
	MedianScore       float64 `json:"median_score"`
	StandardDeviation float64 `json:"standard_deviation"` // population, 0 below 2 attempts
	AverageTimeTaken  float64 `json:"average_time_taken"` // seconds

	TopPerformers datatypes.JSONSlice[TopPerformer] `json:"top_performers" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

func (ExamStatistics) TableName() string {
	return "exam_statistics"
}
