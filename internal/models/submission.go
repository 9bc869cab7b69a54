package models

import "time"

// ExamSubmission is the raw, ungraded answer set for one exam. It is owned
// by the submission store; this service only ever reads it.
type ExamSubmission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExamID      uint      `json:"exam_id" gorm:"not null;index"`
	UserID      string    `json:"user_id" gorm:"not null;index;size:255"`
	SubmittedAt time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam    Exam         `json:"exam" gorm:"foreignKey:ExamID"`
	Answers []UserAnswer `json:"answers" gorm:"foreignKey:SubmissionID"`
}

// UserAnswer is one record per question per submission.
type UserAnswer struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	SubmissionID uint `json:"submission_id" gorm:"not null;index"`
	QuestionID   uint `json:"question_id" gorm:"not null;index"`

	IsAttempted bool `json:"is_attempted" gorm:"default:false"`
	TimeSpent   int  `json:"time_spent"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Submission    ExamSubmission     `json:"submission" gorm:"foreignKey:SubmissionID"`
	Question      Question           `json:"question" gorm:"foreignKey:QuestionID"`
	ChosenOptions []UserAnswerOption `json:"chosen_options" gorm:"foreignKey:UserAnswerID"`
}

// UserAnswerOption records one selected option of a (possibly multi-select)
// answer.
type UserAnswerOption struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	UserAnswerID uint `json:"user_answer_id" gorm:"not null;index"`
	OptionID     uint `json:"option_id" gorm:"not null"`
}
