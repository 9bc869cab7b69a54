package models

import "time"

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

// DifficultyLevels lists the fixed buckets in report order. Breakdown
// output always contains all three, even when a bucket is empty.
var DifficultyLevels = []DifficultyLevel{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Question belongs to exactly one exam section and one chapter. Questions
// are immutable once the exam is published; editing happens through a full
// section replace in the catalog service.
type Question struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	SectionID  uint            `json:"section_id" gorm:"not null;index"`
	ChapterID  *uint           `json:"chapter_id" gorm:"index"`
	Text       string          `json:"text" gorm:"type:text;not null"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"default:MEDIUM;index"`
	Order      int             `json:"order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Section ExamSection `json:"section" gorm:"foreignKey:SectionID"`
	Chapter *Chapter    `json:"chapter" gorm:"foreignKey:ChapterID"`
	Options []Option    `json:"options" gorm:"foreignKey:QuestionID"`
}

// Option carries the answer key. A question has at least one option and may
// have more than one correct option (multi-select).
type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	Order      int    `json:"order" gorm:"default:0"`
}
