package models

import (
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamDraft     ExamStatus = "Draft"
	ExamPublished ExamStatus = "Published"
	ExamArchived  ExamStatus = "Archived"
)

// Exam, ExamSection, Chapter and ExamCategory are owned by the catalog
// service. They are mapped here read-only so grading and reporting can
// join against them; this service never creates or mutates these rows.
type Exam struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title" gorm:"not null;size:200;index"`
	Status     ExamStatus `json:"status" gorm:"default:Draft;index"`
	Duration   int        `json:"duration"` // minutes
	CategoryID *uint      `json:"category_id" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Category *ExamCategory `json:"category" gorm:"foreignKey:CategoryID"`
	Sections []ExamSection `json:"sections" gorm:"foreignKey:ExamID"`
}

// ExamSection groups questions and carries the per-section marking scheme.
type ExamSection struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	ExamID uint   `json:"exam_id" gorm:"not null;index"`
	Name   string `json:"name" gorm:"not null;size:200"`
	Order  int    `json:"order" gorm:"default:0"`

	// Section marking config
	FullMarks     float64 `json:"full_marks" gorm:"default:1"`
	NegativeMarks float64 `json:"negative_marks" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam      Exam       `json:"exam" gorm:"foreignKey:ExamID"`
	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

type ExamCategory struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

// Chapter is the topic a question belongs to, used for topic-wise
// performance breakdowns.
type Chapter struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:200;index"`
}

func (Exam) TableName() string {
	return "exams"
}
