package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of result events
type EventType string

const (
	// Attempt events
	EventAttemptGraded EventType = "attempt.graded"

	// Statistics events
	EventStatisticsRecomputed EventType = "statistics.recomputed"

	// Report events
	EventReportGenerated EventType = "report.generated"
)

// ResultEvent is the base event structure for all result events
type ResultEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Attempt event payloads

type AttemptGradedEvent struct {
	AttemptID    uint      `json:"attempt_id"`
	SubmissionID uint      `json:"submission_id"`
	ExamID       uint      `json:"exam_id"`
	UserID       string    `json:"user_id"`
	Score        float64   `json:"score"`
	ScoreKind    string    `json:"score_kind"`
	Accuracy     float64   `json:"accuracy"`
	Rank         *int      `json:"rank,omitempty"`
	Percentile   *float64  `json:"percentile,omitempty"`
	GradedAt     time.Time `json:"graded_at"`
}

// Statistics event payloads

type StatisticsRecomputedEvent struct {
	ExamID        uint      `json:"exam_id"`
	TotalAttempts int       `json:"total_attempts"`
	AverageScore  float64   `json:"average_score"`
	RecomputedAt  time.Time `json:"recomputed_at"`
}

// Report event payloads

type ReportGeneratedEvent struct {
	ReportID    uint      `json:"report_id"`
	AttemptID   uint      `json:"attempt_id"`
	ExamID      uint      `json:"exam_id"`
	UserID      string    `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Event factory functions

func NewAttemptGradedEvent(data AttemptGradedEvent) *ResultEvent {
	return &ResultEvent{
		ID:        generateEventID(),
		Type:      EventAttemptGraded,
		Timestamp: time.Now(),
		Source:    "exam-result-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewStatisticsRecomputedEvent(data StatisticsRecomputedEvent) *ResultEvent {
	return &ResultEvent{
		ID:        generateEventID(),
		Type:      EventStatisticsRecomputed,
		Timestamp: time.Now(),
		Source:    "exam-result-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewReportGeneratedEvent(data ReportGeneratedEvent) *ResultEvent {
	return &ResultEvent{
		ID:        generateEventID(),
		Type:      EventReportGenerated,
		Timestamp: time.Now(),
		Source:    "exam-result-service",
		Version:   "1.0",
		Data:      data,
	}
}

func generateEventID() string {
	return uuid.NewString()
}
