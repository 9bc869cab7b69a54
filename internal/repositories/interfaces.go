package repositories

import (
	"time"

	"github.com/edunite/exam-result-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	ExamID    *uint      `json:"exam_id"`
	UserID    *string    `json:"user_id"`
	ScoreKind *string    `json:"score_kind"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "score", "accuracy"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED HELPER STRUCTS =====

// AttemptRank carries one ranking assignment produced by a statistics
// recompute. Ranks are written back in a single batch so a half-applied
// ranking never becomes visible.
type AttemptRank struct {
	AttemptID  uint    `json:"attempt_id"`
	Rank       int     `json:"rank"`
	Percentile float64 `json:"percentile"`
}

// ScoreSample is the minimal projection of an attempt the aggregate
// computations need.
type ScoreSample struct {
	AttemptID uint    `json:"attempt_id"`
	UserID    string  `json:"user_id"`
	Score     float64 `json:"score"`
	TimeTaken int     `json:"time_taken"`
}

// LeaderboardEntry is one row of the per-exam leaderboard, ordered by rank.
type LeaderboardEntry struct {
	Rank       int              `json:"rank"`
	UserID     string           `json:"user_id"`
	UserName   string           `json:"user_name,omitempty"`
	Score      float64          `json:"score"`
	ScoreKind  models.ScoreKind `json:"score_kind"`
	Accuracy   float64          `json:"accuracy"`
	Percentile *float64         `json:"percentile"`
	TimeTaken  int              `json:"time_taken"`
}
