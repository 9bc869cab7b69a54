package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/edunite/exam-result-service/internal/cache"
	"github.com/edunite/exam-result-service/internal/models"
	"github.com/edunite/exam-result-service/internal/repositories"
	"gorm.io/gorm"
)

const topPerformerCount = 10

type statisticsService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewStatisticsService(repo repositories.Repository, cacheManager *cache.CacheManager, logger *slog.Logger) StatisticsService {
	return &statisticsService{
		repo:   repo,
		cache:  cacheManager,
		logger: logger,
	}
}

// ===== RECOMPUTE =====

// Recompute rebuilds the exam's ranking and aggregate row from the full
// attempt population. It is deliberately not incremental: correctness under
// concurrent submits comes from every recompute being individually complete,
// so whichever transaction commits last leaves a consistent result.
func (s *statisticsService) Recompute(ctx context.Context, txRepo repositories.Repository, examID uint) (*models.ExamStatistics, error) {
	if txRepo == nil {
		txRepo = s.repo
	}

	samples, err := txRepo.Attempt().GetScoresByExam(ctx, nil, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt population: %w", err)
	}

	ranks := ComputeRanks(samples)
	if len(ranks) > 0 {
		if err := txRepo.Attempt().UpdateRanks(ctx, nil, ranks); err != nil {
			return nil, fmt.Errorf("failed to back-fill ranks: %w", err)
		}
	}

	stats := ComputeAggregates(examID, samples)
	if err := txRepo.Statistics().Upsert(ctx, nil, stats); err != nil {
		return nil, fmt.Errorf("failed to upsert statistics: %w", err)
	}

	s.logger.Info("Recomputed exam statistics",
		"exam_id", examID,
		"total_attempts", stats.TotalAttempts,
		"average_score", stats.AverageScore)

	return stats, nil
}

// ===== READS =====

func (s *statisticsService) GetByExam(ctx context.Context, examID uint) (*StatisticsResponse, error) {
	var response StatisticsResponse

	cacheKey := fmt.Sprintf("exam:%d", examID)
	err := s.cache.Stats.CacheOrExecute(ctx, cacheKey, &response, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrExamNotFound
			}
			return nil, fmt.Errorf("failed to get exam: %w", err)
		}

		stats, err := s.repo.Statistics().GetByExam(ctx, nil, examID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStatisticsNotFound
			}
			return nil, fmt.Errorf("failed to get statistics: %w", err)
		}

		return &StatisticsResponse{
			ExamStatistics: stats,
			ExamTitle:      exam.Title,
		}, nil
	})
	if err != nil {
		// CacheOrExecute wraps fetch failures; recover the service error
		if errors.Is(err, ErrExamNotFound) {
			return nil, ErrExamNotFound
		}
		if errors.Is(err, ErrStatisticsNotFound) {
			return nil, ErrStatisticsNotFound
		}
		return nil, err
	}

	return &response, nil
}

func (s *statisticsService) GetLeaderboard(ctx context.Context, examID uint, limit, offset int) (*LeaderboardResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var response LeaderboardResponse

	cacheKey := fmt.Sprintf("exam:%d:%d:%d", examID, offset, limit)
	err := s.cache.Leaderboard.CacheOrExecute(ctx, cacheKey, &response, cache.LeaderboardCacheConfig.TTL, func() (interface{}, error) {
		attempts, err := s.repo.Attempt().GetByExam(ctx, nil, examID)
		if err != nil {
			return nil, fmt.Errorf("failed to load attempts: %w", err)
		}
		if len(attempts) == 0 {
			if exists, err := s.repo.Exam().Exists(ctx, nil, examID); err != nil {
				return nil, err
			} else if !exists {
				return nil, ErrExamNotFound
			}
		}

		total := int64(len(attempts))

		page := attempts
		if offset < len(page) {
			page = page[offset:]
		} else {
			page = nil
		}
		if len(page) > limit {
			page = page[:limit]
		}

		names := s.resolveUserNames(ctx, page)

		entries := make([]repositories.LeaderboardEntry, 0, len(page))
		for i, attempt := range page {
			rank := offset + i + 1
			if attempt.Rank != nil {
				rank = *attempt.Rank
			}
			entries = append(entries, repositories.LeaderboardEntry{
				Rank:       rank,
				UserID:     attempt.UserID,
				UserName:   names[attempt.UserID],
				Score:      attempt.Score,
				ScoreKind:  attempt.ScoreKind,
				Accuracy:   attempt.Accuracy,
				Percentile: attempt.Percentile,
				TimeTaken:  attempt.TimeTaken,
			})
		}

		return &LeaderboardResponse{
			ExamID:  examID,
			Entries: entries,
			Total:   total,
		}, nil
	})
	if err != nil {
		if errors.Is(err, ErrExamNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	return &response, nil
}

// resolveUserNames maps user IDs to display names. Identity-provider
// failures degrade to IDs only; the leaderboard must not depend on Casdoor
// being up.
func (s *statisticsService) resolveUserNames(ctx context.Context, attempts []*models.ExamAttempt) map[string]string {
	ids := make([]string, 0, len(attempts))
	seen := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		if !seen[a.UserID] {
			ids = append(ids, a.UserID)
			seen[a.UserID] = true
		}
	}

	names := make(map[string]string, len(ids))
	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve user names for leaderboard", "error", err)
		return names
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}
	return names
}

// ===== PURE COMPUTATIONS =====

// ComputeRanks assigns competition ranking over the population: equal scores
// share a rank and the next distinct score skips the tied positions
// (1, 2, 2, 4). Ties keep submission order between themselves.
func ComputeRanks(samples []repositories.ScoreSample) []repositories.AttemptRank {
	n := len(samples)
	if n == 0 {
		return nil
	}

	sorted := make([]repositories.ScoreSample, n)
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	ranks := make([]repositories.AttemptRank, 0, n)
	for i, sample := range sorted {
		rank := i + 1
		if i > 0 && sorted[i].Score == sorted[i-1].Score {
			rank = ranks[i-1].Rank
		}
		ranks = append(ranks, repositories.AttemptRank{
			AttemptID:  sample.AttemptID,
			Rank:       rank,
			Percentile: PercentileForRank(rank, n),
		})
	}

	return ranks
}

// PercentileForRank converts a competition rank into the share of the
// population at or below this score. A population of one scores 100.
func PercentileForRank(rank, n int) float64 {
	if n <= 1 {
		return 100
	}
	return Round2((1 - float64(rank-1)/float64(n-1)) * 100)
}

// ComputeAggregates builds the full statistics row from the population.
func ComputeAggregates(examID uint, samples []repositories.ScoreSample) *models.ExamStatistics {
	stats := &models.ExamStatistics{
		ExamID:        examID,
		TotalAttempts: len(samples),
	}

	if len(samples) == 0 {
		stats.TopPerformers = []models.TopPerformer{}
		return stats
	}

	scores := make([]float64, len(samples))
	var sum float64
	var timeSum int
	highest := samples[0].Score
	lowest := samples[0].Score
	for i, sample := range samples {
		scores[i] = sample.Score
		sum += sample.Score
		timeSum += sample.TimeTaken
		if sample.Score > highest {
			highest = sample.Score
		}
		if sample.Score < lowest {
			lowest = sample.Score
		}
	}

	stats.AverageScore = Round2(sum / float64(len(samples)))
	stats.HighestScore = highest
	stats.LowestScore = lowest
	stats.MedianScore = Median(scores)
	stats.StandardDeviation = StdDev(scores)
	stats.AverageTimeTaken = Round2(float64(timeSum) / float64(len(samples)))
	stats.TopPerformers = topPerformers(samples)

	return stats
}

// Median returns the middle score, averaging the two central values for an
// even population.
func Median(scores []float64) float64 {
	n := len(scores)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return Round2((sorted[mid-1] + sorted[mid]) / 2)
}

// StdDev is the population standard deviation; below two samples the spread
// is defined as zero.
func StdDev(scores []float64) float64 {
	n := len(scores)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(n)

	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(n)

	return Round2(math.Sqrt(variance))
}

// topPerformers picks the highest-scoring attempts. samples arrive in
// ranking order (score desc, earlier submission first), so ties resolve to
// whoever submitted first.
func topPerformers(samples []repositories.ScoreSample) []models.TopPerformer {
	sorted := make([]repositories.ScoreSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	limit := topPerformerCount
	if len(sorted) < limit {
		limit = len(sorted)
	}

	top := make([]models.TopPerformer, 0, limit)
	for _, sample := range sorted[:limit] {
		top = append(top, models.TopPerformer{
			UserID: sample.UserID,
			Score:  sample.Score,
		})
	}
	return top
}
