package services

import (
	"testing"

	"github.com/edunite/exam-result-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplesFromScores(scores ...float64) []repositories.ScoreSample {
	samples := make([]repositories.ScoreSample, len(scores))
	for i, score := range scores {
		samples[i] = repositories.ScoreSample{
			AttemptID: uint(i + 1),
			UserID:    "user-" + string(rune('a'+i)),
			Score:     score,
		}
	}
	return samples
}

func TestComputeRanks_CompetitionRanking(t *testing.T) {
	// Scores 90, 85, 85, 70: tied attempts share rank 2, next gets rank 4.
	samples := samplesFromScores(90, 85, 85, 70)

	ranks := ComputeRanks(samples)
	require.Len(t, ranks, 4)

	assert.Equal(t, 1, ranks[0].Rank)
	assert.Equal(t, 2, ranks[1].Rank)
	assert.Equal(t, 2, ranks[2].Rank)
	assert.Equal(t, 4, ranks[3].Rank)

	// Tied attempts keep submission order between themselves
	assert.Equal(t, uint(2), ranks[1].AttemptID)
	assert.Equal(t, uint(3), ranks[2].AttemptID)

	// Tied ranks share the same percentile
	assert.Equal(t, ranks[1].Percentile, ranks[2].Percentile)
	assert.Equal(t, 100.0, ranks[0].Percentile)
	assert.Equal(t, 0.0, ranks[3].Percentile)
}

func TestComputeRanks_MonotonicWithScore(t *testing.T) {
	samples := samplesFromScores(10, 50, 30, 50, 20)

	ranks := ComputeRanks(samples)
	require.Len(t, ranks, 5)

	byAttempt := make(map[uint]repositories.AttemptRank)
	for _, r := range ranks {
		byAttempt[r.AttemptID] = r
	}

	// Higher score never ranks worse than a lower score
	for _, a := range samples {
		for _, b := range samples {
			if a.Score > b.Score {
				assert.Less(t, byAttempt[a.AttemptID].Rank, byAttempt[b.AttemptID].Rank,
					"attempt %d (%.0f) vs %d (%.0f)", a.AttemptID, a.Score, b.AttemptID, b.Score)
			}
		}
	}
}

func TestComputeRanks_SingleAttempt(t *testing.T) {
	ranks := ComputeRanks(samplesFromScores(42))

	require.Len(t, ranks, 1)
	assert.Equal(t, 1, ranks[0].Rank)
	assert.Equal(t, 100.0, ranks[0].Percentile)
}

func TestComputeRanks_Empty(t *testing.T) {
	assert.Nil(t, ComputeRanks(nil))
}

func TestPercentileForRank(t *testing.T) {
	tests := []struct {
		rank int
		n    int
		want float64
	}{
		{1, 1, 100},
		{1, 5, 100},
		{5, 5, 0},
		{3, 5, 50},
		{2, 4, 66.67},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PercentileForRank(tt.rank, tt.n),
			"rank %d of %d", tt.rank, tt.n)
	}
}

func TestComputeAggregates(t *testing.T) {
	samples := samplesFromScores(80, 60, 90, 70)
	for i := range samples {
		samples[i].TimeTaken = (i + 1) * 100
	}

	stats := ComputeAggregates(7, samples)

	assert.Equal(t, uint(7), stats.ExamID)
	assert.Equal(t, 4, stats.TotalAttempts)
	assert.Equal(t, 75.0, stats.AverageScore)
	assert.Equal(t, 90.0, stats.HighestScore)
	assert.Equal(t, 60.0, stats.LowestScore)
	assert.Equal(t, 75.0, stats.MedianScore) // (70+80)/2
	assert.Equal(t, 250.0, stats.AverageTimeTaken)

	require.Len(t, stats.TopPerformers, 4)
	assert.Equal(t, 90.0, stats.TopPerformers[0].Score)
	assert.Equal(t, 60.0, stats.TopPerformers[3].Score)
}

func TestComputeAggregates_SingleAttempt(t *testing.T) {
	stats := ComputeAggregates(1, samplesFromScores(55))

	assert.Equal(t, 1, stats.TotalAttempts)
	assert.Equal(t, 55.0, stats.AverageScore)
	assert.Equal(t, 55.0, stats.MedianScore)
	assert.Equal(t, 55.0, stats.HighestScore)
	assert.Equal(t, 55.0, stats.LowestScore)
	assert.Equal(t, 0.0, stats.StandardDeviation) // undefined spread below 2 samples
}

func TestComputeAggregates_Empty(t *testing.T) {
	stats := ComputeAggregates(3, nil)

	assert.Equal(t, 0, stats.TotalAttempts)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.Empty(t, stats.TopPerformers)
	assert.NotNil(t, stats.TopPerformers)
}

func TestComputeAggregates_TopPerformersCapped(t *testing.T) {
	scores := make([]float64, 15)
	for i := range scores {
		scores[i] = float64(i)
	}

	stats := ComputeAggregates(1, samplesFromScores(scores...))

	require.Len(t, stats.TopPerformers, 10)
	assert.Equal(t, 14.0, stats.TopPerformers[0].Score)
	assert.Equal(t, 5.0, stats.TopPerformers[9].Score)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5}, 5},
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"unsorted input", []float64{10, 2, 8, 4}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.scores))
		})
	}
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{7}))
	assert.Equal(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}))
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5}))
}
