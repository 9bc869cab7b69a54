package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "stats:"), mr
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		ExamID uint    `json:"exam_id"`
		Mean   float64 `json:"mean"`
	}

	err := helper.Set(ctx, "exam:42", payload{ExamID: 42, Mean: 71.5}, time.Minute)
	require.NoError(t, err)

	var got payload
	err = helper.Get(ctx, "exam:42", &got)
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.ExamID)
	assert.Equal(t, 71.5, got.Mean)
}

func TestCacheHelper_GetMissing(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got map[string]any
	err := helper.Get(context.Background(), "exam:404", &got)
	assert.ErrorIs(t, err, ErrCacheNotFound)
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	helper := NewCacheHelper(nil, "stats:")
	ctx := context.Background()

	assert.NoError(t, helper.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, helper.Delete(ctx, "k"))
	assert.NoError(t, helper.InvalidatePattern(ctx, "*"))

	var got string
	assert.ErrorIs(t, helper.Get(ctx, "k", &got), ErrCacheNotAvailable)
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, helper.Set(ctx, "exam:1:summary", 1, time.Minute))
	require.NoError(t, helper.Set(ctx, "exam:1:leaderboard", 2, time.Minute))
	require.NoError(t, helper.Set(ctx, "exam:2:summary", 3, time.Minute))

	require.NoError(t, helper.InvalidatePattern(ctx, "exam:1*"))

	assert.False(t, mr.Exists("stats:exam:1:summary"))
	assert.False(t, mr.Exists("stats:exam:1:leaderboard"))
	assert.True(t, mr.Exists("stats:exam:2:summary"))
}

func TestCacheManager_InvalidateExam(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)
	ctx := context.Background()

	require.NoError(t, cm.Stats.Set(ctx, "exam:7", "stats", time.Minute))
	require.NoError(t, cm.Leaderboard.Set(ctx, "exam:7:0:10", "board", time.Minute))

	require.NoError(t, cm.InvalidateExam(ctx, 7))

	assert.False(t, mr.Exists("stats:exam:7"))
	assert.False(t, mr.Exists("leaderboard:exam:7:0:10"))
}
