package repository

import (
	"context"
	"testing"
	"time"

	"digo_messenger/model"
	"digo_messenger/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTypingRepository_Upsert(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTypingRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "100001", "100002")
	assert.ErrorIs(t, err, ErrNotFound)

	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &model.TypingStatus{UserID: "100001", ChatWithID: "100002", IsTyping: true, LastUpdated: t0}))
	require.NoError(t, repo.Upsert(ctx, &model.TypingStatus{UserID: "100001", ChatWithID: "100002", IsTyping: false, LastUpdated: t0.Add(time.Second)}))

	status, err := repo.Get(ctx, "100001", "100002")
	require.NoError(t, err)
	assert.False(t, status.IsTyping)
	assert.True(t, status.LastUpdated.Equal(t0.Add(time.Second)))

	var count int64
	db.Model(&model.TypingStatus{}).Count(&count)
	assert.Equal(t, int64(1), count, "同一对用户只有一行")
}

func TestRedisTypingRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	repo := NewRedisTypingRepository(rdb, 10*time.Second)
	ctx := context.Background()

	_, err := repo.Get(ctx, "100001", "100002")
	assert.ErrorIs(t, err, ErrNotFound)

	t0 := time.UnixMilli(1767268800000)
	require.NoError(t, repo.Upsert(ctx, &model.TypingStatus{UserID: "100001", ChatWithID: "100002", IsTyping: true, LastUpdated: t0}))

	status, err := repo.Get(ctx, "100001", "100002")
	require.NoError(t, err)
	assert.True(t, status.IsTyping)
	assert.True(t, status.LastUpdated.Equal(t0))
	assert.Equal(t, 10*time.Second, mr.TTL(typingKey("100001", "100002")))

	// key 过期后视为没有记录
	mr.FastForward(11 * time.Second)
	_, err = repo.Get(ctx, "100001", "100002")
	assert.ErrorIs(t, err, ErrNotFound)
}
