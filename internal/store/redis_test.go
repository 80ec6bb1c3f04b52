package store

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/anyswap-engine/internal/models"
	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	err = client.FlushDB(ctx).Err()
	require.NoError(t, err)

	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.FlushDB(ctx).Err()
	_ = client.Close()
}

func newTestPool(t *testing.T) *pool.Pool {
	t.Helper()
	id, err := pool.NewID()
	require.NoError(t, err)

	var m1, m2 [32]byte
	m1[0], m2[0] = 1, 2
	p, err := pool.New(id, []pool.Asset{
		{Mint: solana.PublicKeyFromBytes(m1[:]), Symbol: "AAA", Weight: 20, Reserve: 1_000_000},
		{Mint: solana.PublicKeyFromBytes(m2[:]), Symbol: "BBB", Weight: 40, Reserve: 2_000_000},
	}, 3, 10000)
	require.NoError(t, err)
	return p
}

func TestRedisStore_CreateGet(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	s, err := NewRedisStore(client, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()
	p := newTestPool(t)

	require.NoError(t, s.Create(ctx, p))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Assets[0].Mint, got.Assets[0].Mint)
	assert.Equal(t, uint64(1_000_000), got.Assets[0].Reserve)

	// duplicate ID bounces
	assert.ErrorIs(t, s.Create(ctx, p), ErrAlreadyExists)

	// unknown pool
	_, err = s.Get(ctx, "doesnotexist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_List(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	s, err := NewRedisStore(client, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()

	pools, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pools)

	p1 := newTestPool(t)
	p2 := newTestPool(t)
	require.NoError(t, s.Create(ctx, p1))
	require.NoError(t, s.Create(ctx, p2))

	pools, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, pools, 2)
}

func TestRedisStore_Commit(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	s, err := NewRedisStore(client, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()
	p := newTestPool(t)
	require.NoError(t, s.Create(ctx, p))

	// a clean commit bumps the version
	next := p.Clone()
	next.Assets[0].Reserve = 1_500_000
	committed, err := s.Commit(ctx, next, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), committed.Version)

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), got.Assets[0].Reserve)
	assert.Equal(t, uint64(1), got.Version)

	// a second writer with the stale version loses
	stale := p.Clone()
	stale.Assets[0].Reserve = 999
	_, err = s.Commit(ctx, stale, 0)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// the stored state is the winner's
	got, err = s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000), got.Assets[0].Reserve)

	// committing an unknown pool
	ghost := newTestPool(t)
	_, err = s.Commit(ctx, ghost, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	s, err := NewRedisStore(client, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()
	p := newTestPool(t)
	require.NoError(t, s.Create(ctx, p))

	require.NoError(t, s.Delete(ctx, p.ID))

	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	pools, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, pools)

	// deleting a non-existent pool should not error
	assert.NoError(t, s.Delete(ctx, "doesnotexist"))
}

func TestRedisStore_RecentOps(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	s, err := NewRedisStore(client, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()

	ops, err := s.GetRecentOps(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ops)

	op1 := &models.Operation{PoolID: "p1", Kind: models.OpSwap, Timestamp: time.Now().UTC(), FeeTotal: 30}
	op2 := &models.Operation{PoolID: "p1", Kind: models.OpAddLiquidity, Timestamp: time.Now().UTC(), LPDelta: 100}
	require.NoError(t, s.AddRecentOp(ctx, op1))
	require.NoError(t, s.AddRecentOp(ctx, op2))

	ops, err = s.GetRecentOps(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, models.OpAddLiquidity, ops[0].Kind, "newest first")
	assert.Equal(t, models.OpSwap, ops[1].Kind)
}

func TestRedisStore_PubSub(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	s, err := NewRedisStore(client, logrus.New())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := s.SubscribeOps(ctx)
	require.NoError(t, err)

	op := &models.Operation{PoolID: "p1", Kind: models.OpSwap, Timestamp: time.Now().UTC(), Version: 3}
	require.NoError(t, s.PublishOp(ctx, op))

	select {
	case got := <-ch:
		assert.Equal(t, "p1", got.PoolID)
		assert.Equal(t, models.OpSwap, got.Kind)
		assert.Equal(t, uint64(3), got.Version)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published operation")
	}
}
