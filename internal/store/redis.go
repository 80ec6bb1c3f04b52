package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/anyswap-engine/internal/constants"
	"github.com/aman-zulfiqar/anyswap-engine/internal/models"
	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
)

// RedisStore keeps the authoritative pool state in Redis. Each pool lives
// under its own key with an embedded version; Commit uses WATCH so that
// concurrent writers to the same pool serialize on that version. It also
// carries the recent-operations list and the live Pub/Sub feed.
type RedisStore struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisStore(client *redis.Client, logger *logrus.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisStore{client: client, logger: logger}, nil
}

func poolKey(id string) string {
	return constants.RedisKeyPoolPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, p *pool.Pool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}

	ok, err := s.client.SetNX(ctx, poolKey(p.ID), b, 0).Result()
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	if err := s.client.SAdd(ctx, constants.RedisKeyPoolIndex, p.ID).Err(); err != nil {
		return fmt.Errorf("index pool: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"pool_id": p.ID,
		"assets":  len(p.Assets),
	}).Info("Pool created")
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*pool.Pool, error) {
	val, err := s.client.Get(ctx, poolKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	}

	var p pool.Pool
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("unmarshal pool: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*pool.Pool, error) {
	ids, err := s.client.SMembers(ctx, constants.RedisKeyPoolIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("list pool index: %w", err)
	}
	if len(ids) == 0 {
		return []*pool.Pool{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, poolKey(id))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget pools: %w", err)
	}

	out := make([]*pool.Pool, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p pool.Pool
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

// Commit replaces the stored pool state if nobody else committed since the
// caller read version expectedVersion. The watched key makes the
// read-check-write atomic; a losing writer gets ErrVersionConflict and
// should re-read, recompute and retry.
func (s *RedisStore) Commit(ctx context.Context, p *pool.Pool, expectedVersion uint64) (*pool.Pool, error) {
	next := p.Clone()
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now().UTC()

	b, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("marshal pool: %w", err)
	}

	key := poolKey(p.ID)
	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read pool for commit: %w", err)
		}

		var cur pool.Pool
		if err := json.Unmarshal([]byte(val), &cur); err != nil {
			return fmt.Errorf("unmarshal pool for commit: %w", err)
		}
		if cur.Version != expectedVersion {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, 0)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if err == redis.TxFailedErr {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	return next, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, poolKey(id))
	pipe.SRem(ctx, constants.RedisKeyPoolIndex, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete pool: %w", err)
	}
	return nil
}

func (s *RedisStore) AddRecentOp(ctx context.Context, op *models.Operation) error {
	b, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentOps, b)
	pipe.LTrim(ctx, constants.RedisKeyRecentOps, 0, constants.MaxRecentOps-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent operation: %w", err)
	}
	return nil
}

func (s *RedisStore) GetRecentOps(ctx context.Context, limit int64) ([]*models.Operation, error) {
	if limit <= 0 || limit > constants.MaxRecentOps {
		limit = constants.DefaultOpsLimit
	}

	vals, err := s.client.LRange(ctx, constants.RedisKeyRecentOps, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent operations: %w", err)
	}

	out := make([]*models.Operation, 0, len(vals))
	for _, v := range vals {
		var op models.Operation
		if err := json.Unmarshal([]byte(v), &op); err != nil {
			s.logger.WithError(err).Warn("Skipping malformed operation in recent list")
			continue
		}
		out = append(out, &op)
	}
	return out, nil
}

func (s *RedisStore) PublishOp(ctx context.Context, op *models.Operation) error {
	b, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}
	if err := s.client.Publish(ctx, constants.PubSubChannelOps, b).Err(); err != nil {
		return fmt.Errorf("publish operation: %w", err)
	}
	return nil
}

// SubscribeOps delivers committed operations until ctx is cancelled. The
// returned channel closes when the subscription ends.
func (s *RedisStore) SubscribeOps(ctx context.Context) (<-chan *models.Operation, error) {
	sub := s.client.Subscribe(ctx, constants.PubSubChannelOps)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe operations: %w", err)
	}

	out := make(chan *models.Operation)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var op models.Operation
				if err := json.Unmarshal([]byte(msg.Payload), &op); err != nil {
					s.logger.WithError(err).Warn("Skipping malformed operation event")
					continue
				}
				select {
				case out <- &op:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
