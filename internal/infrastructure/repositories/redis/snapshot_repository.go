package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/pkg/retry"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotRepository struct {
	client   *redis.Client
	prefix   string
	retryCfg retry.Config
}

func NewRedisSnapshotRepository(client *redis.Client) ports.SnapshotRepository {
	cfg := retry.DefaultConfig()
	cfg.NonRetryableErrors = []error{domain.ErrSnapshotNotFound}
	return &RedisSnapshotRepository{
		client:   client,
		prefix:   "streamgrid:snapshot:",
		retryCfg: cfg,
	}
}

func (r *RedisSnapshotRepository) snapshotKey(name string) string {
	return r.prefix + name
}

func (r *RedisSnapshotRepository) indexKey() string {
	return r.prefix + "names"
}

func (r *RedisSnapshotRepository) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return retry.Retry(ctx, r.retryCfg, func() error {
		if err := r.client.Set(ctx, r.snapshotKey(snapshot.Name), data, 0).Err(); err != nil {
			return fmt.Errorf("failed to set snapshot in Redis: %w", err)
		}
		if err := r.client.SAdd(ctx, r.indexKey(), snapshot.Name).Err(); err != nil {
			return fmt.Errorf("failed to index snapshot: %w", err)
		}
		return nil
	})
}

func (r *RedisSnapshotRepository) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	var snapshot domain.LayoutSnapshot
	err := retry.Retry(ctx, r.retryCfg, func() error {
		data, err := r.client.Get(ctx, r.snapshotKey(name)).Result()
		if err == redis.Nil {
			return domain.ErrSnapshotNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get snapshot from Redis: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *RedisSnapshotRepository) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	names, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot names: %w", err)
	}

	out := make([]*domain.LayoutSnapshot, 0, len(names))
	for _, name := range names {
		snapshot, err := r.Get(ctx, name)
		if err == domain.ErrSnapshotNotFound {
			// Index entry may outlive a deleted key; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (r *RedisSnapshotRepository) Delete(ctx context.Context, name string) error {
	return retry.Retry(ctx, r.retryCfg, func() error {
		deleted, err := r.client.Del(ctx, r.snapshotKey(name)).Result()
		if err != nil {
			return fmt.Errorf("failed to delete snapshot from Redis: %w", err)
		}
		if deleted == 0 {
			return domain.ErrSnapshotNotFound
		}
		if err := r.client.SRem(ctx, r.indexKey(), name).Err(); err != nil {
			return fmt.Errorf("failed to unindex snapshot: %w", err)
		}
		return nil
	})
}
