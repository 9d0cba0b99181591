package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisStreamRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamRegistry(client *redis.Client) ports.StreamRegistry {
	return &RedisStreamRegistry{
		client: client,
		prefix: "streamgrid:stream:",
	}
}

func (r *RedisStreamRegistry) streamKey(id domain.StreamID) string {
	return r.prefix + string(id)
}

func (r *RedisStreamRegistry) indexKey() string {
	return r.prefix + "ids"
}

func (r *RedisStreamRegistry) Register(ctx context.Context, info *domain.StreamInfo) error {
	cp := *info
	if cp.RegisteredAt.IsZero() {
		cp.RegisteredAt = time.Now()
	}
	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal stream info: %w", err)
	}

	if err := r.client.Set(ctx, r.streamKey(info.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set stream info in Redis: %w", err)
	}
	if err := r.client.SAdd(ctx, r.indexKey(), string(info.ID)).Err(); err != nil {
		return fmt.Errorf("failed to index stream: %w", err)
	}
	return nil
}

func (r *RedisStreamRegistry) Lookup(ctx context.Context, id domain.StreamID) (*domain.StreamInfo, error) {
	data, err := r.client.Get(ctx, r.streamKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream info from Redis: %w", err)
	}

	var info domain.StreamInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stream info: %w", err)
	}
	return &info, nil
}

func (r *RedisStreamRegistry) Unregister(ctx context.Context, id domain.StreamID) error {
	deleted, err := r.client.Del(ctx, r.streamKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete stream info from Redis: %w", err)
	}
	if deleted == 0 {
		return domain.ErrStreamNotRegistered
	}
	if err := r.client.SRem(ctx, r.indexKey(), string(id)).Err(); err != nil {
		return fmt.Errorf("failed to unindex stream: %w", err)
	}
	return nil
}

func (r *RedisStreamRegistry) List(ctx context.Context) ([]*domain.StreamInfo, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stream ids: %w", err)
	}

	out := make([]*domain.StreamInfo, 0, len(ids))
	for _, id := range ids {
		info, err := r.Lookup(ctx, domain.StreamID(id))
		if err == domain.ErrStreamNotRegistered {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}
