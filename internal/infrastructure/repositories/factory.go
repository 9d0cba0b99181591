package repositories

import (
	"context"

	"streamgrid/internal/core/ports"
	"streamgrid/internal/infrastructure/repositories/memory"
	redisrepo "streamgrid/internal/infrastructure/repositories/redis"
	"streamgrid/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	// Try to connect to Redis if enabled
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// CreateSnapshotRepository creates a snapshot repository (Redis or memory with fallback)
func (f *RepositoryFactory) CreateSnapshotRepository() ports.SnapshotRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisSnapshotRepository(f.redisClient)
	}
	return memory.NewMemorySnapshotRepository()
}

// CreateStreamRegistry creates a stream registry (Redis or memory with fallback)
func (f *RepositoryFactory) CreateStreamRegistry() ports.StreamRegistry {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisStreamRegistry(f.redisClient)
	}
	return memory.NewMemoryStreamRegistry()
}

// RedisClient exposes the shared Redis connection, or nil when running on
// memory repositories.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	if !f.useRedis {
		return nil
	}
	return f.redisClient
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
