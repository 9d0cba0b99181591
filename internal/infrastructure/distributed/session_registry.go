package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/pkg/distributed"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SharedSessionRegistry tracks which instance owns which layout session.
// Layout state is in-memory, so a session must always be routed back to the
// instance that holds it; the registry is the source of truth for that
// affinity across gateways.
type SharedSessionRegistry struct {
	client      *redis.Client
	lockManager *distributed.LockManager
	instanceID  string
	logger      *zap.SugaredLogger
	prefix      string
	ttl         time.Duration
}

// NewSharedSessionRegistry creates a new shared session registry
func NewSharedSessionRegistry(
	client *redis.Client,
	instanceID string,
	logger *zap.SugaredLogger,
) *SharedSessionRegistry {
	return &SharedSessionRegistry{
		client:      client,
		lockManager: distributed.NewLockManager(client, "streamgrid:lock:"),
		instanceID:  instanceID,
		logger:      logger,
		prefix:      "streamgrid:session:",
		ttl:         5 * time.Minute,
	}
}

type sessionRecord struct {
	InstanceID   string `json:"instance_id"`
	RegisteredAt int64  `json:"registered_at"`
}

// RegisterSession claims a session for this instance
func (r *SharedSessionRegistry) RegisterSession(ctx context.Context, sessionID domain.SessionID) error {
	record := sessionRecord{
		InstanceID:   r.instanceID,
		RegisteredAt: time.Now().Unix(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}

	instanceKey := r.instanceSessionsKey(r.instanceID)
	if err := r.client.SAdd(ctx, instanceKey, string(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to add session to instance set: %w", err)
	}
	r.client.Expire(ctx, instanceKey, 2*r.ttl)

	return nil
}

// UnregisterSession releases a session claim
func (r *SharedSessionRegistry) UnregisterSession(ctx context.Context, sessionID domain.SessionID) error {
	key := r.sessionKey(sessionID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // Already unregistered
	}
	if err != nil {
		return fmt.Errorf("failed to get session record: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(data), &record); err == nil {
		r.client.SRem(ctx, r.instanceSessionsKey(record.InstanceID), string(sessionID))
	}

	return r.client.Del(ctx, key).Err()
}

// OwnerInstance returns the instance id that holds the session
func (r *SharedSessionRegistry) OwnerInstance(ctx context.Context, sessionID domain.SessionID) (string, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session record: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return "", fmt.Errorf("failed to unmarshal session record: %w", err)
	}

	return record.InstanceID, nil
}

// InstanceSessions returns the sessions held by an instance
func (r *SharedSessionRegistry) InstanceSessions(ctx context.Context, instanceID string) ([]domain.SessionID, error) {
	ids, err := r.client.SMembers(ctx, r.instanceSessionsKey(instanceID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get instance sessions: %w", err)
	}

	result := make([]domain.SessionID, len(ids))
	for i, id := range ids {
		result[i] = domain.SessionID(id)
	}
	return result, nil
}

// RefreshSession refreshes the TTL of a session claim
func (r *SharedSessionRegistry) RefreshSession(ctx context.Context, sessionID domain.SessionID) error {
	return r.client.Expire(ctx, r.sessionKey(sessionID), r.ttl).Err()
}

// CleanupInstanceSessions releases all claims held by an instance, used on
// shutdown so sessions can be re-homed.
func (r *SharedSessionRegistry) CleanupInstanceSessions(ctx context.Context, instanceID string) error {
	ids, err := r.client.SMembers(ctx, r.instanceSessionsKey(instanceID)).Result()
	if err != nil {
		return fmt.Errorf("failed to get instance sessions: %w", err)
	}

	for _, id := range ids {
		if err := r.UnregisterSession(ctx, domain.SessionID(id)); err != nil {
			r.logger.Warnw("failed to unregister session during cleanup",
				"session_id", id,
				"error", err,
			)
		}
	}

	return r.client.Del(ctx, r.instanceSessionsKey(instanceID)).Err()
}

// AcquireSessionLock acquires a distributed lock for session-scoped work
func (r *SharedSessionRegistry) AcquireSessionLock(ctx context.Context, sessionID domain.SessionID, ttl time.Duration) (*distributed.DistributedLock, error) {
	lock := r.lockManager.AcquireLock(fmt.Sprintf("session:%s", sessionID), ttl)
	if err := lock.Lock(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	return lock, nil
}

func (r *SharedSessionRegistry) sessionKey(sessionID domain.SessionID) string {
	return r.prefix + string(sessionID)
}

func (r *SharedSessionRegistry) instanceSessionsKey(instanceID string) string {
	return fmt.Sprintf("streamgrid:instance:%s:sessions", instanceID)
}
