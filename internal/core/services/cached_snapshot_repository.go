package services

import (
	"context"
	"fmt"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/pkg/cache"
)

// CachedSnapshotRepository wraps a SnapshotRepository with read caching.
// Saved layouts are read far more often than written (every restore and
// every listing), so lookups are served from a TTL cache and invalidated on
// write.
type CachedSnapshotRepository struct {
	base ports.SnapshotRepository
	c    *cache.Cache
	ttl  time.Duration
}

func NewCachedSnapshotRepository(base ports.SnapshotRepository, ttl time.Duration) ports.SnapshotRepository {
	return &CachedSnapshotRepository{
		base: base,
		c:    cache.NewCache(ttl),
		ttl:  ttl,
	}
}

func snapshotKey(name string) string {
	return fmt.Sprintf("snapshot:%s", name)
}

func (r *CachedSnapshotRepository) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	if err := r.base.Save(ctx, snapshot); err != nil {
		return err
	}
	r.c.Delete(snapshotKey(snapshot.Name))
	r.c.Delete("snapshot-list")
	return nil
}

func (r *CachedSnapshotRepository) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	value, err := r.c.GetOrSet(ctx, snapshotKey(name), func(ctx context.Context) (interface{}, error) {
		return r.base.Get(ctx, name)
	}, r.ttl)
	if err != nil {
		return nil, err
	}
	return value.(*domain.LayoutSnapshot), nil
}

func (r *CachedSnapshotRepository) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	value, err := r.c.GetOrSet(ctx, "snapshot-list", func(ctx context.Context) (interface{}, error) {
		return r.base.List(ctx)
	}, r.ttl)
	if err != nil {
		return nil, err
	}
	return value.([]*domain.LayoutSnapshot), nil
}

func (r *CachedSnapshotRepository) Delete(ctx context.Context, name string) error {
	if err := r.base.Delete(ctx, name); err != nil {
		return err
	}
	r.c.Delete(snapshotKey(name))
	r.c.Delete("snapshot-list")
	return nil
}

// Invalidate drops the cached entry for a snapshot name. Used when another
// instance reports a write through the event bus.
func (r *CachedSnapshotRepository) Invalidate(name string) {
	r.c.Delete(snapshotKey(name))
	r.c.Delete("snapshot-list")
}
