package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSnapshotRepo counts base hits per operation.
type countingSnapshotRepo struct {
	base  ports.SnapshotRepository
	gets  atomic.Int64
	lists atomic.Int64
}

func (c *countingSnapshotRepo) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	return c.base.Save(ctx, snapshot)
}

func (c *countingSnapshotRepo) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	c.gets.Add(1)
	return c.base.Get(ctx, name)
}

func (c *countingSnapshotRepo) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	c.lists.Add(1)
	return c.base.List(ctx)
}

func (c *countingSnapshotRepo) Delete(ctx context.Context, name string) error {
	return c.base.Delete(ctx, name)
}

// mapSnapshotRepo is a minimal in-memory backend for cache tests.
type mapSnapshotRepo struct {
	snapshots map[string]*domain.LayoutSnapshot
}

func newMapSnapshotRepo() *mapSnapshotRepo {
	return &mapSnapshotRepo{snapshots: make(map[string]*domain.LayoutSnapshot)}
}

func (m *mapSnapshotRepo) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	m.snapshots[snapshot.Name] = snapshot
	return nil
}

func (m *mapSnapshotRepo) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	snap, ok := m.snapshots[name]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *mapSnapshotRepo) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	out := make([]*domain.LayoutSnapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		out = append(out, snap)
	}
	return out, nil
}

func (m *mapSnapshotRepo) Delete(ctx context.Context, name string) error {
	if _, ok := m.snapshots[name]; !ok {
		return domain.ErrSnapshotNotFound
	}
	delete(m.snapshots, name)
	return nil
}

func TestCachedSnapshotRepository_GetServedFromCache(t *testing.T) {
	counting := &countingSnapshotRepo{base: newMapSnapshotRepo()}
	cached := NewCachedSnapshotRepository(counting, time.Minute)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, &domain.LayoutSnapshot{Name: "setup", TemplateID: domain.TemplateGrid2x2}))

	for i := 0; i < 5; i++ {
		snap, err := cached.Get(ctx, "setup")
		require.NoError(t, err)
		assert.Equal(t, "setup", snap.Name)
	}
	assert.Equal(t, int64(1), counting.gets.Load(), "repeated reads must hit the base once")
}

func TestCachedSnapshotRepository_SaveInvalidates(t *testing.T) {
	counting := &countingSnapshotRepo{base: newMapSnapshotRepo()}
	cached := NewCachedSnapshotRepository(counting, time.Minute)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, &domain.LayoutSnapshot{Name: "setup", TemplateID: domain.TemplateGrid2x2}))
	_, err := cached.Get(ctx, "setup")
	require.NoError(t, err)

	// Overwrite drops the stale cached entry.
	require.NoError(t, cached.Save(ctx, &domain.LayoutSnapshot{Name: "setup", TemplateID: domain.TemplateStack}))

	snap, err := cached.Get(ctx, "setup")
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateStack, snap.TemplateID)
	assert.Equal(t, int64(2), counting.gets.Load())
}

func TestCachedSnapshotRepository_ListCachedAndInvalidatedOnDelete(t *testing.T) {
	counting := &countingSnapshotRepo{base: newMapSnapshotRepo()}
	cached := NewCachedSnapshotRepository(counting, time.Minute)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, &domain.LayoutSnapshot{Name: "a"}))
	require.NoError(t, cached.Save(ctx, &domain.LayoutSnapshot{Name: "b"}))

	list, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	_, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counting.lists.Load())

	require.NoError(t, cached.Delete(ctx, "a"))
	list, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(2), counting.lists.Load())
}

func TestCachedSnapshotRepository_ExternalInvalidate(t *testing.T) {
	base := newMapSnapshotRepo()
	counting := &countingSnapshotRepo{base: base}
	cached := NewCachedSnapshotRepository(counting, time.Minute).(*CachedSnapshotRepository)
	ctx := context.Background()

	require.NoError(t, cached.Save(ctx, &domain.LayoutSnapshot{Name: "setup", TemplateID: domain.TemplateGrid2x2}))
	_, err := cached.Get(ctx, "setup")
	require.NoError(t, err)

	// Another instance rewrote the snapshot behind our back.
	base.snapshots["setup"] = &domain.LayoutSnapshot{Name: "setup", TemplateID: domain.TemplateStack}
	cached.Invalidate("setup")

	snap, err := cached.Get(ctx, "setup")
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateStack, snap.TemplateID)
}

func TestCachedSnapshotRepository_MissesAreNotCachedAsValues(t *testing.T) {
	counting := &countingSnapshotRepo{base: newMapSnapshotRepo()}
	cached := NewCachedSnapshotRepository(counting, time.Minute)

	_, err := cached.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}
