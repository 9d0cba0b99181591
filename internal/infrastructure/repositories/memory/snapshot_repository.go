package memory

import (
	"context"
	"sort"
	"sync"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
)

type MemorySnapshotRepository struct {
	snapshots map[string]*domain.LayoutSnapshot
	mu        sync.RWMutex
}

func NewMemorySnapshotRepository() ports.SnapshotRepository {
	return &MemorySnapshotRepository{
		snapshots: make(map[string]*domain.LayoutSnapshot),
	}
}

func (r *MemorySnapshotRepository) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Saving under an existing name overwrites the stored layout.
	cp := *snapshot
	cp.Slots = append([]domain.Slot(nil), snapshot.Slots...)
	cp.PiPSlots = append([]domain.PiPSlot(nil), snapshot.PiPSlots...)
	r.snapshots[snapshot.Name] = &cp
	return nil
}

func (r *MemorySnapshotRepository) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.snapshots[name]
	if !exists {
		return nil, domain.ErrSnapshotNotFound
	}

	cp := *snapshot
	cp.Slots = append([]domain.Slot(nil), snapshot.Slots...)
	cp.PiPSlots = append([]domain.PiPSlot(nil), snapshot.PiPSlots...)
	return &cp, nil
}

func (r *MemorySnapshotRepository) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.LayoutSnapshot, 0, len(r.snapshots))
	for _, snapshot := range r.snapshots {
		cp := *snapshot
		cp.Slots = append([]domain.Slot(nil), snapshot.Slots...)
		cp.PiPSlots = append([]domain.PiPSlot(nil), snapshot.PiPSlots...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemorySnapshotRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.snapshots[name]; !exists {
		return domain.ErrSnapshotNotFound
	}
	delete(r.snapshots, name)
	return nil
}
