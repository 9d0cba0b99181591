package memory

import (
	"context"
	"sync"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
)

type MemoryStreamRegistry struct {
	streams map[domain.StreamID]*domain.StreamInfo
	mu      sync.RWMutex
}

func NewMemoryStreamRegistry() ports.StreamRegistry {
	return &MemoryStreamRegistry{
		streams: make(map[domain.StreamID]*domain.StreamInfo),
	}
}

func (r *MemoryStreamRegistry) Register(ctx context.Context, info *domain.StreamInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *info
	if cp.RegisteredAt.IsZero() {
		cp.RegisteredAt = time.Now()
	}
	r.streams[info.ID] = &cp
	return nil
}

func (r *MemoryStreamRegistry) Lookup(ctx context.Context, id domain.StreamID) (*domain.StreamInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.streams[id]
	if !exists {
		return nil, domain.ErrStreamNotRegistered
	}
	cp := *info
	return &cp, nil
}

func (r *MemoryStreamRegistry) Unregister(ctx context.Context, id domain.StreamID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[id]; !exists {
		return domain.ErrStreamNotRegistered
	}
	delete(r.streams, id)
	return nil
}

func (r *MemoryStreamRegistry) List(ctx context.Context) ([]*domain.StreamInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.StreamInfo, 0, len(r.streams))
	for _, info := range r.streams {
		cp := *info
		out = append(out, &cp)
	}
	return out, nil
}
