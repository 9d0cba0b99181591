package ports

import (
	"context"

	"streamgrid/internal/core/domain"
)

// SnapshotRepository stores named layouts for later restore.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error
	Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error)
	List(ctx context.Context) ([]*domain.LayoutSnapshot, error)
	Delete(ctx context.Context, name string) error
}

// StreamRegistry is the external source of stream display metadata. The
// layout core never stores metadata, only identifiers.
type StreamRegistry interface {
	Register(ctx context.Context, info *domain.StreamInfo) error
	Lookup(ctx context.Context, id domain.StreamID) (*domain.StreamInfo, error)
	Unregister(ctx context.Context, id domain.StreamID) error
	List(ctx context.Context) ([]*domain.StreamInfo, error)
}
