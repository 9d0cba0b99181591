package distributed

import (
	"context"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"

	"go.uber.org/zap"
)

// EventPublishingSnapshotRepository decorates a SnapshotRepository so every
// successful write is announced on the event bus. Other instances use the
// events to drop stale cached reads.
type EventPublishingSnapshotRepository struct {
	base   ports.SnapshotRepository
	bus    *EventBus
	logger *zap.SugaredLogger
}

func NewEventPublishingSnapshotRepository(base ports.SnapshotRepository, bus *EventBus, logger *zap.SugaredLogger) ports.SnapshotRepository {
	return &EventPublishingSnapshotRepository{
		base:   base,
		bus:    bus,
		logger: logger,
	}
}

func (r *EventPublishingSnapshotRepository) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	if err := r.base.Save(ctx, snapshot); err != nil {
		return err
	}
	if err := r.bus.PublishSnapshotSaved(ctx, snapshot.Name); err != nil {
		r.logger.Warnw("failed to publish snapshot saved event", "name", snapshot.Name, "error", err)
	}
	return nil
}

func (r *EventPublishingSnapshotRepository) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	return r.base.Get(ctx, name)
}

func (r *EventPublishingSnapshotRepository) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	return r.base.List(ctx)
}

func (r *EventPublishingSnapshotRepository) Delete(ctx context.Context, name string) error {
	if err := r.base.Delete(ctx, name); err != nil {
		return err
	}
	if err := r.bus.PublishSnapshotDeleted(ctx, name); err != nil {
		r.logger.Warnw("failed to publish snapshot deleted event", "name", name, "error", err)
	}
	return nil
}
