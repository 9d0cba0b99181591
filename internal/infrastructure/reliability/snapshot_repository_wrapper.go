package reliability

import (
	"context"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/pkg/circuitbreaker"
	"streamgrid/pkg/retry"

	"go.uber.org/zap"
)

// SnapshotRepositoryWrapper wraps a SnapshotRepository with retry logic and
// a circuit breaker. When the breaker is open, reads and writes fail fast
// instead of piling up on a struggling backend.
type SnapshotRepositoryWrapper struct {
	repo   ports.SnapshotRepository
	logger *zap.SugaredLogger

	retryConfig    retry.Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewSnapshotRepositoryWrapper creates a new wrapper with retry and circuit breaker
func NewSnapshotRepositoryWrapper(
	repo ports.SnapshotRepository,
	retryConfig retry.Config,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) ports.SnapshotRepository {
	retryConfig.NonRetryableErrors = append(retryConfig.NonRetryableErrors, domain.ErrSnapshotNotFound)

	wrapper := &SnapshotRepositoryWrapper{
		repo:           repo,
		logger:         logger,
		retryConfig:    retryConfig,
		circuitBreaker: circuitbreaker.New(cbConfig),
	}

	wrapper.circuitBreaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Infow("snapshot store circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})

	return wrapper
}

func (w *SnapshotRepositoryWrapper) Save(ctx context.Context, snapshot *domain.LayoutSnapshot) error {
	if !w.retryConfig.Enabled {
		return w.repo.Save(ctx, snapshot)
	}

	return retry.Retry(ctx, w.retryConfig, func() error {
		return w.circuitBreaker.Execute(ctx, func() error {
			return w.repo.Save(ctx, snapshot)
		})
	})
}

func (w *SnapshotRepositoryWrapper) Get(ctx context.Context, name string) (*domain.LayoutSnapshot, error) {
	if !w.retryConfig.Enabled {
		return w.repo.Get(ctx, name)
	}

	return retry.RetryWithResult(ctx, w.retryConfig, func() (*domain.LayoutSnapshot, error) {
		res, err := w.circuitBreaker.ExecuteWithResult(ctx, func() (interface{}, error) {
			return w.repo.Get(ctx, name)
		})
		if err != nil {
			return nil, err
		}
		return res.(*domain.LayoutSnapshot), nil
	})
}

func (w *SnapshotRepositoryWrapper) List(ctx context.Context) ([]*domain.LayoutSnapshot, error) {
	if !w.retryConfig.Enabled {
		return w.repo.List(ctx)
	}

	return retry.RetryWithResult(ctx, w.retryConfig, func() ([]*domain.LayoutSnapshot, error) {
		res, err := w.circuitBreaker.ExecuteWithResult(ctx, func() (interface{}, error) {
			return w.repo.List(ctx)
		})
		if err != nil {
			return nil, err
		}
		return res.([]*domain.LayoutSnapshot), nil
	})
}

func (w *SnapshotRepositoryWrapper) Delete(ctx context.Context, name string) error {
	if !w.retryConfig.Enabled {
		return w.repo.Delete(ctx, name)
	}

	return retry.Retry(ctx, w.retryConfig, func() error {
		return w.circuitBreaker.Execute(ctx, func() error {
			return w.repo.Delete(ctx, name)
		})
	})
}
