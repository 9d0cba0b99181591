package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/pkg/backup"

	"go.uber.org/zap"
)

// RestoreService restores snapshot and stream registry state from a backup
type RestoreService struct {
	backupService *backup.BackupService
	snapshotRepo  ports.SnapshotRepository
	streamReg     ports.StreamRegistry
	logger        *zap.SugaredLogger
}

// NewRestoreService creates a new restore service
func NewRestoreService(
	backupService *backup.BackupService,
	snapshotRepo ports.SnapshotRepository,
	streamReg ports.StreamRegistry,
	logger *zap.SugaredLogger,
) *RestoreService {
	return &RestoreService{
		backupService: backupService,
		snapshotRepo:  snapshotRepo,
		streamReg:     streamReg,
		logger:        logger,
	}
}

// RestoreResult summarizes a restore run
type RestoreResult struct {
	Snapshots int      `json:"snapshots"`
	Streams   int      `json:"streams"`
	Skipped   []string `json:"skipped,omitempty"`
}

// Restore loads a backup by name and writes its contents back into the
// repositories. Entries that fail to decode are skipped, not fatal.
func (r *RestoreService) Restore(ctx context.Context, name string) (*RestoreResult, error) {
	data, err := r.backupService.RestoreBackup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup %s: %w", name, err)
	}

	result := &RestoreResult{}

	for key, raw := range data.Snapshots {
		var snapshot domain.LayoutSnapshot
		if err := remarshal(raw, &snapshot); err != nil {
			r.logger.Warnw("skipping undecodable snapshot", "name", key, "error", err)
			result.Skipped = append(result.Skipped, "snapshot:"+key)
			continue
		}
		if err := r.snapshotRepo.Save(ctx, &snapshot); err != nil {
			r.logger.Warnw("failed to restore snapshot", "name", key, "error", err)
			result.Skipped = append(result.Skipped, "snapshot:"+key)
			continue
		}
		result.Snapshots++
	}

	if r.streamReg != nil {
		for key, raw := range data.Streams {
			var info domain.StreamInfo
			if err := remarshal(raw, &info); err != nil {
				r.logger.Warnw("skipping undecodable stream", "stream_id", key, "error", err)
				result.Skipped = append(result.Skipped, "stream:"+key)
				continue
			}
			if err := r.streamReg.Register(ctx, &info); err != nil {
				r.logger.Warnw("failed to restore stream", "stream_id", key, "error", err)
				result.Skipped = append(result.Skipped, "stream:"+key)
				continue
			}
			result.Streams++
		}
	}

	r.logger.Infow("restore completed",
		"backup", name,
		"snapshots", result.Snapshots,
		"streams", result.Streams,
		"skipped", len(result.Skipped),
	)

	return result, nil
}

// ListBackups lists available backups
func (r *RestoreService) ListBackups(ctx context.Context) ([]string, error) {
	return r.backupService.ListBackups(ctx)
}

// remarshal converts the loosely typed backup entry back into its domain type
func remarshal(entry interface{}, out interface{}) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
