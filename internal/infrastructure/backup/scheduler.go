package backup

import (
	"context"
	"encoding/json"
	"time"

	"streamgrid/internal/core/ports"
	"streamgrid/pkg/backup"
	"streamgrid/pkg/distributed"

	"go.uber.org/zap"
)

// Scheduler runs periodic backups of the snapshot store and stream
// registry. When a lock manager is set, only one instance performs the
// scheduled run.
type Scheduler struct {
	backupService *backup.BackupService
	snapshotRepo  ports.SnapshotRepository
	streamReg     ports.StreamRegistry
	lockManager   *distributed.LockManager
	interval      time.Duration
	retentionDays int
	logger        *zap.SugaredLogger
	stopChan      chan struct{}
}

// Config contains scheduler configuration
type Config struct {
	Interval      time.Duration
	RetentionDays int
}

// NewScheduler creates a new backup scheduler
func NewScheduler(
	backupService *backup.BackupService,
	snapshotRepo ports.SnapshotRepository,
	streamReg ports.StreamRegistry,
	cfg Config,
	logger *zap.SugaredLogger,
) *Scheduler {
	return &Scheduler{
		backupService: backupService,
		snapshotRepo:  snapshotRepo,
		streamReg:     streamReg,
		interval:      cfg.Interval,
		retentionDays: cfg.RetentionDays,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// SetLockManager enables cross-instance coordination of scheduled runs
func (s *Scheduler) SetLockManager(lm *distributed.LockManager) {
	s.lockManager = lm
}

// Start starts the backup scheduler
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runBackup(ctx)

	for {
		select {
		case <-ticker.C:
			s.runBackup(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the backup scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// runBackup performs a backup
func (s *Scheduler) runBackup(ctx context.Context) {
	if s.lockManager != nil {
		lock := s.lockManager.AcquireLock("backup", s.interval/2)
		acquired, err := lock.TryLock(ctx)
		if err != nil || !acquired {
			s.logger.Debugw("skipping backup run, another instance holds the lock", "error", err)
			return
		}
		defer lock.Unlock(ctx)
	}

	s.logger.Info("starting scheduled backup")

	data, err := s.collect(ctx)
	if err != nil {
		s.logger.Errorw("failed to collect backup data", "error", err)
		return
	}

	name, err := s.backupService.CreateBackup(ctx, data)
	if err != nil {
		s.logger.Errorw("failed to create backup", "error", err)
		return
	}

	s.logger.Infow("backup created",
		"name", name,
		"snapshots", len(data.Snapshots),
		"streams", len(data.Streams),
	)

	s.cleanupOldBackups(ctx)
}

// collect gathers everything worth persisting into one backup payload
func (s *Scheduler) collect(ctx context.Context) (*backup.BackupData, error) {
	data := &backup.BackupData{
		Snapshots: make(map[string]interface{}),
		Streams:   make(map[string]interface{}),
	}

	snapshots, err := s.snapshotRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, snapshot := range snapshots {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			continue
		}
		data.Snapshots[snapshot.Name] = json.RawMessage(raw)
	}

	if s.streamReg != nil {
		streams, err := s.streamReg.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, info := range streams {
			raw, err := json.Marshal(info)
			if err != nil {
				continue
			}
			data.Streams[string(info.ID)] = json.RawMessage(raw)
		}
	}

	return data, nil
}

// cleanupOldBackups removes backups older than the retention window
func (s *Scheduler) cleanupOldBackups(ctx context.Context) {
	if s.retentionDays <= 0 {
		return
	}

	names, err := s.backupService.ListBackups(ctx)
	if err != nil {
		s.logger.Warnw("failed to list backups for cleanup", "error", err)
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	for _, name := range names {
		// Names carry the creation time: backup-20060102-150405.json
		ts, ok := parseBackupTime(name)
		if !ok {
			continue
		}
		if ts.Before(cutoff) {
			if err := s.backupService.DeleteBackup(ctx, name); err != nil {
				s.logger.Warnw("failed to delete old backup", "name", name, "error", err)
			} else {
				s.logger.Infow("deleted old backup", "name", name)
			}
		}
	}
}

func parseBackupTime(name string) (time.Time, bool) {
	const prefix, suffix = "backup-", ".json"
	if len(name) <= len(prefix)+len(suffix) {
		return time.Time{}, false
	}
	stamp := name[len(prefix) : len(name)-len(suffix)]
	parsed, err := time.Parse("20060102-150405", stamp)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
