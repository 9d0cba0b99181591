package playback

import (
	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"

	"go.uber.org/zap"
)

// LoggingEngine is the default playback collaborator: it records audio
// routing changes so an embedding player process can follow the log or
// replace this adapter with a real engine.
type LoggingEngine struct {
	logger *zap.SugaredLogger
}

func NewLoggingEngine(logger *zap.SugaredLogger) ports.PlaybackEngine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LoggingEngine{logger: logger}
}

func (e *LoggingEngine) AudioActivated(id domain.StreamID) {
	e.logger.Infow("audio routed", "stream_id", id)
}

func (e *LoggingEngine) AllMuted() {
	e.logger.Info("all streams muted")
}
