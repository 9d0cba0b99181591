package services

import (
	"sync"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionEntry struct {
	layout    ports.LayoutService
	createdAt time.Time
}

// SessionManager owns the live layout sessions. One session maps to one
// viewer canvas and carries its own single-writer layout service.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry

	layoutCfg LayoutConfig
	playback  ports.PlaybackEngine
	metrics   *MetricsService
	collector ports.MetricsCollector
	logger    *zap.SugaredLogger
}

func NewSessionManager(layoutCfg LayoutConfig, playback ports.PlaybackEngine, metrics *MetricsService, logger *zap.SugaredLogger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SessionManager{
		sessions:  make(map[domain.SessionID]*sessionEntry),
		layoutCfg: layoutCfg,
		playback:  playback,
		metrics:   metrics,
		logger:    logger,
	}
}

// SetCollector reports session lifecycle changes to c.
func (m *SessionManager) SetCollector(c ports.MetricsCollector) {
	m.mu.Lock()
	m.collector = c
	m.mu.Unlock()
}

// Create starts a new session and returns its identifier.
func (m *SessionManager) Create() domain.SessionID {
	id := domain.SessionID(uuid.NewString())
	m.mu.Lock()
	m.sessions[id] = &sessionEntry{
		layout:    NewLayoutService(m.layoutCfg, m.playback, m.metrics, m.logger),
		createdAt: time.Now(),
	}
	if m.collector != nil {
		m.collector.RecordSessionCreated()
	}
	m.mu.Unlock()
	m.logger.Infow("session created", "session_id", id)
	return id
}

// GetOrCreate returns the session's layout service, creating the session
// when the identifier is unknown. Used by the input gateway so a client can
// connect before the session is provisioned over HTTP.
func (m *SessionManager) GetOrCreate(id domain.SessionID) ports.LayoutService {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		entry = &sessionEntry{
			layout:    NewLayoutService(m.layoutCfg, m.playback, m.metrics, m.logger),
			createdAt: time.Now(),
		}
		m.sessions[id] = entry
		if m.collector != nil {
			m.collector.RecordSessionCreated()
		}
		m.logger.Infow("session created on demand", "session_id", id)
	}
	return entry.layout
}

// Get returns the session's layout service.
func (m *SessionManager) Get(id domain.SessionID) (ports.LayoutService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return entry.layout, nil
}

// Destroy removes a session and its layout state.
func (m *SessionManager) Destroy(id domain.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	if m.collector != nil {
		m.collector.RecordSessionDestroyed(id)
	}
	m.logger.Infow("session destroyed", "session_id", id)
	return nil
}

// List returns the identifiers of all live sessions.
func (m *SessionManager) List() []domain.SessionID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SessionID, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	return out
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StreamEnded maps an external playback notification to stream removal in
// the given session. Unknown streams are ignored: the feed may race with an
// explicit remove.
func (m *SessionManager) StreamEnded(sessionID domain.SessionID, streamID domain.StreamID) {
	layout, err := m.Get(sessionID)
	if err != nil {
		return
	}
	if err := layout.RemoveStream(streamID); err != nil {
		m.logger.Debugw("stream ended for absent stream", "session_id", sessionID, "stream_id", streamID)
	}
}
