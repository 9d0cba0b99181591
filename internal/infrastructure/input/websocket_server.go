package input

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/ports"
	"streamgrid/internal/core/services"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketServer is the input gateway: one connection per viewer canvas.
// Raw pointer events come in, a per-connection gesture translator turns
// them into intents, the session's layout service applies them, and every
// committed layout change is pushed back as a snapshot message.
type WebSocketServer struct {
	sessions   *services.SessionManager
	gestureCfg services.GestureConfig

	connections map[domain.SessionID]*websocket.Conn
	mu          sync.RWMutex

	pingInterval  time.Duration
	pongTimeout   time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
	flushInterval time.Duration

	eventsPerSecond float64
	eventBurst      int
	maxMessageSize  int64

	collector ports.MetricsCollector
	logger    *zap.SugaredLogger
}

// InputMessage is one client-to-server frame.
type InputMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ContainerSizePayload carries a viewport change with its monotonic
// sequence number.
type ContainerSizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Seq    uint64  `json:"seq"`
}

// StreamEndedPayload signals that playback of a stream stopped upstream.
type StreamEndedPayload struct {
	StreamID domain.StreamID `json:"stream_id"`
}

func NewWebSocketServer(sessions *services.SessionManager, gestureCfg services.GestureConfig, logger *zap.SugaredLogger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WebSocketServer{
		sessions:        sessions,
		gestureCfg:      gestureCfg,
		connections:     make(map[domain.SessionID]*websocket.Conn),
		pingInterval:    30 * time.Second,
		pongTimeout:     60 * time.Second,
		readTimeout:     60 * time.Second,
		writeTimeout:    10 * time.Second,
		flushInterval:   100 * time.Millisecond,
		eventsPerSecond: 120,
		eventBurst:      240,
		maxMessageSize:  16 * 1024,
		logger:          logger,
	}
}

// SetPingInterval sets ping interval for WebSocket connections
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetPongTimeout sets pong timeout for WebSocket connections
func (s *WebSocketServer) SetPongTimeout(timeout time.Duration) {
	s.pongTimeout = timeout
	s.readTimeout = timeout
}

// SetFlushInterval sets how often time-driven gesture fallbacks run.
func (s *WebSocketServer) SetFlushInterval(interval time.Duration) {
	if interval > 0 {
		s.flushInterval = interval
	}
}

// SetEventRateLimit bounds pointer events accepted per connection.
func (s *WebSocketServer) SetEventRateLimit(eventsPerSecond float64, burst int) {
	if eventsPerSecond > 0 {
		s.eventsPerSecond = eventsPerSecond
	}
	if burst > 0 {
		s.eventBurst = burst
	}
}

// SetMaxMessageSize caps the size of a single inbound frame.
func (s *WebSocketServer) SetMaxMessageSize(bytes int64) {
	if bytes > 0 {
		s.maxMessageSize = bytes
	}
}

// SetCollector reports connection counts and gesture durations to c.
func (s *WebSocketServer) SetCollector(c ports.MetricsCollector) {
	s.collector = c
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := domain.SessionID(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		s.logger.Warn("missing session_id in query parameters")
		return
	}

	// A reconnecting client displaces its previous connection.
	s.mu.Lock()
	existingConn, isReconnect := s.connections[sessionID]
	if isReconnect && existingConn != nil {
		existingConn.Close()
		s.logger.Infow("closing old connection for reconnecting session", "session_id", sessionID)
	}
	s.connections[sessionID] = conn
	s.mu.Unlock()

	s.logger.Infow("session connected via WebSocket", "session_id", sessionID, "reconnect", isReconnect)
	if s.collector != nil {
		s.collector.RecordInputConnected()
	}

	layout := s.sessions.GetOrCreate(sessionID)
	translator := services.NewGestureTranslatorWithCollector(s.gestureCfg, s.collector)
	limiter := rate.NewLimiter(rate.Limit(s.eventsPerSecond), s.eventBurst)

	// Committed layout changes go back to the client. Writes are serialized
	// through writeMu because the subscriber fires from mutator goroutines.
	var writeMu sync.Mutex
	writeSnapshot := func(st domain.LayoutState, pp domain.PiPState) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := conn.WriteJSON(map[string]interface{}{
			"type":   "layout",
			"layout": st,
			"pip":    pp,
		}); err != nil {
			s.logger.Debugw("failed to push layout", "session_id", sessionID, "error", err)
		}
	}
	unsubscribe := layout.Subscribe(writeSnapshot)
	defer unsubscribe()

	// Initial state so the client can render before the first mutation.
	writeSnapshot(layout.State(), layout.PiP())

	conn.SetReadLimit(s.maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()
	flushTicker := time.NewTicker(s.flushInterval)
	defer flushTicker.Stop()

	messageChan := make(chan InputMessage, 16)
	errorChan := make(chan error, 1)

	go func() {
		for {
			var msg InputMessage
			if err := conn.ReadJSON(&msg); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
			messageChan <- msg
		}
	}()

	for {
		select {
		case msg := <-messageChan:
			if !limiter.Allow() {
				s.logger.Debugw("input rate limit exceeded", "session_id", sessionID)
				continue
			}
			if err := s.handleMessage(sessionID, layout, translator, msg); err != nil {
				s.logger.Infow("error handling input message", "session_id", sessionID, "error", err)
				s.sendError(conn, &writeMu, err.Error())
			}

		case <-flushTicker.C:
			s.applyIntents(sessionID, layout, translator.Flush(time.Now()))

		case <-pingTicker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				s.logger.Infow("error sending ping", "session_id", sessionID, "error", err)
				goto cleanup
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading input message", "session_id", sessionID, "error", err)
			}
			goto cleanup
		}
	}

cleanup:
	// Input loss mid-gesture: flush past the drag timeout so the pending
	// terminal intent is committed exactly once.
	s.applyIntents(sessionID, layout, translator.Flush(time.Now().Add(s.gestureCfg.DragCommitTimeout)))

	s.mu.Lock()
	delete(s.connections, sessionID)
	s.mu.Unlock()

	if s.collector != nil {
		s.collector.RecordInputDisconnected()
	}
	s.logger.Infow("session disconnected", "session_id", sessionID)
}

func (s *WebSocketServer) handleMessage(sessionID domain.SessionID, layout ports.LayoutService, translator ports.GestureTranslator, msg InputMessage) error {
	if msg.Type == "" {
		return fmt.Errorf("message type is required")
	}

	switch msg.Type {
	case "pointer_event":
		var ev domain.PointerEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("invalid pointer_event payload: %w", err)
		}
		if ev.At.IsZero() {
			ev.At = time.Now()
		}
		s.applyIntents(sessionID, layout, translator.Handle(ev))
		return nil

	case "container_size":
		var payload ContainerSizePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("invalid container_size payload: %w", err)
		}
		err := layout.SetContainerSize(domain.Size{Width: payload.Width, Height: payload.Height}, payload.Seq)
		if err == domain.ErrStaleContainerSize {
			// Out-of-order viewport report; the newer size already won.
			s.logger.Debugw("stale container size dropped", "session_id", sessionID, "seq", payload.Seq)
			return nil
		}
		return err

	case "stream_ended":
		var payload StreamEndedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("invalid stream_ended payload: %w", err)
		}
		if payload.StreamID == "" {
			return fmt.Errorf("stream_id is required")
		}
		s.sessions.StreamEnded(sessionID, payload.StreamID)
		return nil

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (s *WebSocketServer) applyIntents(sessionID domain.SessionID, layout ports.LayoutService, intents []domain.Intent) {
	for _, intent := range intents {
		if err := layout.ApplyIntent(intent); err != nil {
			s.logger.Debugw("intent rejected",
				"session_id", sessionID,
				"intent", intent.Type,
				"stream_id", intent.StreamID,
				"error", err,
			)
		}
	}
}

func (s *WebSocketServer) sendError(conn *websocket.Conn, writeMu *sync.Mutex, message string) {
	writeMu.Lock()
	defer writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	conn.WriteJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

func (s *WebSocketServer) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	connectionCount := len(s.connections)
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"connections": connectionCount,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ConnectedSessions returns the session ids with a live input connection.
func (s *WebSocketServer) ConnectedSessions() []domain.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.SessionID, 0, len(s.connections))
	for id := range s.connections {
		ids = append(ids, id)
	}
	return ids
}

// IsSessionConnected reports whether the session has a live connection.
func (s *WebSocketServer) IsSessionConnected(id domain.SessionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.connections[id]
	return exists
}
