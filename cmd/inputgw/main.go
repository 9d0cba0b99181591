package main

import (
	"net/http"

	"streamgrid/internal/core/domain"
	"streamgrid/internal/core/services"
	"streamgrid/internal/infrastructure/input"
	"streamgrid/internal/infrastructure/loadbalancer"
	"streamgrid/internal/infrastructure/playback"
	"streamgrid/pkg/config"
	"streamgrid/pkg/logger"
)

// Standalone input gateway. Runs the WebSocket pointer-event endpoint against
// its own in-memory session manager; useful for load testing gestures and for
// fronting a fleet behind a sticky load balancer.
func main() {
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/streamgrid/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	layoutCfg := services.LayoutConfig{
		MaxSlots:      cfg.Layout.MaxSlots,
		PaneSpacing:   cfg.Layout.PaneSpacing,
		MinPaneSize:   domain.Size{Width: cfg.Layout.MinPaneWidth, Height: cfg.Layout.MinPaneHeight},
		PiPBubbleSize: domain.Size{Width: cfg.Layout.PiPBubbleWidth, Height: cfg.Layout.PiPBubbleHeight},
		MinPinchScale: cfg.Gestures.MinPinchScale,
		MaxPinchScale: cfg.Gestures.MaxPinchScale,
		ContainerSize: domain.Size{Width: cfg.Layout.DefaultWidth, Height: cfg.Layout.DefaultHeight},
		Template:      domain.TemplateGrid2x2,
	}

	gestureCfg := services.GestureConfig{
		TapSlop:           cfg.Gestures.TapSlop,
		DoubleTapWindow:   cfg.Gestures.DoubleTapWindow,
		LongPressDuration: cfg.Gestures.LongPressDuration,
		DragCommitTimeout: cfg.Gestures.DragCommitTimeout,
		MinPinchScale:     cfg.Gestures.MinPinchScale,
		MaxPinchScale:     cfg.Gestures.MaxPinchScale,
	}

	manager := services.NewSessionManager(layoutCfg, playback.NewLoggingEngine(log), services.NewMetricsService(), log)

	wsServer := input.NewWebSocketServer(manager, gestureCfg, log)
	wsServer.SetPingInterval(cfg.Input.PingInterval)
	wsServer.SetPongTimeout(cfg.Input.PongTimeout)
	wsServer.SetFlushInterval(cfg.Input.FlushInterval)
	if cfg.RateLimiting.Enabled {
		wsServer.SetEventRateLimit(cfg.RateLimiting.WebSocket.EventsPerSecond, cfg.RateLimiting.WebSocket.Burst)
		wsServer.SetMaxMessageSize(cfg.RateLimiting.WebSocket.MaxMessageSizeBytes)
	}

	// Pin each viewer to this gateway instance across reconnects.
	sticky := loadbalancer.NewStickySessionManager(cfg.Auth.JWTSecret, "streamgrid_affinity", int(cfg.Auth.SessionTTL.Seconds()))

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if sticky.GetSessionID(r) == "" {
			sticky.SetSessionCookie(w, r.URL.Query().Get("session_id"))
		}
		wsServer.HandleWebSocket(w, r)
	})
	http.HandleFunc("/health", wsServer.HealthCheck)

	log.Infof("Starting StreamGrid input gateway on %s", cfg.Input.Address)
	if err := http.ListenAndServe(cfg.Input.Address, nil); err != nil {
		log.Fatalw("Input gateway failed", "error", err)
	}
}
